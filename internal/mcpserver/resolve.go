// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes the service client's completion and batch operations as
// tools over stdio transport.
package mcpserver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/davetashner/gptservice/internal/service"
)

// ResolvePath resolves a file path supplied by an MCP client to an
// absolute, symlink-resolved path. Missing files fail with
// service.ErrNotFound; directories are rejected.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path must be provided", service.ErrInvalidArgument)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", path, err)
	}

	absPath, err = filepath.EvalSymlinks(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: file %s does not exist", service.ErrNotFound, path)
		}
		return "", fmt.Errorf("cannot resolve path %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: file %s does not exist", service.ErrNotFound, path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %q is a directory", service.ErrInvalidArgument, path)
	}
	return absPath, nil
}

// resolvePaths resolves every path, failing on the first bad one.
func resolvePaths(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := ResolvePath(p)
		if err != nil {
			return nil, err
		}
		out[i] = abs
	}
	return out, nil
}
