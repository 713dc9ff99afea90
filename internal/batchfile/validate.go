package batchfile

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed request.schema.json
var requestSchema []byte

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(requestSchema))
	})
	return compiledSchema, compileErr
}

// LineError describes the problems found on one line of a batch file.
type LineError struct {
	Line     int      `json:"line"`
	Messages []string `json:"messages"`
}

func (e LineError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, strings.Join(e.Messages, "; "))
}

// Report summarises a validation run.
type Report struct {
	Lines  int         `json:"lines"`
	Errors []LineError `json:"errors,omitempty"`
}

// Valid reports whether every line passed.
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks every non-blank line of r against the request schema and
// for duplicate custom_id values. Line-level problems are collected in the
// Report; the error return is reserved for read and schema failures.
func Validate(r io.Reader) (*Report, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling batch request schema: %w", err)
	}

	report := &Report{}
	seen := make(map[string]int)
	sc := newScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		report.Lines++

		if !json.Valid([]byte(line)) {
			report.Errors = append(report.Errors, LineError{Line: lineNo, Messages: []string{"invalid JSON"}})
			continue
		}

		result, err := schema.Validate(gojsonschema.NewStringLoader(line))
		if err != nil {
			return nil, fmt.Errorf("validating line %d: %w", lineNo, err)
		}

		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}

		var head struct {
			CustomID string `json:"custom_id"`
		}
		if json.Unmarshal([]byte(line), &head) == nil && head.CustomID != "" {
			if first, dup := seen[head.CustomID]; dup {
				msgs = append(msgs, fmt.Sprintf("custom_id %q duplicates line %d", head.CustomID, first))
			} else {
				seen[head.CustomID] = lineNo
			}
		}

		if len(msgs) > 0 {
			report.Errors = append(report.Errors, LineError{Line: lineNo, Messages: msgs})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	return report, nil
}
