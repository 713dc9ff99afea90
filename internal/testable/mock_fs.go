package testable

import (
	"io"
	"os"
	"sync"
)

// MockFileSystem is a test double for FileSystem. Each method has a
// corresponding function field. When the field is non-nil, the mock calls it;
// otherwise, it falls through to OsFileSystem (real OS behavior).
//
// Every call is counted per method so tests can assert how often a file was
// touched. Counting is safe for concurrent use.
type MockFileSystem struct {
	StatFn      func(name string) (os.FileInfo, error)
	ReadFileFn  func(name string) ([]byte, error)
	OpenFn      func(name string) (io.ReadCloser, error)
	WriteFileFn func(name string, data []byte, perm os.FileMode) error

	mu     sync.Mutex
	counts map[string]int
	reads  []string
}

var real OsFileSystem

func (m *MockFileSystem) count(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[method]++
}

// Stat calls StatFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	m.count("Stat")
	if m.StatFn != nil {
		return m.StatFn(name)
	}
	return real.Stat(name)
}

// ReadFile calls ReadFileFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	m.count("ReadFile")
	m.mu.Lock()
	m.reads = append(m.reads, name)
	m.mu.Unlock()
	if m.ReadFileFn != nil {
		return m.ReadFileFn(name)
	}
	return real.ReadFile(name)
}

// Open calls OpenFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) Open(name string) (io.ReadCloser, error) {
	m.count("Open")
	if m.OpenFn != nil {
		return m.OpenFn(name)
	}
	return real.Open(name)
}

// WriteFile calls WriteFileFn if set, otherwise delegates to OsFileSystem.
func (m *MockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.count("WriteFile")
	if m.WriteFileFn != nil {
		return m.WriteFileFn(name, data, perm)
	}
	return real.WriteFile(name, data, perm)
}

// Count returns how many times the named method was called.
func (m *MockFileSystem) Count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[method]
}

// ReadPaths returns every path passed to ReadFile, in call order.
func (m *MockFileSystem) ReadPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.reads...)
}

// Compile-time interface check.
var _ FileSystem = (*MockFileSystem)(nil)
