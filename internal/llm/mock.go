package llm

import (
	"context"
	"io"
	"sync"
)

// MockResponse defines a canned completion result for the mock transport.
// Exactly one of the fields is normally set: Err for a transport failure,
// InBandError for a provider-reported error, Content for a success.
type MockResponse struct {
	Content     string
	InBandError *APIError
	Err         error
}

// MockTransport is a test double that returns pre-configured completion
// responses in sequence. After all responses are exhausted, it keeps
// returning the last one. It records every call for later assertion.
//
// File and batch methods return the corresponding Mock* fields, or
// the configured error.
type MockTransport struct {
	mu        sync.Mutex
	responses []MockResponse
	idx       int

	completions []CompletionRequest
	calls       []string
	uploads     []MockUpload

	// MockFile is returned by UploadFile.
	MockFile *File
	// MockBatch is returned by CreateBatch, RetrieveBatch and CancelBatch.
	MockBatch *Batch
	// MockBatches is returned by ListBatches, truncated to the limit.
	MockBatches []Batch
	// MockContent is returned by FileContent.
	MockContent string
	// BatchErr, when non-nil, is returned by every file and batch method.
	BatchErr error
}

// MockUpload records one UploadFile call.
type MockUpload struct {
	Name    string
	Purpose string
	Data    []byte
}

// Compile-time check that MockTransport satisfies the Transport interface.
var _ Transport = (*MockTransport)(nil)

// NewMockTransport creates a mock that returns the given completion
// responses in order. If no responses are provided, CreateCompletion returns
// an empty successful Completion.
func NewMockTransport(responses ...MockResponse) *MockTransport {
	return &MockTransport{
		responses: responses,
	}
}

// CreateCompletion returns the next canned response and records the request.
// It respects context cancellation.
func (m *MockTransport) CreateCompletion(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "CreateCompletion")
	m.completions = append(m.completions, req)

	if len(m.responses) == 0 {
		return &Completion{Model: "mock"}, nil
	}

	r := m.responses[m.idx]
	if m.idx < len(m.responses)-1 {
		m.idx++
	}

	if r.Err != nil {
		return nil, r.Err
	}

	return &Completion{
		ID:         "resp_mock",
		Model:      "mock",
		OutputText: r.Content,
		Error:      r.InBandError,
		Usage:      Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

// UploadFile reads r fully, records the upload and returns MockFile.
func (m *MockTransport) UploadFile(ctx context.Context, name string, r io.Reader, purpose string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "UploadFile")
	m.uploads = append(m.uploads, MockUpload{Name: name, Purpose: purpose, Data: data})
	if m.BatchErr != nil {
		return nil, m.BatchErr
	}
	if m.MockFile != nil {
		f := *m.MockFile
		return &f, nil
	}
	return &File{ID: "file-mock", Filename: name, Purpose: purpose, Bytes: int64(len(data))}, nil
}

// FileContent returns MockContent.
func (m *MockTransport) FileContent(ctx context.Context, _ string) (string, error) {
	if err := m.record(ctx, "FileContent"); err != nil {
		return "", err
	}
	return m.MockContent, nil
}

// CreateBatch returns a batch built from params, or MockBatch if set.
func (m *MockTransport) CreateBatch(ctx context.Context, params BatchParams) (*Batch, error) {
	if err := m.record(ctx, "CreateBatch"); err != nil {
		return nil, err
	}
	if m.MockBatch != nil {
		b := *m.MockBatch
		return &b, nil
	}
	return &Batch{
		ID:               "batch-mock",
		Status:           "validating",
		Endpoint:         params.Endpoint,
		CompletionWindow: params.CompletionWindow,
		InputFileID:      params.InputFileID,
		Metadata:         params.Metadata,
	}, nil
}

// RetrieveBatch returns MockBatch.
func (m *MockTransport) RetrieveBatch(ctx context.Context, batchID string) (*Batch, error) {
	if err := m.record(ctx, "RetrieveBatch"); err != nil {
		return nil, err
	}
	return m.batchOrDefault(batchID, "in_progress"), nil
}

// ListBatches returns up to limit entries of MockBatches.
func (m *MockTransport) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if err := m.record(ctx, "ListBatches"); err != nil {
		return nil, err
	}
	out := m.MockBatches
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return append([]Batch(nil), out...), nil
}

// CancelBatch returns MockBatch.
func (m *MockTransport) CancelBatch(ctx context.Context, batchID string) (*Batch, error) {
	if err := m.record(ctx, "CancelBatch"); err != nil {
		return nil, err
	}
	return m.batchOrDefault(batchID, "cancelling"), nil
}

func (m *MockTransport) record(ctx context.Context, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, method)
	return m.BatchErr
}

func (m *MockTransport) batchOrDefault(id, status string) *Batch {
	if m.MockBatch != nil {
		b := *m.MockBatch
		return &b
	}
	return &Batch{ID: id, Status: status}
}

// Completions returns a copy of all completion requests received.
func (m *MockTransport) Completions() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]CompletionRequest, len(m.completions))
	copy(out, m.completions)
	return out
}

// Uploads returns a copy of all recorded uploads.
func (m *MockTransport) Uploads() []MockUpload {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockUpload, len(m.uploads))
	copy(out, m.uploads)
	return out
}

// Calls returns the names of every transport method invoked, in order.
func (m *MockTransport) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the total number of transport calls made.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears call history and resets the response index to zero.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = nil
	m.completions = nil
	m.uploads = nil
	m.idx = 0
}
