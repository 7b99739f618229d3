package sheets

import (
	"context"
	"sync"

	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/service"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	writeErr error
	calls    []WriteCall
	mu       sync.Mutex
}

// WriteCall records the parameters of a Write call.
type WriteCall struct {
	Summaries []model.PeriodSummary
	Series    []model.SavingsPoint
}

// NewMockWriter creates a new mock report writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements the ReportWriter interface.
func (m *MockWriter) Write(_ context.Context, summaries []model.PeriodSummary, series []model.SavingsPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}

	m.calls = append(m.calls, WriteCall{Summaries: summaries, Series: series})
	return nil
}

// GetWriteCalls returns a copy of recorded calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// SetWriteError makes subsequent Write calls fail.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Reset clears recorded calls and errors.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.writeErr = nil
}

var _ service.ReportWriter = (*MockWriter)(nil)
