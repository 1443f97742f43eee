package testutil

import (
	"context"
	"sync"

	"github.com/mattwparas/Rucket/internal/contract"
)

// Recorder is a contract.Reporter that keeps every violation in memory.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Recorder struct {
	mu         sync.Mutex
	violations []*contract.ViolationError

	// Err, when set, is returned from every Report call after recording.
	Err error
}

var _ contract.Reporter = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report records v.
func (r *Recorder) Report(_ context.Context, v *contract.ViolationError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, v)
	return r.Err
}

// Violations returns a copy of the recorded violations in report order.
func (r *Recorder) Violations() []*contract.ViolationError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*contract.ViolationError, len(r.violations))
	copy(out, r.violations)
	return out
}

// Codes returns the code of each recorded violation in report order.
func (r *Recorder) Codes() []contract.ErrorCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes := make([]contract.ErrorCode, len(r.violations))
	for i, v := range r.violations {
		codes[i] = v.Code
	}
	return codes
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = nil
}
