package harness

import "github.com/mattwparas/Rucket/internal/store"

// Trace event types.
const (
	EventCall      = "call"
	EventReturn    = "return"
	EventViolation = "violation"
	EventError     = "error"
)

// TraceEvent is one entry of a scenario trace. A call event is always
// followed by exactly one outcome event (return, violation or error).
type TraceEvent struct {
	Type     string   `json:"type"`
	Seq      int64    `json:"seq"`
	Function string   `json:"function,omitempty"`
	Args     []string `json:"args,omitempty"`
	Value    string   `json:"value,omitempty"`
	Code     string   `json:"code,omitempty"`
	Blame    string   `json:"blame,omitempty"`
	Position *int     `json:"position,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// RunID is the journal run the scenario recorded into.
	RunID string `json:"run_id"`

	// Trace contains every call and its outcome in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Violations are the journaled violations, in detection order.
	Violations []store.Violation `json:"violations"`
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:       true,
		RunID:      runID,
		Trace:      []TraceEvent{},
		Errors:     []string{},
		Violations: []store.Violation{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addEvent(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
