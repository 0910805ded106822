package harness

// RecordResult is the outcome of one record.
type RecordResult struct {
	Name string `json:"name"`

	// Got is the composed predicate's result.
	Got bool `json:"got"`

	// Operands holds each input predicate's result for the same record.
	Operands []bool `json:"operands"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every check and expectation held.
	Pass bool `json:"pass"`

	// Tree is the printed composed predicate. Empty when composition failed.
	Tree string `json:"tree,omitempty"`

	// Fingerprint is the alpha-invariant hash of the composed predicate.
	Fingerprint string `json:"fingerprint,omitempty"`

	// ErrorCode is the composition error code, when composition failed.
	ErrorCode string `json:"error_code,omitempty"`

	// Records holds per-record outcomes in scenario order.
	Records []RecordResult `json:"records"`

	// Errors contains failed check messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Records: []RecordResult{},
		Errors:  []string{},
	}
}

// AddError adds a failed check message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
