package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/definition"
	"github.com/roach88/predkit/internal/eval"
	"github.com/roach88/predkit/internal/filter"
	"github.com/roach88/predkit/internal/fingerprint"
	"github.com/roach88/predkit/internal/value"
	"github.com/roach88/predkit/predicate"
)

// Harness runs scenarios.
type Harness struct {
	filters filter.Builder
	logger  *slog.Logger
}

// New creates a harness that logs to logger. A nil logger discards.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a discarding logger.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run executes a scenario and returns the result.
//
// Errors are returned for scenarios that cannot run at all (unreadable or
// invalid definitions). Failed checks are reported in the Result.
//
// Execution flow:
//  1. Load and build every predicate independently
//  2. Compose them left to right with the scenario's operator
//  3. Check the composed shape and operand immutability
//  4. Evaluate every record against the composed predicate and the operands
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	if len(scenario.Predicates) == 0 {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, predicate.ErrEmpty)
	}
	op, err := scenario.LogicalOp()
	if err != nil {
		return nil, err
	}

	operands := make([]*expr.Lambda, 0, len(scenario.Predicates))
	for _, path := range scenario.Predicates {
		def, err := definition.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load predicate: %w", err)
		}
		l, err := definition.Build(def, h.filters)
		if err != nil {
			return nil, fmt.Errorf("build predicate %q: %w", def.Name, err)
		}
		operands = append(operands, l)
	}

	before := make([]string, len(operands))
	for i, l := range operands {
		before[i] = l.String()
	}

	result := NewResult()
	composed, err := compose(operands, op)
	if err != nil {
		return h.compositionFailed(scenario, result, err)
	}
	if scenario.ExpectError != "" {
		result.AddError(fmt.Sprintf("expected %s, composition succeeded", scenario.ExpectError))
		return result, nil
	}

	result.Tree = composed.String()
	result.Fingerprint = fingerprint.Of(composed)
	h.logger.Info("composed predicate",
		"scenario", scenario.Name,
		"operands", len(operands),
		"fingerprint", result.Fingerprint,
	)

	checkShape(result, composed, operands[0])
	for i, l := range operands {
		if after := l.String(); after != before[i] {
			result.AddError(fmt.Sprintf("operand %d changed: %s -> %s", i, before[i], after))
		}
	}
	if scenario.ExpectTree != "" && scenario.ExpectTree != result.Tree {
		result.AddError(fmt.Sprintf("tree: expected %s, got %s", scenario.ExpectTree, result.Tree))
	}

	for _, rec := range scenario.Records {
		rr, err := h.evaluate(rec, composed, operands, op)
		if err != nil {
			result.AddError(fmt.Sprintf("record %q: %v", rec.Name, err))
			continue
		}
		if rec.Expect != nil && *rec.Expect != rr.Got {
			result.AddError(fmt.Sprintf("record %q: expected %t, got %t", rec.Name, *rec.Expect, rr.Got))
		}
		if want := truth(op, rr.Operands); want != rr.Got {
			result.AddError(fmt.Sprintf("record %q: composed result %t disagrees with operands %v", rec.Name, rr.Got, rr.Operands))
		}
		result.Records = append(result.Records, rr)
	}

	h.logger.Info("scenario finished", "scenario", scenario.Name, "pass", result.Pass, "records", len(result.Records))
	return result, nil
}

func (h *Harness) compositionFailed(scenario *Scenario, result *Result, err error) (*Result, error) {
	var ce *predicate.CompositionError
	if !errors.As(err, &ce) {
		return nil, err
	}
	result.ErrorCode = string(ce.Code)

	h.logger.Info("composition failed", "scenario", scenario.Name, "code", ce.Code, "error", err)
	if scenario.ExpectError != string(ce.Code) {
		result.AddError(fmt.Sprintf("composition failed: %v", err))
	}
	return result, nil
}

func (h *Harness) evaluate(rec Record, composed *expr.Lambda, operands []*expr.Lambda, op expr.LogicalOp) (RecordResult, error) {
	v, err := value.FromAny(rec.Value)
	if err != nil {
		return RecordResult{}, err
	}

	rr := RecordResult{Name: rec.Name, Operands: make([]bool, len(operands))}
	for i, l := range operands {
		if rr.Operands[i], err = eval.Eval(l, v); err != nil {
			return RecordResult{}, fmt.Errorf("operand %d: %w", i, err)
		}
	}
	if rr.Got, err = eval.Eval(composed, v); err != nil {
		return RecordResult{}, err
	}
	return rr, nil
}

func compose(operands []*expr.Lambda, op expr.LogicalOp) (*expr.Lambda, error) {
	if len(operands) == 0 {
		return nil, predicate.ErrEmpty
	}
	acc := operands[0]
	for _, l := range operands[1:] {
		var err error
		if acc, err = predicate.Combine(acc, l, op); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// checkShape verifies the composed predicate binds first's parameter and
// references no other.
func checkShape(result *Result, composed, first *expr.Lambda) {
	x := composed.Param()
	if x == nil {
		result.AddError(fmt.Sprintf("composed predicate binds %d parameters", len(composed.Params)))
		return
	}
	if x != first.Param() {
		result.AddError("composed predicate does not bind the first operand's parameter")
	}
	for _, p := range expr.Params(composed.Body) {
		if p != x {
			result.AddError(fmt.Sprintf("composed body references foreign parameter %s (%s)", p.Name(), p.ID()))
		}
	}
}

func truth(op expr.LogicalOp, vals []bool) bool {
	acc := vals[0]
	for _, v := range vals[1:] {
		if op == expr.OrElse {
			acc = acc || v
		} else {
			acc = acc && v
		}
	}
	return acc
}
