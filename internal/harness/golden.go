package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden form of a scenario run.
// The fingerprint is left out so snapshots stay readable in review.
type Snapshot struct {
	Scenario string         `json:"scenario"`
	Op       string         `json:"op"`
	Tree     string         `json:"tree,omitempty"`
	Error    string         `json:"error,omitempty"`
	Records  []RecordResult `json:"records"`
}

// MarshalSnapshot renders the golden form of result: indented JSON with
// HTML escaping disabled, so operators print as written.
func MarshalSnapshot(scenario *Scenario, result *Result) ([]byte, error) {
	op, err := scenario.LogicalOp()
	if err != nil {
		return nil, err
	}

	snap := Snapshot{
		Scenario: scenario.Name,
		Op:       op.String(),
		Tree:     result.Tree,
		Error:    result.ErrorCode,
		Records:  result.Records,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// Returns error if the scenario cannot run. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snap, err := MarshalSnapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snap)

	return result, nil
}
