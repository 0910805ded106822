package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/predkit/internal/eval"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	ComposeOptions
	Records string // records file, "-" for stdin
}

// RecordOutcome is the result for one record.
type RecordOutcome struct {
	Index int  `json:"index"`
	Match bool `json:"match"`
}

// EvalResult is the output of eval.
type EvalResult struct {
	Tree    string          `json:"tree"`
	Records []RecordOutcome `json:"records"`
	Matched int             `json:"matched"`
	Total   int             `json:"total"`
}

func (r EvalResult) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, r.Tree)
	for _, rec := range r.Records {
		fmt.Fprintf(&b, "[%d] %t\n", rec.Index, rec.Match)
	}
	fmt.Fprintf(&b, "%d/%d record(s) matched", r.Matched, r.Total)
	return b.String()
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{ComposeOptions: ComposeOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "eval [definition...] --records <file>",
		Short: "Evaluate composed predicates against records",
		Long: `Compose the given definitions (as compose does) and evaluate the result
against every record in a YAML or JSON list.

Exit codes:
  0 - Evaluation completed (matches or not)
  1 - Definitions could not be composed or a record could not be evaluated
  2 - Command error (missing files, unreadable records)

Examples:
  predkit eval adults.yaml us.yaml --records people.json
  cat people.yaml | predkit eval adults.yaml --records -`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args, cmd)
		},
	}
	addComposeFlags(cmd, &opts.ComposeOptions)
	cmd.Flags().StringVar(&opts.Records, "records", "", "YAML or JSON list of records (- for stdin)")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

func runEval(opts *EvalOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	records, err := readRecords(opts.Records, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRecords, err.Error(), nil)
	}

	composed, err := composeFromArgs(cmd.Context(), &opts.ComposeOptions, paths, formatter)
	if err != nil {
		return err
	}

	result := EvalResult{
		Tree:    composed.result.Tree,
		Records: make([]RecordOutcome, 0, len(records)),
		Total:   len(records),
	}
	for i, rec := range records {
		ok, err := eval.EvalAny(composed.lambda, rec)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeRecords, fmt.Sprintf("record %d: %v", i, err), nil)
		}
		if ok {
			result.Matched++
		}
		result.Records = append(result.Records, RecordOutcome{Index: i, Match: ok})
	}

	return formatter.Success(result)
}

// readRecords reads a YAML (or JSON) sequence of records.
func readRecords(path string, stdin io.Reader) ([]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var records []any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&records); err != nil {
		if err == io.EOF {
			return []any{}, nil
		}
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return records, nil
}
