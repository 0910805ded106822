package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/predkit/internal/definition"
	"github.com/roach88/predkit/internal/filter"
)

// ValidationError is one invalid definition.
type ValidationError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Count  int               `json:"count"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate predicate definitions",
		Long: `Validate predicate definition files without composing them.

Each path is a file or a directory searched for .yaml, .yml, .json and
.cue files. Every definition is parsed, checked and built, so operator
and value conversion errors are reported too.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, loadErrors := LoadDefinitions(paths, LoadModeCollectAll)
	if loaded == nil && len(loadErrors) > 0 {
		return formatter.Fail(ExitCommandError, loadErrorCode(loadErrors[0]), loadErrors[0].Error(), nil)
	}

	var invalid []ValidationError
	for _, err := range loadErrors {
		invalid = append(invalid, toValidationError(err))
	}

	for i, def := range loaded.Definitions {
		formatter.VerboseLog("Validating %s (%s)", def.Name, loaded.Files[i])
		if _, err := definition.Build(def, filter.Builder{}); err != nil {
			invalid = append(invalid, toValidationError(convertDefinitionError(err, loaded.Files[i])))
		}
	}

	count := len(loaded.Definitions) + len(loadErrors)
	if len(invalid) > 0 {
		return outputValidationErrors(formatter, count, invalid)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Count: count})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d definition(s) valid\n", count)
	return nil
}

func toValidationError(err error) ValidationError {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return ValidationError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	ve := ValidationError{Path: loadErr.Path, Code: loadErr.Code, Message: loadErr.Message}
	if loadErr.Pos.IsValid() {
		ve.Line = loadErr.Pos.Line()
	}
	return ve
}

// outputValidationErrors outputs every invalid definition.
func outputValidationErrors(formatter *OutputFormatter, count int, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Count: count, Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else {
		for _, e := range errs {
			if e.Line > 0 {
				fmt.Fprintf(formatter.Writer, "✗ %s:%d: [%s] %s\n", e.Path, e.Line, e.Code, e.Message)
			} else {
				fmt.Fprintf(formatter.Writer, "✗ %s: [%s] %s\n", e.Path, e.Code, e.Message)
			}
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("%d of %d definition(s) invalid", len(errs), count))
}
