package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/predkit/expr"
	"github.com/roach88/predkit/internal/catalog"
	"github.com/roach88/predkit/internal/definition"
	"github.com/roach88/predkit/internal/filter"
	"github.com/roach88/predkit/internal/fingerprint"
	"github.com/roach88/predkit/predicate"
)

// ComposeOptions holds flags shared by compose and eval.
type ComposeOptions struct {
	*RootOptions
	Op   string   // "and" | "or"
	DB   string   // catalog database for --ref
	Refs []string // catalog entries to include after the files
}

// ComposeResult is the output of compose.
type ComposeResult struct {
	Tree        string   `json:"tree"`
	Entity      string   `json:"entity"`
	Fingerprint string   `json:"fingerprint"`
	Operands    []string `json:"operands"`
}

func (r ComposeResult) String() string {
	return fmt.Sprintf("%s\nentity: %s\nfingerprint: %s", r.Tree, r.Entity, r.Fingerprint)
}

// NewComposeCommand creates the compose command.
func NewComposeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComposeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compose [definition...]",
		Short: "Combine predicate definitions into one predicate",
		Long: `Combine predicate definitions with AND or OR.

Every definition is built on its own and folded left to right. The result
binds the first definition's parameter; the others are rebound to it.

Examples:
  predkit compose adults.yaml us.yaml
  predkit compose adults.yaml us.cue --op or
  predkit compose adults.yaml --db predkit.db --ref us --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(opts, args, cmd)
		},
	}
	addComposeFlags(cmd, opts)

	return cmd
}

func addComposeFlags(cmd *cobra.Command, opts *ComposeOptions) {
	cmd.Flags().StringVar(&opts.Op, "op", "and", "logical operator joining the predicates (and|or)")
	cmd.Flags().StringVar(&opts.DB, "db", "predkit.db", "catalog database used by --ref")
	cmd.Flags().StringArrayVar(&opts.Refs, "ref", nil, "catalog entry to include (repeatable)")
}

func runCompose(opts *ComposeOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	composed, err := composeFromArgs(cmd.Context(), opts, paths, formatter)
	if err != nil {
		return err
	}
	return formatter.Success(composed.result)
}

type composition struct {
	lambda *expr.Lambda
	result ComposeResult
}

// composeFromArgs loads files and catalog refs and folds them with opts.Op.
// Failures are written through formatter and returned as ExitErrors.
func composeFromArgs(ctx context.Context, opts *ComposeOptions, paths []string, formatter *OutputFormatter) (*composition, error) {
	op, err := expr.ParseLogicalOp(opts.Op)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if len(paths) == 0 && len(opts.Refs) == 0 {
		return nil, formatter.Fail(ExitCommandError, ErrCodeNoFiles, "no definitions given", nil)
	}

	var defs []*definition.Definition
	if len(paths) > 0 {
		loaded, errs := LoadDefinitions(paths, LoadModeFailFast)
		if len(errs) > 0 {
			return nil, formatter.Fail(loadExitCode(errs[0]), loadErrorCode(errs[0]), errs[0].Error(), nil)
		}
		defs = loaded.Definitions
	}

	if len(opts.Refs) > 0 {
		refs, err := loadRefs(ctx, opts.DB, opts.Refs)
		if err != nil {
			code := ErrCodeCatalog
			if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
				code = ErrCodeNotFound
			}
			return nil, formatter.Fail(ExitCommandError, code, err.Error(), nil)
		}
		defs = append(defs, refs...)
	}

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
		formatter.VerboseLog("operand %d: %s (%s)", i, d.Name, d.Entity)
	}

	l, err := definition.Combine(defs, op, filter.Builder{})
	if err != nil {
		var ce *predicate.CompositionError
		if errors.As(err, &ce) {
			return nil, formatter.Fail(ExitFailure, string(ce.Code), err.Error(), ce.Details)
		}
		return nil, formatter.Fail(ExitFailure, definitionCode(err), err.Error(), nil)
	}

	return &composition{
		lambda: l,
		result: ComposeResult{
			Tree:        l.String(),
			Entity:      string(l.Param().Type()),
			Fingerprint: fingerprint.Of(l),
			Operands:    names,
		},
	}, nil
}

// loadRefs reads names from an existing catalog; a missing database is not
// created.
func loadRefs(ctx context.Context, db string, names []string) ([]*definition.Definition, error) {
	if _, err := os.Stat(db); err != nil {
		return nil, fmt.Errorf("catalog database: %w", err)
	}
	c, err := catalog.Open(db)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	defs := make([]*definition.Definition, 0, len(names))
	for _, name := range names {
		e, err := c.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, e.Definition)
	}
	return defs, nil
}

// loadExitCode maps load failures to exit codes: missing paths are command
// errors, broken documents are failures.
func loadExitCode(err error) int {
	if strings.HasPrefix(loadErrorCode(err), "E0") {
		return ExitCommandError
	}
	return ExitFailure
}

func definitionCode(err error) string {
	if code := definition.Code(err); code != "" {
		return code
	}
	return ErrCodeGeneric
}
