package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/predkit/internal/catalog"
	"github.com/roach88/predkit/internal/definition"
	"github.com/roach88/predkit/internal/filter"
)

// CatalogOptions holds flags for the catalog commands.
type CatalogOptions struct {
	*RootOptions
	DB string
}

// CatalogEntry is the output form of a stored definition.
type CatalogEntry struct {
	Name        string   `json:"name"`
	Entity      string   `json:"entity"`
	Fingerprint string   `json:"fingerprint"`
	Revision    int      `json:"revision"`
	Description string   `json:"description,omitempty"`
	Tree        string   `json:"tree,omitempty"`
	Equivalent  []string `json:"equivalent,omitempty"`
}

func (e CatalogEntry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) rev %d\n", e.Name, e.Entity, e.Revision)
	if e.Description != "" {
		fmt.Fprintf(&b, "  %s\n", e.Description)
	}
	if e.Tree != "" {
		fmt.Fprintf(&b, "  %s\n", e.Tree)
	}
	fmt.Fprintf(&b, "  fingerprint: %s", e.Fingerprint)
	if len(e.Equivalent) > 0 {
		fmt.Fprintf(&b, "\n  equivalent: %s", strings.Join(e.Equivalent, ", "))
	}
	return b.String()
}

// CatalogList is the output of catalog list.
type CatalogList struct {
	Entries []CatalogEntry `json:"entries"`
}

func (l CatalogList) String() string {
	if len(l.Entries) == 0 {
		return "No definitions."
	}
	lines := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		lines[i] = fmt.Sprintf("%s\t%s\t%s\trev %d", e.Name, e.Entity, shortFingerprint(e.Fingerprint), e.Revision)
	}
	return strings.Join(lines, "\n")
}

// CatalogDeleted is the output of catalog delete.
type CatalogDeleted struct {
	Name string `json:"name"`
}

func (d CatalogDeleted) String() string { return "deleted " + d.Name }

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Store and look up named predicate definitions",
		Long: `Manage a SQLite catalog of named predicate definitions.

Stored definitions can be referenced from compose and eval with --ref.
Entries with the same fingerprint build equivalent predicate trees.`,
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "predkit.db", "catalog database path")

	cmd.AddCommand(newCatalogPutCommand(opts))
	cmd.AddCommand(newCatalogGetCommand(opts))
	cmd.AddCommand(newCatalogListCommand(opts))
	cmd.AddCommand(newCatalogDeleteCommand(opts))

	return cmd
}

func newCatalogPutCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "put <definition>...",
		Short:         "Store definitions, replacing entries with the same name",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)

			loaded, errs := LoadDefinitions(args, LoadModeFailFast)
			if len(errs) > 0 {
				return formatter.Fail(loadExitCode(errs[0]), loadErrorCode(errs[0]), errs[0].Error(), nil)
			}

			c, err := openCatalog(opts, formatter)
			if err != nil {
				return err
			}
			defer c.Close()

			list := CatalogList{Entries: make([]CatalogEntry, 0, len(loaded.Definitions))}
			for i, def := range loaded.Definitions {
				e, err := c.Put(cmd.Context(), def)
				if err != nil {
					return formatter.Fail(ExitFailure, definitionCode(err), fmt.Sprintf("%s: %v", loaded.Files[i], err), nil)
				}
				formatter.VerboseLog("stored %s from %s", e.Name, loaded.Files[i])
				list.Entries = append(list.Entries, toCatalogEntry(e))
			}
			return formatter.Success(list)
		},
	}
}

func newCatalogGetCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <name>",
		Short:         "Show a stored definition and its equivalents",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)

			c, err := openCatalog(opts, formatter)
			if err != nil {
				return err
			}
			defer c.Close()

			e, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return catalogFail(formatter, err)
			}

			out := toCatalogEntry(e)
			out.Description = e.Definition.Description
			if l, err := definition.Build(e.Definition, filter.Builder{}); err == nil {
				out.Tree = l.String()
			}

			same, err := c.FindByFingerprint(cmd.Context(), e.Fingerprint)
			if err != nil {
				return catalogFail(formatter, err)
			}
			for _, s := range same {
				if s.Name != e.Name {
					out.Equivalent = append(out.Equivalent, s.Name)
				}
			}
			return formatter.Success(out)
		},
	}
}

func newCatalogListCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored definitions by name",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)

			c, err := openCatalog(opts, formatter)
			if err != nil {
				return err
			}
			defer c.Close()

			entries, err := c.List(cmd.Context())
			if err != nil {
				return catalogFail(formatter, err)
			}
			list := CatalogList{Entries: make([]CatalogEntry, 0, len(entries))}
			for _, e := range entries {
				list.Entries = append(list.Entries, toCatalogEntry(e))
			}
			return formatter.Success(list)
		},
	}
}

func newCatalogDeleteCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <name>",
		Short:         "Remove a stored definition",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd)

			c, err := openCatalog(opts, formatter)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return catalogFail(formatter, err)
			}
			return formatter.Success(CatalogDeleted{Name: args[0]})
		},
	}
}

func openCatalog(opts *CatalogOptions, formatter *OutputFormatter) (*catalog.Catalog, error) {
	c, err := catalog.Open(opts.DB)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeCatalog, err.Error(), nil)
	}
	formatter.VerboseLog("opened catalog %s", opts.DB)
	return c, nil
}

func catalogFail(formatter *OutputFormatter, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, err.Error(), nil)
	}
	return formatter.Fail(ExitCommandError, ErrCodeCatalog, err.Error(), nil)
}

func toCatalogEntry(e catalog.Entry) CatalogEntry {
	return CatalogEntry{
		Name:        e.Name,
		Entity:      e.Entity,
		Fingerprint: e.Fingerprint,
		Revision:    e.Revision,
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
