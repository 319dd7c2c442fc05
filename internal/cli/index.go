package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/solir/internal/resolver"
	"github.com/roach88/solir/internal/store"
)

// IndexOptions holds flags shared by the index subcommands.
type IndexOptions struct {
	*RootOptions
	Database string
	Unit     string // unit ID or unique prefix, empty for the latest
}

// ContractList is the text/JSON form of a list of indexed contracts.
type ContractList struct {
	Unit      string           `json:"unit"`
	Contracts []store.Contract `json:"contracts"`
}

func (l ContractList) String() string {
	if len(l.Contracts) == 0 {
		return "No contracts."
	}
	var b strings.Builder
	for _, c := range l.Contracts {
		abstract := ""
		if c.Abstract {
			abstract = "abstract "
		}
		fmt.Fprintf(&b, "%s%s %s  %s:%d\n", abstract, c.Kind, c.Name, c.File, c.Location.Start)
	}
	return strings.TrimRight(b.String(), "\n")
}

// DeclarationList is the text/JSON form of a declaration search.
type DeclarationList struct {
	Unit         string              `json:"unit"`
	Query        string              `json:"query"`
	Declarations []store.Declaration `json:"declarations"`
}

func (l DeclarationList) String() string {
	if len(l.Declarations) == 0 {
		return fmt.Sprintf("No declarations named %q.", l.Query)
	}
	var b strings.Builder
	for _, d := range l.Declarations {
		fmt.Fprintf(&b, "%s %s  %s:%d\n", d.NodeType, d.CanonicalName, d.File, d.NameLocation.Start)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CheckResult reports the consistency of an indexed unit.
type CheckResult struct {
	store.UnitState
}

func (r CheckResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unit %s: %d file(s), %d contract(s), %d declaration(s)\n",
		r.Unit.Short(), r.Files, r.Contracts, r.Declarations)
	for _, e := range r.DanglingEdges {
		fmt.Fprintf(&b, "  dangling base %d of contract %d (%s, position %d)\n", e.BaseID, e.ChildID, e.File, e.Position)
	}
	if r.IsComplete {
		b.WriteString("Index is complete.")
	} else {
		b.WriteString("Index is incomplete; rebuild the unit.")
	}
	return b.String()
}

// NewIndexCommand creates the index command and its subcommands.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Query the contract index",
		Long: `Query the SQLite index written by "solir build".

Subcommands read the most recently built unit unless --unit names another.

Example:
  solir index contracts
  solir index descendants Ownable
  solir index find Transfer --format json`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "index database (default: store_path from config)")
	cmd.PersistentFlags().StringVar(&opts.Unit, "unit", "", "unit ID or prefix (default: latest)")

	cmd.AddCommand(newIndexSubcommand(opts, "contracts", "List indexed contracts", cobra.NoArgs, runIndexContracts))
	cmd.AddCommand(newIndexSubcommand(opts, "descendants <contract>", "List contracts deriving from a contract", cobra.ExactArgs(1), runIndexDescendants))
	cmd.AddCommand(newIndexSubcommand(opts, "find <name>", "Find declarations by name or canonical name", cobra.ExactArgs(1), runIndexFind))
	cmd.AddCommand(newIndexSubcommand(opts, "check", "Report dangling inheritance edges", cobra.NoArgs, runIndexCheck))

	return cmd
}

type indexRunner func(ctx context.Context, e *env, st *store.Store, unit resolver.UnitID, args []string) error

func newIndexSubcommand(opts *IndexOptions, use, short string, args cobra.PositionalArgs, run indexRunner) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, a []string) error {
			e, err := newEnv(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			st, err := e.openStore(opts.Database)
			if err != nil {
				return err
			}
			defer e.closeStore(st)

			ctx := commandContext(cmd)
			unit, err := resolveUnit(ctx, e, st, opts.Unit)
			if err != nil {
				return err
			}
			return run(ctx, e, st, unit, a)
		},
	}
}

// resolveUnit picks the unit named by prefix, or the latest one.
func resolveUnit(ctx context.Context, e *env, st *store.Store, prefix string) (resolver.UnitID, error) {
	units, err := st.Units(ctx)
	if err != nil {
		return "", e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read index", err)
	}
	if len(units) == 0 {
		return "", e.formatter.Fail(ExitCommandError, ErrCodeNotFound, "index is empty; run solir build first", nil)
	}
	if prefix == "" {
		return units[len(units)-1].ID, nil
	}

	var matches []resolver.UnitID
	for _, u := range units {
		if strings.HasPrefix(string(u.ID), prefix) {
			matches = append(matches, u.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", e.formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no unit matches %q", prefix), nil)
	case 1:
		return matches[0], nil
	default:
		return "", e.formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("%d units match %q", len(matches), prefix), nil)
	}
}

func runIndexContracts(ctx context.Context, e *env, st *store.Store, unit resolver.UnitID, _ []string) error {
	contracts, err := st.Contracts(ctx, unit)
	if err != nil {
		return e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to list contracts", err)
	}
	return e.formatter.Success(ContractList{Unit: string(unit), Contracts: contracts})
}

func runIndexDescendants(ctx context.Context, e *env, st *store.Store, unit resolver.UnitID, args []string) error {
	named, err := st.ContractsByName(ctx, unit, args[0])
	if err != nil {
		return e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to find contract", err)
	}
	switch len(named) {
	case 0:
		return e.formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no contract %q in unit %s", args[0], unit.Short()), nil)
	case 1:
	default:
		return e.formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("contract %q is declared %d times", args[0], len(named)), nil)
	}

	desc, err := st.Descendants(ctx, unit, named[0].ID)
	if err != nil {
		return e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to list descendants", err)
	}
	return e.formatter.Success(ContractList{Unit: string(unit), Contracts: desc})
}

func runIndexFind(ctx context.Context, e *env, st *store.Store, unit resolver.UnitID, args []string) error {
	decls, err := st.FindDeclarations(ctx, unit, args[0])
	if err != nil {
		return e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to find declarations", err)
	}
	return e.formatter.Success(DeclarationList{Unit: string(unit), Query: args[0], Declarations: decls})
}

func runIndexCheck(ctx context.Context, e *env, st *store.Store, unit resolver.UnitID, _ []string) error {
	state, err := st.Check(ctx, unit)
	if err != nil {
		return e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to check index", err)
	}
	if err := e.formatter.Success(CheckResult{state}); err != nil {
		return err
	}
	if !state.IsComplete {
		return NewExitError(ExitFailure, fmt.Sprintf("unit %s has %d dangling edge(s)", unit.Short(), len(state.DanglingEdges)))
	}
	return nil
}
