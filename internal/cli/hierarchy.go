package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/solir/internal/ir"
	"github.com/roach88/solir/internal/query"
	"github.com/roach88/solir/internal/session"
)

// HierarchyOptions holds flags for the hierarchy command.
type HierarchyOptions struct {
	*RootOptions
	Root string
}

// HierarchyResult describes one contract's place in the inheritance graph.
type HierarchyResult struct {
	Contract      string      `json:"contract"`
	File          string      `json:"file"`
	Declaration   string      `json:"declaration"`
	Linearization []string    `json:"linearization"`
	Bases         []string    `json:"bases"`
	Descendants   *query.Tree `json:"descendants"`
}

func (r HierarchyResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Declaration)
	fmt.Fprintf(&b, "  file:          %s\n", r.File)
	fmt.Fprintf(&b, "  linearization: %s\n", strings.Join(r.Linearization, " -> "))
	if len(r.Bases) > 0 {
		fmt.Fprintf(&b, "  bases:         %s\n", strings.Join(r.Bases, ", "))
	}
	b.WriteString("descendants:\n")
	writeTree(&b, r.Descendants, 1)
	return strings.TrimRight(b.String(), "\n")
}

func writeTree(b *strings.Builder, t *query.Tree, depth int) {
	fmt.Fprintf(b, "%s%s (%s)\n", strings.Repeat("  ", depth), t.Name, t.File)
	for _, c := range t.Children {
		writeTree(b, c, depth+1)
	}
}

// NewHierarchyCommand creates the hierarchy command.
func NewHierarchyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HierarchyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hierarchy <standard-json> <contract>",
		Short: "Show a contract's bases and descendants",
		Long: `Build the IR in memory and show where a contract sits in the
inheritance graph: its linearization, its direct bases and every contract
deriving from it.

Example:
  solir hierarchy --root ./contracts out.json Ownable`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHierarchy(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", ".", "source root directory")

	return cmd
}

func runHierarchy(opts *HierarchyOptions, outputPath, name string, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	s, err := e.loadSession(commandContext(cmd), outputPath, opts.Root)
	if err != nil {
		return err
	}

	c, err := s.ContractByName(name)
	if err != nil {
		exit := ExitCommandError
		if errors.Is(err, session.ErrAmbiguous) {
			exit = ExitFailure
		}
		return e.formatter.Fail(exit, ErrCodeNotFound, "cannot show hierarchy", err)
	}

	result, err := hierarchyOf(c)
	if err != nil {
		return e.formatter.Fail(ExitFailure, ErrCodeIR, "cannot show hierarchy", err)
	}
	return e.formatter.Success(result)
}

func hierarchyOf(c *ir.ContractDefinition) (HierarchyResult, error) {
	lin, err := c.LinearizedBaseContracts()
	if err != nil {
		return HierarchyResult{}, err
	}
	bases, err := query.DirectBases(c)
	if err != nil {
		return HierarchyResult{}, err
	}

	return HierarchyResult{
		Contract:      c.Name(),
		File:          c.File(),
		Declaration:   c.DeclarationString(),
		Linearization: contractNames(lin),
		Bases:         contractNames(bases),
		Descendants:   query.DescendantTree(c),
	}, nil
}

func contractNames(cs []*ir.ContractDefinition) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name()
	}
	return out
}
