package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/solir/internal/ir"
	"github.com/roach88/solir/internal/resolver"
	"github.com/roach88/solir/internal/session"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Root     string // directory the compiler's source paths are relative to
	Database string // index path, overrides store_path
	NoIndex  bool   // skip writing the index
	Dump     string // source path whose IR tree is printed
}

// BuildResult summarizes a built unit.
type BuildResult struct {
	Unit         string   `json:"unit"`
	Files        []string `json:"files"`
	Contracts    int      `json:"contracts"`
	Declarations int      `json:"declarations"`
	Indexed      bool     `json:"indexed"`
	Dump         string   `json:"dump,omitempty"`
}

func (r BuildResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unit %s: %d file(s), %d contract(s), %d declaration(s)\n",
		resolver.UnitID(r.Unit).Short(), len(r.Files), r.Contracts, r.Declarations)
	for _, f := range r.Files {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	if r.Indexed {
		b.WriteString("Index updated.\n")
	}
	if r.Dump != "" {
		b.WriteString("\n")
		b.WriteString(r.Dump)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <standard-json>",
		Short: "Build the IR of a compilation unit and index it",
		Long: `Build the IR of every source in a solc standard-JSON output.

The output must have been produced with the "ast" output selected. Source
text is read from --root using the compiler's source paths. Pass "-" to
read the output from stdin.

Example:
  solc --standard-json input.json > out.json
  solir build --root ./contracts out.json
  solir build --dump Token.sol --no-index out.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", ".", "source root directory")
	cmd.Flags().StringVar(&opts.Database, "db", "", "index database (default: store_path from config)")
	cmd.Flags().BoolVar(&opts.NoIndex, "no-index", false, "build without writing the index")
	cmd.Flags().StringVar(&opts.Dump, "dump", "", "print the IR tree of this source path")

	return cmd
}

func runBuild(opts *BuildOptions, outputPath string, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	s, err := e.loadSession(ctx, outputPath, opts.Root)
	if err != nil {
		return err
	}
	result := summarize(s)

	if opts.Dump != "" {
		su, err := s.SourceUnit(opts.Dump)
		if err != nil {
			return e.formatter.Fail(ExitCommandError, ErrCodeNotFound, "cannot dump", err)
		}
		var buf bytes.Buffer
		if err := ir.Dump(&buf, su); err != nil {
			return e.formatter.Fail(ExitFailure, ErrCodeGeneric, "cannot dump", err)
		}
		result.Dump = buf.String()
	}

	if !opts.NoIndex {
		st, err := e.openStore(opts.Database)
		if err != nil {
			return err
		}
		defer e.closeStore(st)

		if err := st.WriteUnit(ctx, s.Unit(), s.ID(), s.SourceUnits()); err != nil {
			return e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to write index", err)
		}
		result.Indexed = true
		e.logger.Info("unit indexed", "unit", s.Unit().Short(), "files", len(result.Files))
	}

	return e.formatter.Success(result)
}

func summarize(s *session.Session) BuildResult {
	result := BuildResult{Unit: string(s.Unit()), Files: []string{}}
	for _, su := range s.SourceUnits() {
		result.Files = append(result.Files, su.File())
		result.Contracts += len(su.Contracts())
		for range su.Declarations() {
			result.Declarations++
		}
	}
	return result
}
