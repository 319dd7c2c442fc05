package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/solir/internal/resolver"
	"github.com/roach88/solir/internal/session"
	"github.com/roach88/solir/internal/store"
)

// InvalidateOptions holds flags for the invalidate command.
type InvalidateOptions struct {
	*RootOptions
	Root     string
	Database string
	Rebuild  bool // reconstruct the removed files from disk
}

// InvalidateResult lists the files dropped from a unit.
type InvalidateResult struct {
	Unit    string   `json:"unit"`
	Removed []string `json:"removed"`
	Deleted []string `json:"deleted"` // removed paths that were indexed
	Rebuilt []string `json:"rebuilt,omitempty"`
}

func (r InvalidateResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unit %s: removed %d file(s)\n", resolver.UnitID(r.Unit).Short(), len(r.Removed))
	for _, p := range r.Removed {
		mark := " "
		if slices.Contains(r.Deleted, p) {
			mark = "-"
		}
		fmt.Fprintf(&b, "  %s %s\n", mark, p)
	}
	if len(r.Rebuilt) > 0 {
		fmt.Fprintf(&b, "Rebuilt %d file(s) and updated the index.\n", len(r.Rebuilt))
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewInvalidateCommand creates the invalidate command.
func NewInvalidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvalidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invalidate <standard-json> <path>...",
		Short: "Drop files and their importers from the index",
		Long: `Build the IR, then invalidate each path together with every file
importing it, directly or transitively. The removed files are deleted from
the index. With --rebuild they are read again from --root, rebuilt and
written back, so the index reflects the current sources.

Example:
  solir invalidate out.json Ownable.sol
  solir invalidate --rebuild --root ./contracts out.json Ownable.sol`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvalidate(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", ".", "source root directory")
	cmd.Flags().StringVar(&opts.Database, "db", "", "index database (default: store_path from config)")
	cmd.Flags().BoolVar(&opts.Rebuild, "rebuild", false, "rebuild the removed files and re-index them")

	return cmd
}

func runInvalidate(opts *InvalidateOptions, outputPath string, paths []string, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	files, err := e.loadFiles(outputPath, opts.Root)
	if err != nil {
		return err
	}
	s, err := e.buildSession(ctx, files)
	if err != nil {
		return err
	}
	unit := s.Unit()

	result := InvalidateResult{Unit: string(unit), Removed: []string{}, Deleted: []string{}}
	for _, p := range paths {
		if slices.Contains(result.Removed, p) {
			continue
		}
		removed, err := s.Invalidate(p)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return e.formatter.Fail(ExitCommandError, ErrCodeNotFound, "cannot invalidate", err)
			}
			return e.formatter.Fail(ExitFailure, ErrCodeIR, "cannot invalidate", err)
		}
		result.Removed = append(result.Removed, removed...)
	}

	st, err := e.openStore(opts.Database)
	if err != nil {
		return err
	}
	defer e.closeStore(st)

	for _, p := range result.Removed {
		ok, err := st.DeleteFile(ctx, unit, p)
		if err != nil {
			return e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to update index", err)
		}
		if ok {
			result.Deleted = append(result.Deleted, p)
		}
	}

	if opts.Rebuild {
		units, err := st.Units(ctx)
		if err != nil {
			return e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read index", err)
		}
		if !slices.ContainsFunc(units, func(u store.Unit) bool { return u.ID == unit }) {
			return e.formatter.Fail(ExitCommandError, ErrCodeNotFound,
				fmt.Sprintf("unit %s is not indexed; run solir build first", unit.Short()), nil)
		}

		var again []session.File
		for _, f := range files {
			if slices.Contains(result.Removed, f.Path) {
				again = append(again, f)
			}
		}
		if err := s.Rebuild(ctx, again); err != nil {
			return e.formatter.Fail(ExitFailure, ErrCodeIR, "failed to rebuild", err)
		}
		for _, f := range again {
			su, err := s.SourceUnit(f.Path)
			if err != nil {
				return e.formatter.Fail(ExitFailure, ErrCodeIR, "failed to rebuild", err)
			}
			if err := st.WriteFile(ctx, unit, su); err != nil {
				return e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to update index", err)
			}
			result.Rebuilt = append(result.Rebuilt, f.Path)
		}
		e.logger.Info("files re-indexed", "unit", unit.Short(), "files", len(result.Rebuilt))
	}

	return e.formatter.Success(result)
}
