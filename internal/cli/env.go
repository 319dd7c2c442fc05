package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/config"
	"github.com/roach88/solir/internal/session"
	"github.com/roach88/solir/internal/store"
)

// env holds what every command sets up before doing its own work.
type env struct {
	cfg       config.Config
	logger    *slog.Logger
	formatter *OutputFormatter
	stdin     io.Reader
}

// newEnv loads the config and builds the logger and formatter. Logs go to
// stderr so JSON output stays clean.
func newEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
		}
		cfg = loaded
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return &env{cfg: cfg, logger: logger, formatter: formatter, stdin: cmd.InOrStdin()}, nil
}

// readOutput loads standard-JSON compiler output from path, or stdin
// when path is "-".
func (e *env) readOutput(path string) (*ast.StandardOutput, error) {
	var r io.Reader = e.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, e.formatter.Fail(ExitCommandError, ErrCodeCompilerOutput, "failed to open compiler output", err)
		}
		defer f.Close()
		r = f
	}

	out, err := ast.LoadStandardOutput(r)
	if err != nil {
		return nil, e.formatter.Fail(ExitCommandError, ErrCodeCompilerOutput, "failed to read compiler output", err)
	}

	if out.HasErrors() && e.cfg.FailOnCompilerErrors {
		var messages []string
		for _, m := range out.Errors {
			if m.Severity == "error" {
				messages = append(messages, m.Message)
			}
		}
		msg := fmt.Sprintf("compiler reported %d error(s)", len(messages))
		if err := e.formatter.Error(ErrCodeCompilerErrors, msg, messages); err != nil {
			return nil, err
		}
		return nil, NewExitError(ExitFailure, msg)
	}
	return out, nil
}

// loadSession reads compiler output, pairs it with the sources under root
// and builds the IR.
func (e *env) loadSession(ctx context.Context, outputPath, root string) (*session.Session, error) {
	files, err := e.loadFiles(outputPath, root)
	if err != nil {
		return nil, err
	}
	return e.buildSession(ctx, files)
}

func (e *env) loadFiles(outputPath, root string) ([]session.File, error) {
	out, err := e.readOutput(outputPath)
	if err != nil {
		return nil, err
	}
	files, err := session.FilesFromOutput(out, root)
	if err != nil {
		return nil, e.formatter.Fail(ExitCommandError, ErrCodeCompilerOutput, "failed to read sources", err)
	}
	return files, nil
}

func (e *env) buildSession(ctx context.Context, files []session.File) (*session.Session, error) {
	s := session.New(session.WithLogger(e.logger), session.WithWorkers(e.cfg.Workers))
	e.formatter.Session = s.ID()
	if _, err := s.Build(ctx, files); err != nil {
		return nil, e.formatter.Fail(ExitFailure, ErrCodeIR, "failed to build IR", err)
	}
	e.formatter.VerboseLog("Built %d file(s) as unit %s", len(files), s.Unit().Short())
	return s, nil
}

// openStore opens the index at path, or at the configured path when path
// is empty.
func (e *env) openStore(path string) (*store.Store, error) {
	if path == "" {
		path = e.cfg.StorePath
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, e.formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open index", err)
	}
	e.formatter.VerboseLog("Opened index %s", path)
	return st, nil
}

func (e *env) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		e.logger.Error("error closing index", "error", err)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
