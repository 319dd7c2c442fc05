package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/solir/internal/ir"
	"github.com/roach88/solir/internal/resolver"
)

var (
	// ErrAborted wraps the fatal error that ended a session.
	ErrAborted = errors.New("session aborted")

	// ErrAlreadyBuilt is returned by a second call to Build.
	ErrAlreadyBuilt = errors.New("session already built")

	// ErrNotBuilt is returned by Rebuild before Build.
	ErrNotBuilt = errors.New("session not built")

	// ErrNotFound is returned for unknown files and contracts.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a contract name matches more than one
	// contract.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrDuplicatePath is returned when one call lists a path twice.
	ErrDuplicatePath = errors.New("duplicate path")
)

// Session is the IR of one compilation unit.
type Session struct {
	id       string
	logger   *slog.Logger
	workers  int
	resolver *resolver.Resolver[ir.Node]

	mu      sync.Mutex
	unit    resolver.UnitID
	built   bool
	files   map[string]File
	units   map[string]*ir.SourceUnit
	aborted error
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	logger  *slog.Logger
	workers int
	ids     IDGenerator
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// WithWorkers bounds the number of files constructed concurrently.
// Values below 1 mean runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *sessionConfig) { c.workers = n }
}

// WithIDGenerator replaces the UUIDv7 session ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *sessionConfig) { c.ids = g }
}

// New creates an empty session.
func New(opts ...Option) *Session {
	cfg := sessionConfig{ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}

	id := cfg.ids.Generate()
	logger := cfg.logger.With("session", id)
	return &Session{
		id:       id,
		logger:   logger,
		workers:  cfg.workers,
		resolver: resolver.New[ir.Node](resolver.WithLogger(logger)),
		files:    make(map[string]File),
		units:    make(map[string]*ir.SourceUnit),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Unit returns the compilation unit ID, empty before Build.
func (s *Session) Unit() resolver.UnitID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unit
}

// Err returns the error that aborted the session, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Build constructs the IR of every file in parallel, then runs
// post-processing. Cross-file links are complete when it returns.
func (s *Session) Build(ctx context.Context, files []File) (resolver.UnitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return "", err
	}
	if s.built {
		return "", ErrAlreadyBuilt
	}
	if err := uniquePaths(files); err != nil {
		return "", err
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	s.unit = resolver.UnitIDFor(paths)
	s.built = true

	start := time.Now()
	if err := s.construct(ctx, files); err != nil {
		return "", s.abort(err)
	}
	if err := s.resolver.RunPostProcess(ctx); err != nil {
		return "", s.abort(err)
	}

	s.logger.Info("unit built",
		"unit", s.unit.Short(),
		"files", len(files),
		"duration", time.Since(start),
	)
	return s.unit, nil
}

// uniquePaths rejects inputs naming one path twice. Nothing has been
// mutated when it fails, so the session stays usable.
func uniquePaths(files []File) error {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Path] {
			return fmt.Errorf("%s: %w", f.Path, ErrDuplicatePath)
		}
		seen[f.Path] = true
	}
	return nil
}

// construct builds files concurrently and records them. Callers hold mu.
func (s *Session) construct(ctx context.Context, files []File) error {
	for _, f := range files {
		if _, exists := s.units[f.Path]; exists {
			return fmt.Errorf("construct %s: file already present", f.Path)
		}
		if f.AST == nil {
			return fmt.Errorf("construct %s: no AST", f.Path)
		}
	}

	built := make([]*ir.SourceUnit, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			su, err := ir.BuildSourceUnit(&ir.InitContext{
				File:     f.Path,
				Source:   f.Source,
				Unit:     s.unit,
				Resolver: s.resolver,
				Logger:   s.logger,
			}, f.AST)
			if err != nil {
				return fmt.Errorf("construct %s: %w", f.Path, err)
			}
			built[i] = su
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, f := range files {
		s.files[f.Path] = f
		s.units[f.Path] = built[i]
	}
	return nil
}

// Invalidate removes path and every file importing it, directly or
// transitively, and returns the removed paths in order of removal.
func (s *Session) Invalidate(path string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return nil, err
	}
	if _, ok := s.units[path]; !ok {
		return nil, fmt.Errorf("invalidate %s: %w", path, ErrNotFound)
	}

	removed := append([]string{path}, s.dependents(path)...)
	if err := s.invalidate(removed); err != nil {
		return nil, s.abort(err)
	}
	return removed, nil
}

func (s *Session) invalidate(paths []string) error {
	for _, p := range paths {
		if err := s.resolver.Invalidate(p); err != nil {
			return err
		}
		delete(s.units, p)
		delete(s.files, p)
		s.logger.Debug("file removed", "file", p)
	}
	return nil
}

// Rebuild replaces files with new inputs. Files importing any of them are
// invalidated too and reconstructed from their retained inputs, so every
// cross-file link points at the new nodes afterwards.
func (s *Session) Rebuild(ctx context.Context, files []File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return err
	}
	if !s.built {
		return ErrNotBuilt
	}
	if err := uniquePaths(files); err != nil {
		return err
	}

	changed := make(map[string]bool, len(files))
	for _, f := range files {
		changed[f.Path] = true
	}
	var stale []string
	seen := make(map[string]bool)
	for _, f := range files {
		for _, d := range s.dependents(f.Path) {
			if !changed[d] && !seen[d] {
				seen[d] = true
				stale = append(stale, d)
			}
		}
	}
	sort.Strings(stale)

	retained := make([]File, 0, len(stale))
	for _, p := range stale {
		retained = append(retained, s.files[p])
	}

	var present []string
	for _, f := range files {
		if _, ok := s.units[f.Path]; ok {
			present = append(present, f.Path)
		}
	}
	if err := s.invalidate(append(present, stale...)); err != nil {
		return s.abort(err)
	}
	if err := s.construct(ctx, append(append([]File(nil), files...), retained...)); err != nil {
		return s.abort(err)
	}
	if err := s.resolver.RunPostProcess(ctx); err != nil {
		return s.abort(err)
	}

	s.logger.Info("unit rebuilt",
		"unit", s.unit.Short(),
		"changed", len(files),
		"dependents", len(stale),
	)
	return nil
}

// Dependents returns the files importing path, directly or transitively,
// sorted. It is empty once the session has aborted.
func (s *Session) Dependents(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.dependents(path)
	sort.Strings(out)
	return out
}

// dependents walks the reverse import graph breadth first.
func (s *Session) dependents(path string) []string {
	importers := make(map[string][]string)
	for p, su := range s.units {
		for _, imp := range su.Imports() {
			target := imp.AbsolutePath()
			importers[target] = append(importers[target], p)
		}
	}
	for _, list := range importers {
		sort.Strings(list)
	}

	var out []string
	seen := map[string]bool{path: true}
	queue := []string{path}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, p := range importers[next] {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
				queue = append(queue, p)
			}
		}
	}
	return out
}

// SourceUnit returns the IR root of path.
func (s *Session) SourceUnit(path string) (*ir.SourceUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return nil, err
	}
	su, ok := s.units[path]
	if !ok {
		return nil, fmt.Errorf("source unit %s: %w", path, ErrNotFound)
	}
	return su, nil
}

// SourceUnits returns every IR root, sorted by path. It is empty once the
// session has aborted.
func (s *Session) SourceUnits() []*ir.SourceUnit {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.units))
	for p := range s.units {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]*ir.SourceUnit, len(paths))
	for i, p := range paths {
		out[i] = s.units[p]
	}
	return out
}

// Contracts returns every contract, ordered by file path and offset.
func (s *Session) Contracts() []*ir.ContractDefinition {
	var out []*ir.ContractDefinition
	for _, su := range s.SourceUnits() {
		out = append(out, su.Contracts()...)
	}
	return out
}

// ContractByName returns the only contract called name.
func (s *Session) ContractByName(name string) (*ir.ContractDefinition, error) {
	if err := s.Err(); err != nil {
		return nil, err
	}
	var found []*ir.ContractDefinition
	for _, c := range s.Contracts() {
		if c.Name() == name {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("contract %s: %w", name, ErrNotFound)
	case 1:
		return found[0], nil
	default:
		files := make([]string, len(found))
		for i, c := range found {
			files[i] = c.File()
		}
		return nil, fmt.Errorf("contract %s declared in %v: %w", name, files, ErrAmbiguous)
	}
}

// usable reports the abort error, if any. Callers hold mu.
func (s *Session) usable() error {
	return s.aborted
}

// abort records err as fatal, drops every built file and returns the
// error. Callers hold mu.
func (s *Session) abort(err error) error {
	s.aborted = fmt.Errorf("%w: %w", ErrAborted, err)
	clear(s.units)
	clear(s.files)
	s.logger.Error("session aborted", "unit", s.unit.Short(), "error", err)
	return s.aborted
}
