package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/solir/internal/diag"
)

// ErrPostProcessRunning is returned when a post-process callback tries to
// register another post-process callback. Resolution is single-phase.
var ErrPostProcessRunning = errors.New("cannot register post-process callback while post-processing")

// CallbackParams is the session-scoped bundle handed to post-process callbacks.
type CallbackParams[N any] struct {
	// SourceUnits maps every registered file to its root node.
	SourceUnits map[string]N
}

// PostProcessFunc runs once after the whole compilation unit is constructed.
type PostProcessFunc[N any] func(params CallbackParams[N]) error

// DestroyFunc undoes the effects of a post-process callback on other files.
type DestroyFunc func() error

type key struct {
	unit UnitID
	id   int64
}

type pendingCallback[N any] struct {
	file string
	fn   PostProcessFunc[N]
}

// Resolver maps compiler node IDs to live nodes and sequences the deferred
// callbacks that turn ID references into object references.
//
// Thread-safety model:
//   - RegisterNode, RegisterSourceUnit, Resolve, RegisterPostProcessCallback
//     and RegisterDestroyCallback are safe from any goroutine
//   - RunPostProcess and Invalidate must not run concurrently with each other
//     or with construction of the files they touch
//
// INVARIANTS:
//   - an ID is bound at most once per unit
//   - post-process callbacks run in registration order, each exactly once
//   - destroy callbacks run in registration order, each exactly once
type Resolver[N any] struct {
	mu sync.Mutex

	nodes       map[key]N
	fileKeys    map[string][]key
	sourceUnits map[string]N

	postProcess []pendingCallback[N]
	destroy     map[string][]DestroyFunc
	running     bool

	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for resolver diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates an empty resolver.
func New[N any](opts ...Option) *Resolver[N] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resolver[N]{
		nodes:       make(map[key]N),
		fileKeys:    make(map[string][]key),
		sourceUnits: make(map[string]N),
		destroy:     make(map[string][]DestroyFunc),
		logger:      o.logger,
	}
}

// RegisterNode binds id to node within unit. file is the owning source file,
// used to drop the binding on invalidation.
func (r *Resolver[N]) RegisterNode(unit UnitID, file string, id int64, node N) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{unit: unit, id: id}
	if _, exists := r.nodes[k]; exists {
		return diag.DuplicateID(string(unit), file, id)
	}
	r.nodes[k] = node
	r.fileKeys[file] = append(r.fileKeys[file], k)
	return nil
}

// RegisterSourceUnit records the root node of file.
func (r *Resolver[N]) RegisterSourceUnit(file string, node N) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sourceUnits[file] = node
}

// Resolve returns the node bound to id within unit.
func (r *Resolver[N]) Resolve(unit UnitID, id int64) (N, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[key{unit: unit, id: id}]
	if !ok {
		var zero N
		return zero, diag.DanglingReference(string(unit), id)
	}
	return node, nil
}

// RegisterPostProcessCallback queues fn to run on the next RunPostProcess.
// file scopes the callback: invalidating file before it runs discards it.
func (r *Resolver[N]) RegisterPostProcessCallback(file string, fn PostProcessFunc[N]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrPostProcessRunning
	}
	r.postProcess = append(r.postProcess, pendingCallback[N]{file: file, fn: fn})
	return nil
}

// RegisterDestroyCallback queues fn to run when file is invalidated.
func (r *Resolver[N]) RegisterDestroyCallback(file string, fn DestroyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroy[file] = append(r.destroy[file], fn)
}

// Pending returns the number of queued post-process callbacks.
func (r *Resolver[N]) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.postProcess)
}

// RunPostProcess drains the post-process queue, running each callback in
// registration order. It must be called only after every file of the unit has
// finished construction. The first callback error stops the run; the
// remaining callbacks are discarded with it since the session is unusable.
func (r *Resolver[N]) RunPostProcess(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrPostProcessRunning
	}
	queue := r.postProcess
	r.postProcess = nil
	params := CallbackParams[N]{SourceUnits: make(map[string]N, len(r.sourceUnits))}
	for f, n := range r.sourceUnits {
		params.SourceUnits[f] = n
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	r.logger.Debug("post-processing", "callbacks", len(queue))

	for i, cb := range queue {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cb.fn(params); err != nil {
			r.logger.Error("post-process callback failed",
				"file", cb.file,
				"index", i,
				"error", err,
			)
			return fmt.Errorf("post-process %s: %w", cb.file, err)
		}
	}
	return nil
}

// Invalidate runs file's destroy callbacks in registration order, then drops
// every ID binding, queued post-process callback and source-unit entry owned
// by file. Afterwards the resolver holds no trace of the file.
func (r *Resolver[N]) Invalidate(file string) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("invalidate %s: %w", file, ErrPostProcessRunning)
	}
	callbacks := r.destroy[file]
	delete(r.destroy, file)
	r.mu.Unlock()

	for _, fn := range callbacks {
		if err := fn(); err != nil {
			r.logger.Error("destroy callback failed", "file", file, "error", err)
			return fmt.Errorf("invalidate %s: %w", file, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.fileKeys[file]
	for _, k := range keys {
		delete(r.nodes, k)
	}
	delete(r.fileKeys, file)
	delete(r.sourceUnits, file)

	kept := r.postProcess[:0]
	for _, cb := range r.postProcess {
		if cb.file != file {
			kept = append(kept, cb)
		}
	}
	dropped := len(r.postProcess) - len(kept)
	clear(r.postProcess[len(kept):])
	r.postProcess = kept

	r.logger.Debug("file invalidated",
		"file", file,
		"bindings", len(keys),
		"destroy_callbacks", len(callbacks),
		"dropped_post_process", dropped,
	)
	return nil
}

// Bound returns the number of live ID bindings owned by file.
func (r *Resolver[N]) Bound(file string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fileKeys[file])
}
