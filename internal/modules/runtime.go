package modules

import (
	"log/slog"
	"slices"

	"github.com/specialistvlad/bemgo/internal/scheduler"
)

// Provide is handed to a factory as its first argument. The factory must call
// it exactly once, either with its exports or with a non-nil error.
type Provide func(exports any, err error)

// Factory builds a module's exports. deps holds one export per declared
// dependency, in declaration order; when the declaration redeclares a name,
// the previous declaration's exports are appended last.
type Factory func(provide Provide, deps []any)

// Runtime owns one module registry and its pending require queue. Separate
// runtimes share nothing.
type Runtime struct {
	sched  scheduler.Scheduler
	logger *slog.Logger
	opts   Options

	modules map[string]*module
	// names keeps definition order so Stat is deterministic.
	names []string

	pending         []*request
	waitForNextTick bool
}

type module struct {
	name string
	decl *declaration
}

type declaration struct {
	name       string
	prev       *declaration
	deps       []string
	factory    Factory
	state      State
	dependents []resolvedFunc
	exports    any
}

type resolvedFunc func(exports any, err error)

type request struct {
	names []string
	done  func(exports []any, err error)
}

// New creates a runtime that defers resolution waves to s.
func New(s scheduler.Scheduler, opts ...Option) *Runtime {
	if s == nil {
		panic("modules: nil scheduler")
	}
	r := &Runtime{
		sched:   s,
		logger:  slog.Default(),
		opts:    DefaultOptions(),
		modules: make(map[string]*module),
	}
	r.SetOptions(opts...)
	return r
}

// SetOptions merges opts into the current configuration.
func (r *Runtime) SetOptions(opts ...Option) {
	for _, opt := range opts {
		opt(r)
	}
}

// Options returns the current configuration.
func (r *Runtime) Options() Options {
	return r.opts
}

// Define registers a new declaration for name. Unknown dependencies are not
// an error here; they fail the resolution that needs them.
func (r *Runtime) Define(name string, deps []string, factory Factory) {
	if factory == nil {
		panic("modules: nil factory for module " + name)
	}
	m, ok := r.modules[name]
	if !ok {
		m = &module{name: name}
		r.modules[name] = m
		r.names = append(r.names, name)
	}
	m.decl = &declaration{
		name:    name,
		prev:    m.decl,
		deps:    slices.Clone(deps),
		factory: factory,
		state:   StateNotResolved,
	}
	r.logger.Debug("Module defined.", "module", name, "deps", deps, "redeclared", m.decl.prev != nil)
}

// Require resolves names and calls onSuccess with their exports in the same
// order. Resolution always happens on a later tick of the scheduler. If
// onError is nil, a failure is rescheduled as a failing task so it surfaces
// from the scheduler instead of being lost.
func (r *Runtime) Require(names []string, onSuccess func(exports []any), onError func(err error)) {
	if onSuccess == nil {
		panic("modules: nil success callback")
	}
	req := &request{
		names: slices.Clone(names),
		done: func(exports []any, err error) {
			if err == nil {
				onSuccess(exports)
				return
			}
			if onError != nil {
				onError(err)
				return
			}
			r.rethrow(err)
		},
	}
	r.pending = append(r.pending, req)

	if !r.waitForNextTick {
		r.waitForNextTick = true
		r.sched.Schedule(r.onNextTick)
	}
}

// RequireOne is Require for a single name.
func (r *Runtime) RequireOne(name string, onSuccess func(exports any), onError func(err error)) {
	if onSuccess == nil {
		panic("modules: nil success callback")
	}
	r.Require([]string{name}, func(exports []any) { onSuccess(exports[0]) }, onError)
}

// State returns the state of name's current declaration.
func (r *Runtime) State(name string) State {
	m, ok := r.modules[name]
	if !ok {
		return StateNotDefined
	}
	return m.decl.state
}

// IsDefined reports whether name was ever defined.
func (r *Runtime) IsDefined(name string) bool {
	_, ok := r.modules[name]
	return ok
}

// Stat returns module names grouped by state, in definition order. It is a
// diagnostic snapshot.
func (r *Runtime) Stat() map[State][]string {
	res := make(map[State][]string)
	for _, name := range r.names {
		state := r.modules[name].decl.state
		res[state] = append(res[state], name)
	}
	return res
}

func (r *Runtime) rethrow(err error) {
	r.logger.Debug("Unhandled resolution error rescheduled.", "error", err)
	r.sched.Schedule(func() error {
		return err
	})
}
