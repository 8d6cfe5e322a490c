package modules

import "slices"

// dependency is either a name looked up at resolution time or a direct
// reference to a declaration (used for the previous declaration link).
type dependency struct {
	name string
	decl *declaration
}

func namedDeps(names []string) []dependency {
	deps := make([]dependency, len(names))
	for i, name := range names {
		deps[i] = dependency{name: name}
	}
	return deps
}

// onNextTick runs one resolution wave. Requests queued while the wave runs
// wait for the next one.
func (r *Runtime) onNextTick() error {
	r.waitForNextTick = false

	batch := r.pending
	r.pending = nil
	r.logger.Debug("Resolution wave started.", "requests", len(batch))

	for _, req := range batch {
		r.requireDeps(nil, namedDeps(req.names), nil, req.done)
	}
	return nil
}

// requireDeps resolves deps depth-first and calls cb with their exports in
// declaration order. After the first error, cb hears nothing more from this
// batch except an already-provided error raised after success. Such a late
// error on a resolved declaration is rescheduled as a failing task.
func (r *Runtime) requireDeps(from *declaration, deps []dependency, path []*declaration, cb func(exports []any, err error)) {
	if len(deps) == 0 {
		cb([]any{}, nil)
		return
	}

	unresolved := len(deps)
	decls := make([]*declaration, 0, len(deps))
	failed := false

	onResolved := func(_ any, err error) {
		if failed {
			return
		}
		if err != nil {
			failed = true
			cb(nil, err)
			return
		}
		unresolved--
		if unresolved == 0 {
			exports := make([]any, len(decls))
			for i, d := range decls {
				exports[i] = d.exports
			}
			cb(exports, nil)
		}
	}

	for _, dep := range deps {
		decl := dep.decl
		if decl == nil {
			m, ok := r.modules[dep.name]
			if !ok {
				failed = true
				cb(nil, moduleNotFoundError(dep.name, from))
				return
			}
			decl = m.decl
		}
		decls = append(decls, decl)
		r.startDeclResolving(decl, path, onResolved)
	}
}

func (r *Runtime) startDeclResolving(decl *declaration, path []*declaration, cb resolvedFunc) {
	switch decl.state {
	case StateResolved:
		cb(decl.exports, nil)
		return
	case StateInResolving:
		if r.opts.TrackCircularDependencies && slices.Contains(path, decl) {
			cb(nil, circularDependencyError(decl, path))
			return
		}
		decl.dependents = append(decl.dependents, cb)
		return
	}

	decl.dependents = append(decl.dependents, cb)

	if decl.prev != nil && !r.opts.AllowMultipleDeclarations {
		r.provideError(decl, multipleDeclarationsError(decl))
		return
	}

	if r.opts.TrackCircularDependencies {
		path = append(slices.Clone(path), decl)
	}

	deps := namedDeps(decl.deps)
	if decl.prev != nil {
		deps = append(deps, dependency{decl: decl.prev})
	}

	decl.state = StateInResolving
	r.logger.Debug("Resolving module.", "module", decl.name, "deps", len(deps))

	provided := false
	r.requireDeps(decl, deps, path, func(exports []any, err error) {
		if err != nil {
			if decl.state == StateResolved {
				r.rethrow(err)
				return
			}
			r.provideError(decl, err)
			return
		}

		provide := func(value any, err error) {
			if provided {
				cb(nil, alreadyProvidedError(decl))
				return
			}
			provided = true
			if err != nil {
				r.provideError(decl, err)
				return
			}
			r.provideDecl(decl, value)
		}
		decl.factory(provide, exports)
	})
}

func (r *Runtime) provideDecl(decl *declaration, exports any) {
	decl.exports = exports
	decl.state = StateResolved
	r.logger.Debug("Module resolved.", "module", decl.name, "dependents", len(decl.dependents))

	dependents := decl.dependents
	decl.dependents = nil
	for _, dependent := range dependents {
		dependent(exports, nil)
	}
}

func (r *Runtime) provideError(decl *declaration, err error) {
	decl.state = StateNotResolved
	r.logger.Debug("Module resolution failed.", "module", decl.name, "error", err)

	dependents := decl.dependents
	decl.dependents = nil
	for _, dependent := range dependents {
		dependent(nil, err)
	}
}
