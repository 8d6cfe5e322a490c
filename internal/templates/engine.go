// Package templates binds a loaded bundle to a module runtime and a template
// processor.
//
// The processor itself is defined as the module "bh". Every template becomes
// a module that depends on "bh" and on the templates it names in depends_on,
// so dependencies register their matchers first and dependents, registered
// later, get the first chance to match. Repeating a template name declares
// the module again; the new declaration receives the previous one's Export.
package templates

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/bemgo/internal/bemjson"
	"github.com/specialistvlad/bemgo/internal/bh"
	"github.com/specialistvlad/bemgo/internal/config"
	"github.com/specialistvlad/bemgo/internal/ctxlog"
	"github.com/specialistvlad/bemgo/internal/modules"
	"github.com/specialistvlad/bemgo/internal/scheduler"
)

// ProcessorModule is the module name under which the processor is provided.
const ProcessorModule = "bh"

// ErrStalled is returned when the scheduler ran dry before every template
// resolved, which happens on dependency cycles with cycle tracking off.
var ErrStalled = errors.New("template resolution stalled")

// Export is what a template module provides.
type Export struct {
	Name string
	// Matchers counts the matchers registered by this declaration and every
	// earlier declaration of the same name.
	Matchers int
}

// Engine is a resolved bundle, ready to render.
type Engine struct {
	runtime   *modules.Runtime
	processor *bh.Processor
	bundle    *config.Bundle
	exports   []Export
}

// Build defines the processor and every template of bundle as modules,
// resolves them and returns the ready engine.
func Build(ctx context.Context, bundle *config.Bundle, conv config.Converter) (*Engine, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building template engine.", "templates", len(bundle.Templates))

	loop := scheduler.New(scheduler.WithLogger(logger))
	rt := modules.New(loop, append(moduleOptions(bundle.Modules), modules.WithLogger(logger))...)
	proc := bh.New(append(processorOptions(bundle.BH), bh.WithLogger(logger))...)

	rt.Define(ProcessorModule, nil, func(provide modules.Provide, _ []any) {
		provide(proc, nil)
	})

	for _, tmpl := range bundle.Templates {
		if tmpl.Name == ProcessorModule {
			return nil, fmt.Errorf("template %q in %s: name is reserved", tmpl.Name, tmpl.Source)
		}
		factory, err := templateFactory(ctx, tmpl, conv)
		if err != nil {
			return nil, err
		}
		deps := append([]string{ProcessorModule}, tmpl.DependsOn...)
		rt.Define(tmpl.Name, deps, factory)
	}

	e := &Engine{runtime: rt, processor: proc, bundle: bundle}
	names := bundle.TemplateNames()
	if len(names) == 0 {
		return e, nil
	}

	var (
		resolveErr error
		done       bool
	)
	rt.Require(names, func(exports []any) {
		done = true
		for _, export := range exports {
			e.exports = append(e.exports, export.(Export))
		}
	}, func(err error) {
		done = true
		resolveErr = err
	})

	if err := loop.RunPending(); err != nil {
		return nil, fmt.Errorf("template resolution failed: %w", err)
	}
	if resolveErr != nil {
		return nil, fmt.Errorf("template resolution failed: %w", resolveErr)
	}
	if !done {
		return nil, fmt.Errorf("%w: %v still resolving", ErrStalled, rt.Stat()[modules.StateInResolving])
	}

	logger.Debug("Template engine ready.", "templates", len(e.exports), "matchers", proc.MatcherCount())
	return e, nil
}

// Load reads a bundle with loader and builds an engine from it.
func Load(ctx context.Context, loader config.Loader, paths ...string) (*Engine, error) {
	bundle, conv, err := loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return Build(ctx, bundle, conv)
}

func templateFactory(ctx context.Context, tmpl *config.Template, conv config.Converter) (modules.Factory, error) {
	type compiled struct {
		pattern string
		fn      bh.MatcherFunc
	}
	matchers := make([]compiled, 0, len(tmpl.Matches))
	for _, m := range tmpl.Matches {
		fn, err := conv.Matcher(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("template %q in %s: %w", tmpl.Name, tmpl.Source, err)
		}
		matchers = append(matchers, compiled{pattern: m.Pattern, fn: fn})
	}
	depCount := 1 + len(tmpl.DependsOn)
	logger := ctxlog.FromContext(ctx)

	return func(provide modules.Provide, deps []any) {
		proc, ok := deps[0].(*bh.Processor)
		if !ok {
			provide(nil, fmt.Errorf("template %q: dependency %q is not a processor", tmpl.Name, ProcessorModule))
			return
		}
		for _, m := range matchers {
			proc.Match(m.pattern, m.fn)
		}

		export := Export{Name: tmpl.Name, Matchers: len(matchers)}
		if len(deps) > depCount {
			if prev, ok := deps[len(deps)-1].(Export); ok {
				export.Matchers += prev.Matchers
			}
		}
		logger.Debug("Template registered.", "template", tmpl.Name, "matchers", len(matchers))
		provide(export, nil)
	}, nil
}

func moduleOptions(s config.ModulesSettings) []modules.Option {
	var opts []modules.Option
	if s.TrackCircularDependencies != nil {
		opts = append(opts, modules.WithCircularDependencyTracking(*s.TrackCircularDependencies))
	}
	if s.AllowMultipleDeclarations != nil {
		opts = append(opts, modules.WithMultipleDeclarations(*s.AllowMultipleDeclarations))
	}
	return opts
}

func processorOptions(s config.BHSettings) []bh.Option {
	var opts []bh.Option
	if s.JSAttrName != nil {
		opts = append(opts, bh.WithJSAttrName(*s.JSAttrName))
	}
	if s.JSAttrScheme != nil {
		opts = append(opts, bh.WithJSAttrScheme(*s.JSAttrScheme))
	}
	if s.EscapeContent != nil {
		opts = append(opts, bh.WithEscapeContent(*s.EscapeContent))
	}
	if s.InfiniteLoopDetection != nil {
		opts = append(opts, bh.WithInfiniteLoopDetection(*s.InfiniteLoopDetection))
	}
	if s.NodeLoopLimit != nil || s.GlobalLoopLimit != nil {
		opts = append(opts, bh.WithLoopLimits(deref(s.NodeLoopLimit), deref(s.GlobalLoopLimit)))
	}
	return opts
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Processor returns the processor the templates registered on.
func (e *Engine) Processor() *bh.Processor {
	return e.processor
}

// Exports returns the resolved template exports in template order.
func (e *Engine) Exports() []Export {
	return slices.Clone(e.exports)
}

// Bundle returns the bundle the engine was built from.
func (e *Engine) Bundle() *config.Bundle {
	return e.bundle
}

// Render expands a copy of v and renders it to HTML.
func (e *Engine) Render(v bemjson.Value) (string, error) {
	return e.processor.Apply(v)
}

// Expand expands a copy of v and returns the expanded tree.
func (e *Engine) Expand(v bemjson.Value) (bemjson.Value, error) {
	return e.processor.Expand(bemjson.Clone(v))
}

// Stat returns module names grouped by state name.
func (e *Engine) Stat() map[string][]string {
	out := make(map[string][]string)
	for state, names := range e.runtime.Stat() {
		out[state.String()] = names
	}
	return out
}
