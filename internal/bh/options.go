package bh

import "log/slog"

// Attribute schemes for the behaviour-binding payload.
const (
	// SchemeJS renders the payload as "return {...}".
	SchemeJS = "js"
	// SchemeJSON renders the bare JSON object.
	SchemeJSON = "json"
)

// Default loop limits used when infinite loop detection is enabled.
const (
	DefaultNodeLoopLimit   = 100
	DefaultGlobalLoopLimit = 1000
)

// Options is the processor configuration.
type Options struct {
	JSAttrName   string
	JSAttrScheme string
	// EscapeContent HTML-escapes plain text leaves. Raw HTML is never
	// escaped.
	EscapeContent bool

	InfiniteLoopDetection bool
	// NodeLoopLimit bounds how often one node may be matched in a pass.
	NodeLoopLimit int
	// GlobalLoopLimit bounds the total number of node matches in a pass.
	GlobalLoopLimit int
}

// DefaultOptions returns the options a new Processor starts with.
func DefaultOptions() Options {
	return Options{
		JSAttrName:      "onclick",
		JSAttrScheme:    SchemeJS,
		NodeLoopLimit:   DefaultNodeLoopLimit,
		GlobalLoopLimit: DefaultGlobalLoopLimit,
	}
}

// Option changes one setting of a Processor.
type Option func(*Processor)

func WithJSAttrName(name string) Option {
	return func(p *Processor) {
		if name != "" {
			p.opts.JSAttrName = name
		}
	}
}

// WithJSAttrScheme selects SchemeJS or SchemeJSON. Unknown schemes are
// ignored.
func WithJSAttrScheme(scheme string) Option {
	return func(p *Processor) {
		if scheme == SchemeJS || scheme == SchemeJSON {
			p.opts.JSAttrScheme = scheme
		}
	}
}

func WithEscapeContent(escape bool) Option {
	return func(p *Processor) {
		p.opts.EscapeContent = escape
	}
}

func WithInfiniteLoopDetection(enabled bool) Option {
	return func(p *Processor) {
		p.opts.InfiniteLoopDetection = enabled
	}
}

// WithLoopLimits overrides the loop detection thresholds. Non-positive
// values keep the current limit.
func WithLoopLimits(node, global int) Option {
	return func(p *Processor) {
		if node > 0 {
			p.opts.NodeLoopLimit = node
		}
		if global > 0 {
			p.opts.GlobalLoopLimit = global
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}
