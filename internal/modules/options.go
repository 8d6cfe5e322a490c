package modules

import "log/slog"

// Options is the runtime configuration.
type Options struct {
	// TrackCircularDependencies keeps a resolution path per branch and fails
	// fast on cycles. Without it a cycle is never reported: the requests
	// involved stall forever, trading safety for a little speed.
	TrackCircularDependencies bool
	// AllowMultipleDeclarations chains a repeated Define onto the previous
	// declaration instead of failing its resolution.
	AllowMultipleDeclarations bool
}

// DefaultOptions returns the options a new Runtime starts with.
func DefaultOptions() Options {
	return Options{
		TrackCircularDependencies: true,
		AllowMultipleDeclarations: true,
	}
}

// Option changes one setting of a Runtime. Options are applied in order, so
// SetOptions merges into the current configuration.
type Option func(*Runtime)

// WithCircularDependencyTracking toggles Options.TrackCircularDependencies.
func WithCircularDependencyTracking(enabled bool) Option {
	return func(r *Runtime) {
		r.opts.TrackCircularDependencies = enabled
	}
}

// WithMultipleDeclarations toggles Options.AllowMultipleDeclarations.
func WithMultipleDeclarations(allowed bool) Option {
	return func(r *Runtime) {
		r.opts.AllowMultipleDeclarations = allowed
	}
}

// WithLogger sets the runtime's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}
