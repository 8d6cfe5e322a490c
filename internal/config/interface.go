package config

import (
	"context"

	"github.com/specialistvlad/bemgo/internal/bh"
)

// Loader is the interface for a format-specific bundle loader.
type Loader interface {
	// Load reads every bundle file under paths, translates them into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Bundle, Converter, error)
}

// Converter turns the format-specific parts of a bundle into Go callbacks.
type Converter interface {
	// Matcher compiles a declarative match block into a matcher callback.
	// Static problems (unknown attributes) are reported here; evaluation
	// problems abort the expansion pass that hit them.
	Matcher(ctx context.Context, m *Match) (bh.MatcherFunc, error)
}
