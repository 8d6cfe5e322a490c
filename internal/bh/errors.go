package bh

import (
	"errors"
	"fmt"
)

var (
	// ErrInfiniteJSONLoop means a single node was matched more often than
	// the node loop limit allows.
	ErrInfiniteJSONLoop = errors.New("infinite json loop")
	// ErrInfiniteMatcherLoop means a pass matched more nodes than the global
	// loop limit allows.
	ErrInfiniteMatcherLoop = errors.New("infinite matcher loop")
)

// LoopError reports which node tripped the loop detector.
type LoopError struct {
	Kind error
	// Path lists the BEM entities from the root down to the node, joined
	// with "/".
	Path string
}

func (e *LoopError) Error() string {
	switch e.Kind {
	case ErrInfiniteJSONLoop:
		return fmt.Sprintf("Infinite json loop detected at %q", e.Path)
	case ErrInfiniteMatcherLoop:
		return fmt.Sprintf("Infinite matcher loop detected at %q", e.Path)
	default:
		return fmt.Sprintf("%v at %q", e.Kind, e.Path)
	}
}

func (e *LoopError) Unwrap() error {
	return e.Kind
}
