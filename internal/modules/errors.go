package modules

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModuleNotFound is returned when a required name was never defined.
	ErrModuleNotFound = errors.New("module not found")
	// ErrCircularDependency is returned when a declaration depends on itself
	// through its own resolution path. Only reported while tracking is enabled.
	ErrCircularDependency = errors.New("circular dependency detected")
	// ErrDeclarationAlreadyProvided is returned when a factory calls provide twice.
	ErrDeclarationAlreadyProvided = errors.New("declaration already provided")
	// ErrMultipleDeclarations is returned when a name is defined more than once
	// while multiple declarations are disallowed.
	ErrMultipleDeclarations = errors.New("multiple declarations detected")
)

// ResolveError describes a failed resolution. Kind is one of the sentinel
// errors above and is what errors.Is matches against.
type ResolveError struct {
	Kind error
	// Module is the declaration the failure is attributed to.
	Module string
	// Dependency is the missing name for ErrModuleNotFound raised while
	// resolving Module's dependencies.
	Dependency string
	// Path is the resolution path for ErrCircularDependency, ending with the
	// declaration that closed the cycle.
	Path []string
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	switch e.Kind {
	case ErrModuleNotFound:
		if e.Dependency != "" {
			return fmt.Sprintf("Module %q: can't resolve dependence %q", e.Module, e.Dependency)
		}
		return fmt.Sprintf("Required module %q can't be resolved", e.Module)
	case ErrCircularDependency:
		return fmt.Sprintf("Circular dependence has been detected: %q", strings.Join(e.Path, " -> "))
	case ErrDeclarationAlreadyProvided:
		return fmt.Sprintf("Declaration of module %q has already been provided", e.Module)
	case ErrMultipleDeclarations:
		return fmt.Sprintf("Multiple declarations of module %q have been detected", e.Module)
	default:
		return fmt.Sprintf("module %q: %v", e.Module, e.Kind)
	}
}

// Unwrap returns the error kind.
func (e *ResolveError) Unwrap() error {
	return e.Kind
}

func moduleNotFoundError(name string, from *declaration) error {
	if from == nil {
		return &ResolveError{Kind: ErrModuleNotFound, Module: name}
	}
	return &ResolveError{Kind: ErrModuleNotFound, Module: from.name, Dependency: name}
}

func circularDependencyError(decl *declaration, path []*declaration) error {
	names := make([]string, 0, len(path)+1)
	for _, d := range path {
		names = append(names, d.name)
	}
	names = append(names, decl.name)
	return &ResolveError{Kind: ErrCircularDependency, Module: decl.name, Path: names}
}

func alreadyProvidedError(decl *declaration) error {
	return &ResolveError{Kind: ErrDeclarationAlreadyProvided, Module: decl.name}
}

func multipleDeclarationsError(decl *declaration) error {
	return &ResolveError{Kind: ErrMultipleDeclarations, Module: decl.name}
}
