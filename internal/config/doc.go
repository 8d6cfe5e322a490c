// Package config defines the format-agnostic model of a template bundle,
// along with the interfaces (Loader, Converter) for loading bundles and
// turning their declarative matchers into callbacks.
//
// The `config.Bundle` is the single source of truth for the `templates`
// package. Concrete implementations of the interfaces, such as for HCL, are
// provided in separate packages.
package config
