// Package hcl provides the concrete HCL implementation of the bundle loading
// and matcher conversion interfaces defined in the `config` package.
// It is responsible for file parsing, HCL-to-model translation, cty
// conversions and the per-node evaluation of declarative matchers.
package hcl
