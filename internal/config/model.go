package config

import "github.com/hashicorp/hcl/v2"

// Bundle is the unified, format-agnostic representation of all template
// files loaded together.
type Bundle struct {
	Modules   ModulesSettings
	BH        BHSettings
	Templates []*Template
	// Files lists the files the bundle was read from, in load order.
	Files []string
}

// ModulesSettings mirrors the module runtime options. Nil fields keep the
// runtime defaults.
type ModulesSettings struct {
	TrackCircularDependencies *bool
	AllowMultipleDeclarations *bool
}

// BHSettings mirrors the template processor options. Nil fields keep the
// processor defaults.
type BHSettings struct {
	JSAttrName            *string
	JSAttrScheme          *string
	EscapeContent         *bool
	InfiniteLoopDetection *bool
	NodeLoopLimit         *int
	GlobalLoopLimit       *int
}

// Template is one `template` block. Several blocks may share a name; they
// become successive declarations of the same module.
type Template struct {
	Name      string
	DependsOn []string
	Matches   []*Match
	// Source is the file the block was declared in.
	Source string
}

// Match is one `match` block: a pattern plus the expressions evaluated for
// every node it matches.
type Match struct {
	Pattern    string
	Attributes map[string]hcl.Expression
	DeclRange  hcl.Range
}

// TemplateNames returns the distinct template names in declaration order.
func (b *Bundle) TemplateNames() []string {
	seen := make(map[string]bool, len(b.Templates))
	var names []string
	for _, t := range b.Templates {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		names = append(names, t.Name)
	}
	return names
}
