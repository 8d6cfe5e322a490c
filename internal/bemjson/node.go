package bemjson

import "maps"

// Value is any BEMJSON value. See the package documentation for the allowed
// dynamic types.
type Value = any

// Mods maps modifier names to values. A value is a string, a bool or a
// number; false, nil and "" mean the modifier is not set.
type Mods map[string]any

// Node is a tagged BEMJSON object.
type Node struct {
	Block string
	Elem  string
	// Mods are the node's own modifiers: block modifiers on a block node,
	// element modifiers on an element node (decoded from "elemMods").
	Mods Mods
	// BlockMods are the enclosing block's modifiers. The expander fills them
	// in for elements.
	BlockMods Mods
	// Tag is nil for the default "div"; an empty string renders no tag at
	// all, only the content.
	Tag    *string
	Cls    string
	Attrs  map[string]any
	JS     any
	JSAttr string
	Bem    *bool
	Mix    []*Node

	Content Value
	// HTML is raw markup rendered instead of Content when non-empty.
	HTML string

	// Params holds every key that has no dedicated field.
	Params map[string]any
}

// TagName returns a pointer to name for use as Node.Tag.
func TagName(name string) *string {
	return &name
}

// Bool returns a pointer to b for use as Node.Bem.
func Bool(b bool) *bool {
	return &b
}

// IsBEM reports whether classes are generated for the node.
func (n *Node) IsBEM() bool {
	return n.Bem == nil || *n.Bem
}

// Base returns the node's BEM entity name: "block" or "block__elem".
func (n *Node) Base() string {
	if n.Elem != "" {
		return n.Block + "__" + n.Elem
	}
	return n.Block
}

// Mod returns a modifier value, or nil when it is not set.
func (n *Node) Mod(name string) any {
	if n.Mods == nil {
		return nil
	}
	return n.Mods[name]
}

// Param returns a custom field, or nil when it is not set.
func (n *Node) Param(name string) any {
	if n.Params == nil {
		return nil
	}
	return n.Params[name]
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Mods = cloneMap(n.Mods)
	c.BlockMods = cloneMap(n.BlockMods)
	c.Attrs = cloneMap(n.Attrs)
	c.Params = cloneMap(n.Params)
	c.JS = Clone(n.JS)
	c.Content = Clone(n.Content)
	if n.Tag != nil {
		c.Tag = TagName(*n.Tag)
	}
	if n.Bem != nil {
		c.Bem = Bool(*n.Bem)
	}
	if n.Mix != nil {
		c.Mix = make([]*Node, len(n.Mix))
		for i, m := range n.Mix {
			c.Mix[i] = m.Clone()
		}
	}
	return &c
}

// Clone deep-copies v. Leaves are returned as they are.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Node:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	case map[string]any:
		return map[string]any(cloneMap(t))
	default:
		return v
	}
}

func cloneMap[M ~map[string]any](m M) M {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = Clone(v)
	}
	return out
}

// IsEmpty reports whether v renders to nothing and is skipped in sequences.
func IsEmpty(v Value) bool {
	if v == nil {
		return true
	}
	if b, ok := v.(bool); ok && !b {
		return true
	}
	return false
}

// IsSet reports whether a modifier or attribute value counts as present.
func IsSet(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		return true
	}
}
