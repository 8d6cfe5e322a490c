package bh

import (
	"maps"

	"github.com/specialistvlad/bemgo/internal/bemjson"
)

// Context is the handle a matcher callback uses to inspect and change the
// node being matched. Setters leave existing values alone unless force is
// true, and return the Context for chaining.
type Context struct {
	pass *pass
	desc *descriptor
	node *bemjson.Node

	replacement    bemjson.Value
	hasReplacement bool
}

// Node returns the node being matched.
func (c *Context) Node() *bemjson.Node {
	return c.node
}

// Tag returns the node's tag name, or "" when it is unset or tag-less.
func (c *Context) Tag() string {
	if c.node.Tag == nil {
		return ""
	}
	return *c.node.Tag
}

// SetTag sets the tag name. An empty name makes the node tag-less.
func (c *Context) SetTag(tag string, force bool) *Context {
	if force || c.node.Tag == nil {
		c.node.Tag = bemjson.TagName(tag)
	}
	return c
}

func (c *Context) Cls() string {
	return c.node.Cls
}

func (c *Context) SetCls(cls string, force bool) *Context {
	if force || c.node.Cls == "" {
		c.node.Cls = cls
	}
	return c
}

// Mods returns the node's own modifiers: block modifiers for a block,
// element modifiers for an element.
func (c *Context) Mods() bemjson.Mods {
	if c.node.Mods == nil {
		c.node.Mods = bemjson.Mods{}
	}
	return c.node.Mods
}

func (c *Context) Mod(name string) any {
	return c.node.Mod(name)
}

func (c *Context) SetMod(name string, value any, force bool) *Context {
	mods := c.Mods()
	if force || mods[name] == nil {
		mods[name] = value
	}
	return c
}

// SetMods merges values into the node's modifiers.
func (c *Context) SetMods(values bemjson.Mods, force bool) *Context {
	mods := c.Mods()
	for k, v := range values {
		if force || mods[k] == nil {
			mods[k] = v
		}
	}
	return c
}

func (c *Context) Attrs() map[string]any {
	if c.node.Attrs == nil {
		c.node.Attrs = make(map[string]any)
	}
	return c.node.Attrs
}

func (c *Context) Attr(name string) any {
	if c.node.Attrs == nil {
		return nil
	}
	return c.node.Attrs[name]
}

func (c *Context) SetAttr(name string, value any, force bool) *Context {
	attrs := c.Attrs()
	if force || attrs[name] == nil {
		attrs[name] = value
	}
	return c
}

func (c *Context) SetAttrs(values map[string]any, force bool) *Context {
	attrs := c.Attrs()
	for k, v := range values {
		if force || attrs[k] == nil {
			attrs[k] = v
		}
	}
	return c
}

// Bem reports whether BEM classes are generated for the node.
func (c *Context) Bem() bool {
	return c.node.IsBEM()
}

func (c *Context) SetBem(bem bool, force bool) *Context {
	if force || c.node.Bem == nil {
		c.node.Bem = bemjson.Bool(bem)
	}
	return c
}

func (c *Context) JS() any {
	return c.node.JS
}

// SetJS sets the behaviour parameters: true or a map. Without force, map
// parameters are merged with existing values taking precedence.
func (c *Context) SetJS(js any, force bool) *Context {
	cur, curOK := c.node.JS.(map[string]any)
	next, nextOK := js.(map[string]any)
	switch {
	case curOK && nextOK:
		merged := maps.Clone(next)
		if force {
			merged = maps.Clone(cur)
			maps.Copy(merged, next)
		} else {
			maps.Copy(merged, cur)
		}
		c.node.JS = merged
	case force || c.node.JS == nil || c.node.JS == false:
		c.node.JS = js
	}
	return c
}

func (c *Context) Mix() []*bemjson.Node {
	return c.node.Mix
}

// SetMix appends mix to the node's mixes, or replaces them when forced.
func (c *Context) SetMix(mix []*bemjson.Node, force bool) *Context {
	if force {
		c.node.Mix = mix
	} else {
		c.node.Mix = append(c.node.Mix, mix...)
	}
	return c
}

func (c *Context) Content() bemjson.Value {
	return c.node.Content
}

func (c *Context) SetContent(v bemjson.Value, force bool) *Context {
	if force || c.node.Content == nil {
		c.node.Content = v
	}
	return c
}

func (c *Context) HTML() string {
	return c.node.HTML
}

func (c *Context) SetHTML(html string, force bool) *Context {
	if force || c.node.HTML == "" {
		c.node.HTML = html
	}
	return c
}

// Param returns a custom field of the node.
func (c *Context) Param(name string) any {
	return c.node.Param(name)
}

func (c *Context) SetParam(name string, value any, force bool) *Context {
	if c.node.Params == nil {
		c.node.Params = make(map[string]any)
	}
	if force || c.node.Params[name] == nil {
		c.node.Params[name] = value
	}
	return c
}

// TParam looks up a tree-scoped parameter on this node or its ancestors.
func (c *Context) TParam(name string) any {
	for d := c.desc; d != nil; d = d.parent {
		if v, ok := d.tParams[name]; ok {
			return v
		}
	}
	return nil
}

// SetTParam sets a parameter visible to TParam on this node and everything
// expanded below it.
func (c *Context) SetTParam(name string, value any, force bool) *Context {
	if c.desc.tParams == nil {
		c.desc.tParams = make(map[string]any)
	}
	if _, ok := c.desc.tParams[name]; force || !ok {
		c.desc.tParams[name] = value
	}
	return c
}

// Position is the node's 1-based index among the object siblings of its
// sequence.
func (c *Context) Position() int {
	return c.desc.position
}

func (c *Context) IsFirst() bool {
	return c.desc.position == 1
}

func (c *Context) IsLast() bool {
	return c.desc.listLength > 0 && c.desc.position == c.desc.listLength
}

// IsSimple reports whether v is a leaf: nil, a string, a bool or a number.
func (c *Context) IsSimple(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// GenerateID returns an id unique within the processor.
func (c *Context) GenerateID() string {
	return c.pass.proc.generateID()
}

// Stop prevents any further matcher from running on this node.
func (c *Context) Stop() *Context {
	c.pass.stopped[c.node] = struct{}{}
	return c
}

// ApplyBase runs the remaining matching matchers on the node right away. If
// one of them replaces the node, the replacement is used unless the calling
// matcher returns its own.
func (c *Context) ApplyBase() *Context {
	if v, ok := c.pass.runMatchers(c, c.node); ok {
		c.replacement, c.hasReplacement = v, true
	}
	return c
}

// Process expands v within the current block scope and returns the result.
func (c *Context) Process(v bemjson.Value) bemjson.Value {
	root := v
	blockName, blockMods := scope(c.node, c.desc)
	d := &descriptor{
		slot:       &root,
		position:   1,
		listLength: 1,
		blockName:  blockName,
		blockMods:  blockMods,
		parent:     c.desc,
	}
	if err := c.pass.expand(d); err != nil {
		c.Fail(err)
	}
	return root
}

// Fail aborts the pass. Expand returns the first error reported.
func (c *Context) Fail(err error) {
	c.pass.fail(err)
}
