package bh

import (
	"strings"

	"github.com/specialistvlad/bemgo/internal/bemjson"
)

// pattern is a parsed matcher expression. An empty modVal pointer means the
// modifier must be present with the value true.
type pattern struct {
	block string
	elem  string

	blockMod    string
	blockModVal *string
	elemMod     string
	elemModVal  *string
}

// parsePattern splits "block_mod_val__elem_mod_val". ok is false for
// expressions with no block name or an empty element part.
func parsePattern(expr string) (pattern, bool) {
	var p pattern

	blockPart, elemPart, hasElem := strings.Cut(expr, "__")
	p.block, p.blockMod, p.blockModVal = splitEntity(blockPart)
	if p.block == "" {
		return pattern{}, false
	}
	if hasElem {
		p.elem, p.elemMod, p.elemModVal = splitEntity(elemPart)
		if p.elem == "" {
			return pattern{}, false
		}
	}
	return p, true
}

func splitEntity(s string) (name, mod string, val *string) {
	parts := strings.SplitN(s, "_", 3)
	name = parts[0]
	if len(parts) > 1 {
		mod = parts[1]
		if len(parts) > 2 && parts[2] != "" {
			v := parts[2]
			val = &v
		}
	}
	return name, mod, val
}

// matches checks the modifier conditions. Block and element names are
// already selected by the dispatch table.
func (p *pattern) matches(n *bemjson.Node) bool {
	if p.blockMod != "" {
		mods := n.Mods
		if n.Elem != "" {
			mods = n.BlockMods
		}
		if !modMatches(mods, p.blockMod, p.blockModVal) {
			return false
		}
	}
	if p.elemMod != "" {
		if n.Elem == "" || !modMatches(n.Mods, p.elemMod, p.elemModVal) {
			return false
		}
	}
	return true
}

func modMatches(mods bemjson.Mods, name string, want *string) bool {
	got := mods[name]
	if want == nil {
		b, ok := got.(bool)
		return ok && b
	}
	s, ok := got.(string)
	return ok && s == *want
}

func (p *pattern) String() string {
	var b strings.Builder
	b.WriteString(p.block)
	writeMod(&b, p.blockMod, p.blockModVal)
	if p.elem != "" {
		b.WriteString("__")
		b.WriteString(p.elem)
		writeMod(&b, p.elemMod, p.elemModVal)
	}
	return b.String()
}

func writeMod(b *strings.Builder, mod string, val *string) {
	if mod == "" {
		return
	}
	b.WriteByte('_')
	b.WriteString(mod)
	if val != nil {
		b.WriteByte('_')
		b.WriteString(*val)
	}
}
