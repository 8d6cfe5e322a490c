package bemjson

import (
	"fmt"
	"sort"
)

// FromAny converts a generic decoded value (maps, slices, scalars) into a
// BEMJSON Value. Every map becomes a *Node.
func FromAny(v any) Value {
	switch t := v.(type) {
	case map[string]any:
		return nodeFromMap(t)
	case map[any]any:
		return nodeFromMap(stringKeys(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = FromAny(item)
		}
		return out
	default:
		return v
	}
}

func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = v
	}
	return out
}

func nodeFromMap(m map[string]any) *Node {
	n := &Node{}
	_, isElem := m["elem"]
	_, hasElemMods := m["elemMods"]

	for key, raw := range m {
		switch key {
		case "block":
			n.Block = asString(raw)
		case "elem":
			n.Elem = asString(raw)
		case "mods":
			if isElem && hasElemMods {
				n.BlockMods = asMods(raw)
			} else {
				n.Mods = asMods(raw)
			}
		case "elemMods":
			if isElem {
				n.Mods = asMods(raw)
			} else {
				n.setParam(key, raw)
			}
		case "tag":
			switch t := raw.(type) {
			case bool:
				if !t {
					n.Tag = TagName("")
				}
			case nil:
			default:
				n.Tag = TagName(asString(t))
			}
		case "cls":
			n.Cls = asString(raw)
		case "attrs":
			n.Attrs = asMap(raw)
		case "js":
			n.JS = plain(raw)
		case "jsAttr":
			n.JSAttr = asString(raw)
		case "bem":
			if b, ok := raw.(bool); ok {
				n.Bem = Bool(b)
			}
		case "mix":
			n.Mix = Mix(raw)
		case "content":
			n.Content = FromAny(raw)
		case "html":
			n.HTML = asString(raw)
		default:
			n.setParam(key, raw)
		}
	}
	return n
}

func (n *Node) setParam(key string, raw any) {
	if n.Params == nil {
		n.Params = make(map[string]any)
	}
	n.Params[key] = FromAny(raw)
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plain(val)
		}
		return out
	case map[any]any:
		return asMap(stringKeys(t))
	default:
		return nil
	}
}

func asMods(v any) Mods {
	m := asMap(v)
	if m == nil {
		return nil
	}
	return Mods(m)
}

// Mix converts a mix value (one object or a list of objects) into nodes.
// Entries that are not objects are dropped.
func Mix(v any) []*Node {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		if n, ok := FromAny(t).(*Node); ok {
			return []*Node{n}
		}
	case *Node:
		return []*Node{t}
	case []any:
		out := make([]*Node, 0, len(t))
		for _, item := range t {
			if n, ok := FromAny(item).(*Node); ok {
				out = append(out, n)
			}
		}
		return out
	case []*Node:
		return t
	}
	return nil
}

// plain normalizes nested generic maps to map[string]any without turning
// them into nodes. Used for attribute and js parameter values.
func plain(v any) any {
	switch t := v.(type) {
	case map[any]any:
		return asMap(t)
	case map[string]any:
		return asMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

// ToAny converts a Value back into generic maps and slices suitable for
// encoding. Empty fields are omitted.
func ToAny(v Value) any {
	switch t := v.(type) {
	case *Node:
		return t.toMap()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToAny(item)
		}
		return out
	case Mods:
		return map[string]any(t)
	default:
		return v
	}
}

func (n *Node) toMap() map[string]any {
	if n == nil {
		return nil
	}
	m := make(map[string]any)
	for k, v := range n.Params {
		m[k] = ToAny(v)
	}
	if n.Block != "" {
		m["block"] = n.Block
	}
	if n.Elem != "" {
		m["elem"] = n.Elem
	}
	if len(n.Mods) > 0 {
		if n.Elem != "" {
			m["elemMods"] = map[string]any(n.Mods)
		} else {
			m["mods"] = map[string]any(n.Mods)
		}
	}
	if n.Elem != "" && len(n.BlockMods) > 0 {
		m["mods"] = map[string]any(n.BlockMods)
	}
	if n.Tag != nil {
		if *n.Tag == "" {
			m["tag"] = false
		} else {
			m["tag"] = *n.Tag
		}
	}
	if n.Cls != "" {
		m["cls"] = n.Cls
	}
	if len(n.Attrs) > 0 {
		m["attrs"] = n.Attrs
	}
	if n.JS != nil {
		m["js"] = n.JS
	}
	if n.JSAttr != "" {
		m["jsAttr"] = n.JSAttr
	}
	if n.Bem != nil {
		m["bem"] = *n.Bem
	}
	if len(n.Mix) > 0 {
		mix := make([]any, len(n.Mix))
		for i, item := range n.Mix {
			mix[i] = item.toMap()
		}
		m["mix"] = mix
	}
	if n.Content != nil {
		m["content"] = ToAny(n.Content)
	}
	if n.HTML != "" {
		m["html"] = n.HTML
	}
	return m
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
