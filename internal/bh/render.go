package bh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/specialistvlad/bemgo/internal/bemjson"
)

var selfClosingTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "command": true,
	"embed": true, "hr": true, "img": true, "input": true, "keygen": true,
	"link": true, "meta": true, "param": true, "source": true, "wbr": true,
}

var (
	xmlEscaper  = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

// ToHTML renders an expanded tree. It runs no matchers.
func (p *Processor) ToHTML(v bemjson.Value) string {
	r := renderer{opts: p.Options()}
	var b strings.Builder
	r.render(&b, v)
	return b.String()
}

type renderer struct {
	opts Options
}

func (r *renderer) render(b *strings.Builder, v bemjson.Value) {
	switch t := v.(type) {
	case nil:
	case bool:
		if t {
			b.WriteString("true")
		}
	case string:
		r.text(b, t)
	case []any:
		for _, item := range t {
			r.render(b, item)
		}
	case *bemjson.Node:
		if t != nil {
			r.node(b, t)
		}
	default:
		r.text(b, fmt.Sprint(t))
	}
}

func (r *renderer) text(b *strings.Builder, s string) {
	if r.opts.EscapeContent {
		b.WriteString(xmlEscaper.Replace(s))
		return
	}
	b.WriteString(s)
}

func (r *renderer) node(b *strings.Builder, n *bemjson.Node) {
	if n.Tag != nil && *n.Tag == "" {
		if n.HTML != "" {
			b.WriteString(n.HTML)
			return
		}
		r.render(b, n.Content)
		return
	}

	var attrs strings.Builder
	for _, name := range bemjson.SortedKeys(n.Attrs) {
		switch v := n.Attrs[name].(type) {
		case nil:
		case bool:
			if v {
				attrs.WriteString(" " + name)
			}
		default:
			fmt.Fprintf(&attrs, ` %s="%s"`, name, attrEscaper.Replace(fmt.Sprint(v)))
		}
	}

	var cls classList
	if n.IsBEM() {
		r.bem(&cls, &attrs, n)
	}
	if n.Cls != "" {
		cls.add(strings.Fields(n.Cls)...)
	}

	tag := "div"
	if n.Tag != nil {
		tag = *n.Tag
	}
	b.WriteString("<" + tag)
	if !cls.empty() {
		b.WriteString(` class="` + attrEscaper.Replace(cls.String()) + `"`)
	}
	b.WriteString(attrs.String())

	if selfClosingTags[tag] {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
	if n.HTML != "" {
		b.WriteString(n.HTML)
	} else {
		r.render(b, n.Content)
	}
	b.WriteString("</" + tag + ">")
}

// bem adds the BEM classes of n and its mixes and writes the behaviour
// binding attribute.
func (r *renderer) bem(cls *classList, attrs *strings.Builder, n *bemjson.Node) {
	base := n.Base()
	var jsParams map[string]any
	var jsKeys []string
	addParams := func(key string, js any) {
		if jsParams == nil {
			jsParams = make(map[string]any)
		}
		if _, ok := jsParams[key]; !ok {
			jsKeys = append(jsKeys, key)
		}
		if js == true {
			js = map[string]any{}
		}
		jsParams[key] = js
	}

	if n.Block != "" {
		cls.add(base)
		modClasses(cls, base, n.Mods)
		if hasJS(n.JS) {
			addParams(base, n.JS)
		}
	}

	hasMixParams := false
	for _, mix := range n.Mix {
		if mix == nil || !mix.IsBEM() {
			continue
		}
		mixBlock := mix.Block
		mixElem := mix.Elem
		if mixBlock == "" {
			mixBlock = n.Block
			if mixElem == "" {
				mixElem = n.Elem
			}
		}
		if mixBlock == "" {
			continue
		}
		mixBase := mixBlock
		if mixElem != "" {
			mixBase += "__" + mixElem
		}
		cls.add(mixBase)
		modClasses(cls, mixBase, mix.Mods)
		if hasJS(mix.JS) {
			addParams(mixBase, mix.JS)
			hasMixParams = true
		}
	}

	if jsParams == nil {
		return
	}
	cls.add("i-bem")

	var data string
	if !hasMixParams && n.JS == true {
		data = "{&quot;" + base + "&quot;:{}}"
	} else {
		data = attrEscaper.Replace(encodeParams(jsKeys, jsParams))
	}
	if r.opts.JSAttrScheme == SchemeJS {
		data = "return " + data
	}
	name := n.JSAttr
	if name == "" {
		name = r.opts.JSAttrName
	}
	fmt.Fprintf(attrs, ` %s="%s"`, name, data)
}

func hasJS(js any) bool {
	switch t := js.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		return true
	}
}

// encodeParams writes the parameter object with keys in insertion order.
func encodeParams(keys []string, params map[string]any) string {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(marshal(key))
		b.WriteByte(':')
		b.Write(marshal(params[key]))
	}
	b.WriteByte('}')
	return b.String()
}

func marshal(v any) []byte {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(bemjson.ToAny(v)); err != nil {
		return []byte("null")
	}
	return bytes.TrimSuffix(b.Bytes(), []byte("\n"))
}

func modClasses(cls *classList, base string, mods bemjson.Mods) {
	for _, name := range bemjson.SortedKeys(mods) {
		v := mods[name]
		if !bemjson.IsSet(v) {
			continue
		}
		if v == true {
			cls.add(base + "_" + name)
			continue
		}
		cls.add(fmt.Sprintf("%s_%s_%v", base, name, v))
	}
}

// classList keeps class tokens in order without duplicates.
type classList struct {
	tokens []string
	seen   map[string]bool
}

func (c *classList) add(tokens ...string) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	for _, t := range tokens {
		if t == "" || c.seen[t] {
			continue
		}
		c.seen[t] = true
		c.tokens = append(c.tokens, t)
	}
}

func (c *classList) empty() bool {
	return len(c.tokens) == 0
}

func (c *classList) String() string {
	return strings.Join(c.tokens, " ")
}
