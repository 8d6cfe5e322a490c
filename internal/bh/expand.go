package bh

import (
	"slices"
	"strings"

	"github.com/specialistvlad/bemgo/internal/bemjson"
)

// descriptor tracks one value during a pass: where it lives, where it sits
// among its siblings and which block scope it inherits.
type descriptor struct {
	slot       *bemjson.Value
	position   int
	listLength int

	blockName string
	blockMods bemjson.Mods

	parent  *descriptor
	tParams map[string]any
}

// pass is the state of one expansion run.
type pass struct {
	proc  *Processor
	table dispatchTable
	opts  Options

	tried   map[*bemjson.Node]map[int]struct{}
	stopped map[*bemjson.Node]struct{}
	counts  map[*bemjson.Node]int
	total   int

	err error
}

func newPass(p *Processor, table dispatchTable, opts Options) *pass {
	return &pass{
		proc:    p,
		table:   table,
		opts:    opts,
		tried:   make(map[*bemjson.Node]map[int]struct{}),
		stopped: make(map[*bemjson.Node]struct{}),
		counts:  make(map[*bemjson.Node]int),
	}
}

func (ps *pass) expand(root *descriptor) error {
	queue := []*descriptor{root}
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]

		switch v := (*d.slot).(type) {
		case []any:
			queue = ps.pushSequence(queue, v, d, d.blockName, d.blockMods)
		case *bemjson.Node:
			if v == nil {
				continue
			}
			inherit(v, d)
			blockName, blockMods := scope(v, d)
			if v.Block != "" {
				if err := ps.countMatch(v, d); err != nil {
					return err
				}
				ctx := &Context{pass: ps, desc: d, node: v}
				repl, replaced := ps.runMatchers(ctx, v)
				if ps.err != nil {
					return ps.err
				}
				if replaced {
					*d.slot = repl
					d.blockName, d.blockMods = blockName, blockMods
					queue = append(queue, d)
					continue
				}
				blockName, blockMods = scope(v, d)
			}
			queue = ps.pushContent(queue, v, d, blockName, blockMods)
		}
	}
	return nil
}

// inherit fills in the block an element belongs to.
func inherit(n *bemjson.Node, d *descriptor) {
	if n.Elem == "" {
		return
	}
	if n.Block == "" {
		n.Block = d.blockName
	}
	if n.BlockMods == nil && n.Block == d.blockName {
		n.BlockMods = d.blockMods
	}
}

// scope returns the block name and modifiers children of n inherit.
func scope(n *bemjson.Node, d *descriptor) (string, bemjson.Mods) {
	switch {
	case n.Elem != "":
		return n.Block, n.BlockMods
	case n.Block != "":
		return n.Block, n.Mods
	default:
		return d.blockName, d.blockMods
	}
}

func (ps *pass) pushSequence(queue []*descriptor, seq []any, parent *descriptor, blockName string, blockMods bemjson.Mods) []*descriptor {
	length := 0
	for _, item := range seq {
		if isObject(item) {
			length++
		}
	}
	position := 0
	for i := range seq {
		if !isObject(seq[i]) {
			continue
		}
		position++
		queue = append(queue, &descriptor{
			slot:       &seq[i],
			position:   position,
			listLength: length,
			blockName:  blockName,
			blockMods:  blockMods,
			parent:     parent,
		})
	}
	return queue
}

func (ps *pass) pushContent(queue []*descriptor, n *bemjson.Node, d *descriptor, blockName string, blockMods bemjson.Mods) []*descriptor {
	switch c := n.Content.(type) {
	case []any:
		flat := flatten(c)
		n.Content = flat
		return ps.pushSequence(queue, flat, d, blockName, blockMods)
	case *bemjson.Node:
		if c == nil {
			return queue
		}
		return append(queue, &descriptor{
			slot:       &n.Content,
			position:   1,
			listLength: 1,
			blockName:  blockName,
			blockMods:  blockMods,
			parent:     d,
		})
	default:
		return queue
	}
}

// flatten splices nested sequences into seq until none is left.
func flatten(seq []any) []any {
	if !slices.ContainsFunc(seq, isSequence) {
		return seq
	}
	out := make([]any, 0, len(seq))
	for _, item := range seq {
		if inner, ok := item.([]any); ok {
			out = append(out, flatten(inner)...)
			continue
		}
		out = append(out, item)
	}
	return out
}

func isSequence(v any) bool {
	_, ok := v.([]any)
	return ok
}

func isObject(v any) bool {
	switch t := v.(type) {
	case *bemjson.Node:
		return t != nil
	case []any:
		return true
	default:
		return false
	}
}

// runMatchers tries every candidate for n that has not run on it yet.
func (ps *pass) runMatchers(ctx *Context, n *bemjson.Node) (bemjson.Value, bool) {
	tried := ps.tried[n]
	if tried == nil {
		tried = make(map[int]struct{})
		ps.tried[n] = tried
	}

	for _, m := range ps.table.candidates(n) {
		if ps.isStopped(n) {
			return nil, false
		}
		if _, done := tried[m.id]; done {
			continue
		}
		if !m.pattern.matches(n) {
			continue
		}
		tried[m.id] = struct{}{}

		res := m.fn(ctx, n)
		if ps.err != nil {
			return nil, false
		}
		switch res.kind {
		case resultReplaced:
			return res.value, true
		case resultStopped:
			ps.stopped[n] = struct{}{}
			return nil, false
		}
		if ctx.hasReplacement {
			v := ctx.replacement
			ctx.replacement, ctx.hasReplacement = nil, false
			return v, true
		}
	}
	return nil, false
}

func (ps *pass) isStopped(n *bemjson.Node) bool {
	_, ok := ps.stopped[n]
	return ok
}

func (ps *pass) fail(err error) {
	if ps.err == nil && err != nil {
		ps.err = err
	}
}

func (ps *pass) countMatch(n *bemjson.Node, d *descriptor) error {
	if !ps.opts.InfiniteLoopDetection {
		return nil
	}
	ps.counts[n]++
	ps.total++
	if ps.counts[n] > ps.opts.NodeLoopLimit {
		return &LoopError{Kind: ErrInfiniteJSONLoop, Path: d.path()}
	}
	if ps.total > ps.opts.GlobalLoopLimit {
		return &LoopError{Kind: ErrInfiniteMatcherLoop, Path: d.path()}
	}
	return nil
}

// path lists the BEM entities from the root down to d.
func (d *descriptor) path() string {
	var parts []string
	for cur := d; cur != nil; cur = cur.parent {
		if n, ok := (*cur.slot).(*bemjson.Node); ok && n != nil && n.Block != "" {
			parts = append(parts, n.Base())
		}
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}
