package bh

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/bemgo/internal/bemjson"
)

// MatcherFunc is a matcher callback. It may mutate node through ctx and
// reports what should happen next through its Result.
type MatcherFunc func(ctx *Context, node *bemjson.Node) Result

type resultKind int

const (
	resultUnchanged resultKind = iota
	resultReplaced
	resultStopped
)

// Result is what a matcher callback returns.
type Result struct {
	kind  resultKind
	value bemjson.Value
}

// Unchanged lets the remaining matchers run on the node.
func Unchanged() Result { return Result{} }

// Replaced swaps the node for v. v is expanded in the node's place and no
// further matchers run on the old node.
func Replaced(v bemjson.Value) Result { return Result{kind: resultReplaced, value: v} }

// Stopped ends matching for the node. Its content is still expanded.
func Stopped() Result { return Result{kind: resultStopped} }

// IsReplaced reports whether the matcher returned a replacement value.
func (r Result) IsReplaced() bool { return r.kind == resultReplaced }

// IsStopped reports whether the matcher stopped further matching of the node.
func (r Result) IsStopped() bool { return r.kind == resultStopped }

// Value returns the replacement value, or nil unless IsReplaced is true.
func (r Result) Value() bemjson.Value { return r.value }

type matcher struct {
	id      int
	pattern pattern
	fn      MatcherFunc
}

// dispatchTable maps block, then element ("" for the block itself), to the
// candidate matchers, last registered first.
type dispatchTable map[string]map[string][]*matcher

func (t dispatchTable) candidates(n *bemjson.Node) []*matcher {
	elems, ok := t[n.Block]
	if !ok {
		return nil
	}
	return elems[n.Elem]
}

// Processor holds the registered matchers and renders BEMJSON.
type Processor struct {
	mu       sync.Mutex
	logger   *slog.Logger
	opts     Options
	matchers []*matcher
	table    dispatchTable

	lastID atomic.Uint64
}

// New creates a processor with no matchers.
func New(opts ...Option) *Processor {
	p := &Processor{
		logger: slog.Default(),
		opts:   DefaultOptions(),
	}
	p.SetOptions(opts...)
	return p
}

// SetOptions merges opts into the current configuration.
func (p *Processor) SetOptions(opts ...Option) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, opt := range opts {
		opt(p)
	}
}

// EnableInfiniteLoopDetection toggles the loop circuit breaker.
func (p *Processor) EnableInfiniteLoopDetection(enable bool) {
	p.SetOptions(WithInfiniteLoopDetection(enable))
}

// Options returns the current configuration.
func (p *Processor) Options() Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts
}

// Match registers fn for expr. Expressions without a block name are ignored.
func (p *Processor) Match(expr string, fn MatcherFunc) *Processor {
	if fn == nil {
		panic(fmt.Sprintf("bh: nil matcher function for %q", expr))
	}
	pat, ok := parsePattern(expr)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !ok {
		p.logger.Debug("Ignoring malformed matcher pattern.", "pattern", expr)
		return p
	}
	p.matchers = append(p.matchers, &matcher{
		id:      len(p.matchers) + 1,
		pattern: pat,
		fn:      fn,
	})
	p.table = nil
	return p
}

// MatchAll registers fn for every expression in exprs.
func (p *Processor) MatchAll(exprs []string, fn MatcherFunc) *Processor {
	for _, expr := range exprs {
		p.Match(expr, fn)
	}
	return p
}

// MatchMap registers every entry of m in sorted key order.
func (p *Processor) MatchMap(m map[string]MatcherFunc) *Processor {
	for _, expr := range bemjson.SortedKeys(m) {
		p.Match(expr, m[expr])
	}
	return p
}

// MatcherCount returns the number of registered matchers.
func (p *Processor) MatcherCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.matchers)
}

// snapshot returns the compiled table and the options for one pass.
func (p *Processor) snapshot() (dispatchTable, Options) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.table == nil {
		p.table = compile(p.matchers)
		p.logger.Debug("Compiled matcher dispatch table.", "matchers", len(p.matchers), "blocks", len(p.table))
	}
	return p.table, p.opts
}

func compile(matchers []*matcher) dispatchTable {
	t := make(dispatchTable)
	for i := len(matchers) - 1; i >= 0; i-- {
		m := matchers[i]
		elems, ok := t[m.pattern.block]
		if !ok {
			elems = make(map[string][]*matcher)
			t[m.pattern.block] = elems
		}
		elems[m.pattern.elem] = append(elems[m.pattern.elem], m)
	}
	return t
}

// Expand runs the matchers over v and returns the expanded tree. Nodes are
// modified in place; use Apply or bemjson.Clone to keep the input intact.
func (p *Processor) Expand(v bemjson.Value) (bemjson.Value, error) {
	table, opts := p.snapshot()
	ps := newPass(p, table, opts)

	root := v
	d := &descriptor{slot: &root, position: 1, listLength: 1}
	if err := ps.expand(d); err != nil {
		return root, err
	}
	return root, nil
}

// Apply expands a copy of v and renders it.
func (p *Processor) Apply(v bemjson.Value) (string, error) {
	out, err := p.Expand(bemjson.Clone(v))
	if err != nil {
		return "", err
	}
	return p.ToHTML(out), nil
}

func (p *Processor) generateID() string {
	return fmt.Sprintf("uniq%d", p.lastID.Add(1))
}
