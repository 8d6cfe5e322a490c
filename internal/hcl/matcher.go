package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/specialistvlad/bemgo/internal/bemjson"
	"github.com/specialistvlad/bemgo/internal/bh"
	"github.com/specialistvlad/bemgo/internal/config"
	"github.com/specialistvlad/bemgo/internal/ctxlog"
)

// Converter is the HCL-specific implementation of the config.Converter
// interface.
type Converter struct {
	functions map[string]function.Function
}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{
		functions: map[string]function.Function{
			"upper":    stdlib.UpperFunc,
			"lower":    stdlib.LowerFunc,
			"format":   stdlib.FormatFunc,
			"join":     stdlib.JoinFunc,
			"concat":   stdlib.ConcatFunc,
			"coalesce": stdlib.CoalesceFunc,
			"length":   stdlib.LengthFunc,
			"lookup":   stdlib.LookupFunc,
			"try":      tryfunc.TryFunc,
			"can":      tryfunc.CanFunc,
		},
	}
}

// applyOrder is the order in which match attributes take effect on a node.
var applyOrder = []string{
	"tag", "cls", "bem", "attrs", "mods", "js", "mix", "params", "tparams", "content", "html",
}

// Matcher compiles m into a callback that evaluates its expressions for
// every node it is applied to.
func (c *Converter) Matcher(ctx context.Context, m *config.Match) (bh.MatcherFunc, error) {
	logger := ctxlog.FromContext(ctx)
	for name := range m.Attributes {
		if !matchAttributes[name] {
			return nil, fmt.Errorf("match %q: unsupported attribute %q", m.Pattern, name)
		}
	}
	logger.Debug("Compiled declarative matcher.", "pattern", m.Pattern, "attributes", len(m.Attributes))

	return func(bctx *bh.Context, node *bemjson.Node) bh.Result {
		res, err := c.apply(bctx, node, m)
		if err != nil {
			bctx.Fail(fmt.Errorf("match %q at %s: %w", m.Pattern, m.DeclRange, err))
			return bh.Unchanged()
		}
		return res
	}, nil
}

func (c *Converter) apply(bctx *bh.Context, node *bemjson.Node, m *config.Match) (bh.Result, error) {
	evalCtx, err := c.evalContext(bctx, node)
	if err != nil {
		return bh.Unchanged(), err
	}
	eval := func(name string) (any, bool, error) {
		expr, ok := m.Attributes[name]
		if !ok {
			return nil, false, nil
		}
		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, false, diags
		}
		v, err := FromCty(val)
		if err != nil {
			return nil, false, fmt.Errorf("attribute %q: %w", name, err)
		}
		return v, v != nil, nil
	}

	if when, ok, err := eval("when"); err != nil {
		return bh.Unchanged(), err
	} else if ok && when != true {
		return bh.Unchanged(), nil
	}

	force := false
	if v, ok, err := eval("force"); err != nil {
		return bh.Unchanged(), err
	} else if ok {
		force = v == true
	}

	for _, name := range applyOrder {
		v, ok, err := eval(name)
		if err != nil {
			return bh.Unchanged(), err
		}
		if !ok {
			continue
		}
		if err := set(bctx, name, v, force); err != nil {
			return bh.Unchanged(), fmt.Errorf("attribute %q: %w", name, err)
		}
	}

	if v, ok, err := eval("replace"); err != nil {
		return bh.Unchanged(), err
	} else if ok {
		return bh.Replaced(bemjson.FromAny(v)), nil
	}

	if v, ok, err := eval("stop"); err != nil {
		return bh.Unchanged(), err
	} else if ok && v == true {
		return bh.Stopped(), nil
	}
	return bh.Unchanged(), nil
}

func set(bctx *bh.Context, name string, v any, force bool) error {
	switch name {
	case "tag":
		switch t := v.(type) {
		case bool:
			if t {
				return fmt.Errorf("tag must be a string or false")
			}
			bctx.SetTag("", force)
		case string:
			bctx.SetTag(t, force)
		default:
			return fmt.Errorf("tag must be a string or false, got %T", v)
		}
	case "cls":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("cls must be a string, got %T", v)
		}
		bctx.SetCls(s, force)
	case "bem":
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("bem must be a bool, got %T", v)
		}
		bctx.SetBem(b, force)
	case "attrs":
		attrs, err := object(v)
		if err != nil {
			return err
		}
		bctx.SetAttrs(attrs, force)
	case "mods":
		mods, err := object(v)
		if err != nil {
			return err
		}
		bctx.SetMods(bemjson.Mods(mods), force)
	case "js":
		bctx.SetJS(v, force)
	case "mix":
		bctx.SetMix(bemjson.Mix(v), force)
	case "params":
		params, err := object(v)
		if err != nil {
			return err
		}
		for k, p := range params {
			bctx.SetParam(k, bemjson.FromAny(p), force)
		}
	case "tparams":
		params, err := object(v)
		if err != nil {
			return err
		}
		for k, p := range params {
			bctx.SetTParam(k, p, force)
		}
	case "content":
		bctx.SetContent(bemjson.FromAny(v), force)
	case "html":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("html must be a string, got %T", v)
		}
		bctx.SetHTML(s, force)
	}
	return nil
}

// object returns the non-null entries of an object value.
func object(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", v)
	}
	out := make(map[string]any, len(m))
	for k, item := range m {
		if item != nil {
			out[k] = item
		}
	}
	return out, nil
}

// evalContext exposes the node being matched to the expressions.
func (c *Converter) evalContext(bctx *bh.Context, node *bemjson.Node) (*hcl.EvalContext, error) {
	nodeVal, err := ToCty(node)
	if err != nil {
		return nil, fmt.Errorf("failed to convert node: %w", err)
	}
	mods, err := ToCty(map[string]any(node.Mods))
	if err != nil {
		return nil, fmt.Errorf("failed to convert mods: %w", err)
	}
	blockMods, err := ToCty(map[string]any(node.BlockMods))
	if err != nil {
		return nil, fmt.Errorf("failed to convert block mods: %w", err)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"node":       nodeVal,
			"block":      cty.StringVal(node.Block),
			"elem":       cty.StringVal(node.Elem),
			"mods":       mods,
			"block_mods": blockMods,
			"position":   cty.NumberIntVal(int64(bctx.Position())),
			"first":      cty.BoolVal(bctx.IsFirst()),
			"last":       cty.BoolVal(bctx.IsLast()),
		},
		Functions: c.functions,
	}, nil
}
