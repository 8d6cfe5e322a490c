package bh

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/specialistvlad/bemgo/internal/bemjson"
)

// Component adapts v to a templ component. Every render applies the
// processor to a fresh copy of v, so the component can be rendered
// repeatedly and concurrently.
func (p *Processor) Component(v bemjson.Value) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		html, err := p.Apply(v)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	})
}
