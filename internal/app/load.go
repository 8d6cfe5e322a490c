package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/bemgo/internal/bemjson"
	"github.com/specialistvlad/bemgo/internal/ctxlog"
	"github.com/specialistvlad/bemgo/internal/templates"
)

// reload loads the templates and the input and swaps them in. On error the
// previous engine and input stay in place.
func (a *App) reload(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading templates...", "paths", a.config.TemplatePaths)

	engine, err := templates.Load(ctx, a.loader, a.config.TemplatePaths...)
	if err != nil {
		return err
	}

	var input bemjson.Value
	if a.config.InputPath != "" {
		if input, err = a.loadInput(); err != nil {
			return err
		}
	}

	a.mu.Lock()
	a.engine = engine
	a.input = input
	a.mu.Unlock()

	logger.Info("Templates loaded.", "files", len(engine.Bundle().Files), "templates", len(engine.Exports()))
	return nil
}

func (a *App) loadInput() (bemjson.Value, error) {
	path := a.config.InputPath

	var (
		data []byte
		err  error
	)
	if path == StdinPath {
		data, err = io.ReadAll(a.inR)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}

	v, err := bemjson.Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input %s: %w", path, err)
	}
	return v, nil
}
