package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/bemgo/internal/bemjson"
	"github.com/specialistvlad/bemgo/internal/ctxlog"
)

// Run executes the configured mode until it completes or, with watching or
// serving, until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", a.config.Mode)

	if err := a.reload(ctx); err != nil {
		return err
	}

	if a.config.Mode == ModeServe {
		return a.serve(ctx)
	}

	if err := a.write(ctx); err != nil {
		return err
	}
	if a.config.Watch {
		return a.watch(ctx, a.write)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// write prints the current engine's output for the configured mode.
func (a *App) write(_ context.Context) error {
	engine, input := a.current()

	switch a.config.Mode {
	case ModeRender:
		html, err := engine.Render(input)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		_, err = fmt.Fprintln(a.outW, html)
		return err
	case ModeExpand:
		expanded, err := engine.Expand(input)
		if err != nil {
			return fmt.Errorf("expand failed: %w", err)
		}
		data, err := bemjson.Encode(expanded)
		if err != nil {
			return fmt.Errorf("failed to encode expanded tree: %w", err)
		}
		_, err = a.outW.Write(data)
		return err
	case ModeStat:
		return writeStat(a.outW, engine)
	default:
		return fmt.Errorf("mode %q has no output", a.config.Mode)
	}
}
