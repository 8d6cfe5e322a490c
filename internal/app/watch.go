package app

import (
	"context"

	"github.com/specialistvlad/bemgo/internal/watcher"
)

// watch reloads on every batch of template or input changes and then calls
// onChange, until ctx is cancelled. Failures are logged and the previous
// state is kept.
func (a *App) watch(ctx context.Context, onChange func(context.Context) error) error {
	w, err := watcher.New(a.config.WatchDelay, watcher.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer w.Close()

	w.AddFilter(watcher.ExtensionFilter(".hcl", ".json", ".yaml", ".yml"))
	w.AddFilter(watcher.NoHiddenFilter)

	paths := append([]string{}, a.config.TemplatePaths...)
	if a.config.InputPath != "" {
		paths = append(paths, a.config.InputPath)
	}
	if err := w.Add(paths...); err != nil {
		return err
	}

	a.logger.Info("👀 Watching for changes.", "paths", paths)
	return w.Run(ctx, func(ctx context.Context, events []watcher.ChangeEvent) error {
		for _, e := range events {
			a.logger.Debug("Change detected.", "path", e.Path, "type", e.Type.String())
		}
		if err := a.reload(ctx); err != nil {
			return err
		}
		if onChange == nil {
			return nil
		}
		return onChange(ctx)
	})
}
