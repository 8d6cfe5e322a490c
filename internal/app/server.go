package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/specialistvlad/bemgo/internal/ctxlog"
	"github.com/specialistvlad/bemgo/internal/livereload"
)

// Handler returns the HTTP handler of serve mode: the rendered input at "/"
// and a health check at "/health". With watching on, the live reload hub is
// mounted too and pages carry its script.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/{$}", a.pageHandler)
	if a.hub != nil {
		mux.Handle(livereload.Path, a.hub)
	}
	return mux
}

// healthHandler answers health checks.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// pageHandler renders the current input with the current engine.
func (a *App) pageHandler(w http.ResponseWriter, r *http.Request) {
	engine, input := a.current()
	if engine == nil {
		http.Error(w, "templates are not loaded", http.StatusServiceUnavailable)
		return
	}

	component := engine.Processor().Component(input)
	if a.hub != nil {
		component = withScript(component, livereload.Script)
	}
	templ.Handler(component, templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		a.logger.Error("Page render failed.", "path", r.URL.Path, "error", err)
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		})
	})).ServeHTTP(w, r)
}

// withScript renders c followed by script. Nothing is written when c fails.
func withScript(c templ.Component, script string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := c.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, script)
		return err
	})
}

// serve runs the HTTP server until ctx is cancelled, reloading on changes
// when watching.
func (a *App) serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	addr := fmt.Sprintf(":%d", a.config.Port)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🌐 Server starting", "address", fmt.Sprintf("http://localhost%s/", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if a.config.Watch {
		go func() {
			if err := a.watch(ctx, a.notifyReload); err != nil {
				logger.Error("File watcher stopped.", "error", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return a.closeServer()
}

// notifyReload tells connected browsers to reload.
func (a *App) notifyReload(_ context.Context) error {
	if a.hub != nil {
		a.hub.Broadcast(livereload.ReloadMessage)
	}
	return nil
}

func (a *App) closeServer() error {
	a.logger.Debug("Closing server...")
	if a.hub != nil {
		a.hub.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("Shutting down server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown failed", "error", err)
		return err
	}

	a.logger.Debug("Server shut down gracefully.")
	return nil
}
