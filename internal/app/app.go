package app

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/specialistvlad/bemgo/internal/bemjson"
	"github.com/specialistvlad/bemgo/internal/config"
	"github.com/specialistvlad/bemgo/internal/livereload"
	"github.com/specialistvlad/bemgo/internal/templates"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	inR    io.Reader
	logger *slog.Logger
	config *Config
	loader config.Loader

	// mu guards engine and input, which watch mode replaces while the
	// server reads them.
	mu     sync.RWMutex
	engine *templates.Engine
	input  bemjson.Value

	httpServer *http.Server
	// hub is set when serving with watch enabled.
	hub *livereload.Hub
}

// NewApp is the constructor for the main application. Results go to outW and
// logs to logW, through the App's own isolated logger.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		inR:    os.Stdin,
		logger: logger,
		config: appConfig,
		loader: loader,
	}
	if appConfig.Mode == ModeServe && appConfig.Watch {
		a.hub = livereload.NewHub(logger)
	}
	return a
}

// Engine returns the most recently loaded engine, or nil before Run.
func (a *App) Engine() *templates.Engine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.engine
}

func (a *App) current() (*templates.Engine, bemjson.Value) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.engine, a.input
}
