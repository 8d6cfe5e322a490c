package app

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects what the application does with the resolved templates.
type Mode string

const (
	// ModeRender prints the input rendered to HTML.
	ModeRender Mode = "render"
	// ModeExpand prints the expanded input as BEMJSON.
	ModeExpand Mode = "expand"
	// ModeStat prints the template modules grouped by resolution state.
	ModeStat Mode = "stat"
	// ModeServe serves the rendered input over HTTP.
	ModeServe Mode = "serve"
)

// StdinPath is the input path that reads the input from standard input.
const StdinPath = "-"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Mode          Mode
	TemplatePaths []string // hcl files or directories
	InputPath     string   // BEMJSON as .json, .yaml or .yml, or StdinPath

	Watch      bool
	WatchDelay time.Duration
	Port       int

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.TemplatePaths) == 0 {
		return nil, errors.New("at least one template path is required")
	}

	switch cfg.Mode {
	case ModeRender, ModeExpand, ModeServe:
		if cfg.InputPath == "" {
			return nil, fmt.Errorf("mode %q requires an input path", cfg.Mode)
		}
	case ModeStat:
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	if cfg.Mode == ModeServe && (cfg.Port <= 0 || cfg.Port > 65535) {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Watch && cfg.InputPath == StdinPath {
		return nil, errors.New("cannot watch input read from stdin")
	}

	return &cfg, nil
}
