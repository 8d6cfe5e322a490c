package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/bemgo/internal/app"
	"github.com/specialistvlad/bemgo/internal/watcher"
)

func TestParse_Modes(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want app.Config
	}{
		{
			name: "render with defaults",
			args: []string{"render", "page.json"},
			want: app.Config{
				Mode:          app.ModeRender,
				TemplatePaths: []string{"templates"},
				InputPath:     "page.json",
				WatchDelay:    watcher.DefaultDelay,
				LogFormat:     "auto",
				LogLevel:      "info",
			},
		},
		{
			name: "expand with template list",
			args: []string{"expand", "-t", "a.hcl,b", "--templates", "c", "--log-level", "DEBUG", "page.yaml"},
			want: app.Config{
				Mode:          app.ModeExpand,
				TemplatePaths: []string{"a.hcl", "b", "c"},
				InputPath:     "page.yaml",
				WatchDelay:    watcher.DefaultDelay,
				LogFormat:     "auto",
				LogLevel:      "debug",
			},
		},
		{
			name: "stat",
			args: []string{"stat", "--log-format", "json"},
			want: app.Config{
				Mode:          app.ModeStat,
				TemplatePaths: []string{"templates"},
				WatchDelay:    watcher.DefaultDelay,
				LogFormat:     "json",
				LogLevel:      "info",
			},
		},
		{
			name: "serve with watch",
			args: []string{"serve", "-p", "9000", "-w", "--watch-delay", "250ms", "page.json"},
			want: app.Config{
				Mode:          app.ModeServe,
				TemplatePaths: []string{"templates"},
				InputPath:     "page.json",
				Watch:         true,
				WatchDelay:    250 * time.Millisecond,
				Port:          9000,
				LogFormat:     "auto",
				LogLevel:      "info",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.False(t, shouldExit)
			assert.Equal(t, tc.want, *cfg)
		})
	}
}

func TestParse_Environment(t *testing.T) {
	t.Setenv("BEMGO_TEMPLATES", "one two,three")
	t.Setenv("BEMGO_LOG_LEVEL", "warn")
	t.Setenv("BEMGO_LOG_FORMAT", "text")

	cfg, _, err := Parse([]string{"render", "page.json"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, cfg.TemplatePaths)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	cfg, _, err = Parse([]string{"render", "--log-level", "error", "page.json"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel, "flags win over the environment")
}

func TestParse_Help(t *testing.T) {
	for _, args := range [][]string{{}, {"-h"}, {"render", "--help"}} {
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown flag", args: []string{"render", "--colour", "page.json"}, wantErr: "unknown flag: --colour"},
		{name: "unknown command", args: []string{"paint"}, wantErr: `unknown command "paint"`},
		{name: "missing input", args: []string{"render"}, wantErr: "accepts 1 arg(s), received 0"},
		{name: "bad log format", args: []string{"render", "--log-format", "xml", "page.json"}, wantErr: "invalid log-format"},
		{name: "bad log level", args: []string{"stat", "--log-level", "loud"}, wantErr: "invalid log-level"},
		{name: "bad port", args: []string{"serve", "-p", "0", "page.json"}, wantErr: "invalid port 0"},
		{name: "watch stdin", args: []string{"render", "-w", "-"}, wantErr: "stdin"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantErr)
		})
	}
}
