package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/specialistvlad/bemgo/internal/app"
	"github.com/specialistvlad/bemgo/internal/watcher"
)

// EnvPrefix prefixes the environment variables that override flags, as in
// BEMGO_LOG_LEVEL or BEMGO_TEMPLATES.
const EnvPrefix = "BEMGO"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfg *app.Config
	root := newRootCommand(v, &cfg)
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if cfg == nil {
		// Help was printed, or no subcommand was given.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "mode", cfg.Mode)
	return cfg, false, nil
}

func newRootCommand(v *viper.Viper, out **app.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "bemgo",
		Short: "Render BEMJSON trees to HTML with declarative templates",
		Long: `bemgo resolves a bundle of HCL templates as dependent modules and applies
them to a BEMJSON tree.

Environment variables override flags:
  BEMGO_TEMPLATES     template paths, separated by commas or spaces
  BEMGO_LOG_LEVEL     debug, info, warn or error
  BEMGO_LOG_FORMAT    auto, text or json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringSliceP("templates", "t", []string{"templates"}, "Template files or directories.")
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("log-format", "auto", "Log output format. Options: 'auto', 'text' or 'json'.")
	flags.BoolP("watch", "w", false, "Reload when templates or the input change.")
	flags.Duration("watch-delay", watcher.DefaultDelay, "Quiet period before reacting to changes.")
	mustBind(v, flags)

	newModeCommand := func(mode app.Mode, use, short string, argc int) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(argc),
			RunE: func(cmd *cobra.Command, args []string) error {
				mustBind(v, cmd.Flags())
				cfg, err := buildConfig(v, mode, args)
				if err != nil {
					return err
				}
				*out = cfg
				return nil
			},
		}
		return cmd
	}

	serve := newModeCommand(app.ModeServe, "serve [flags] INPUT", "Serve the rendered input over HTTP", 1)
	serve.Flags().IntP("port", "p", 8080, "Port to listen on.")

	root.AddCommand(
		newModeCommand(app.ModeRender, "render [flags] INPUT", "Render a BEMJSON file to HTML", 1),
		newModeCommand(app.ModeExpand, "expand [flags] INPUT", "Print the expanded BEMJSON tree", 1),
		newModeCommand(app.ModeStat, "stat [flags]", "Print template modules by resolution state", 0),
		serve,
	)
	return root
}

func mustBind(v *viper.Viper, flags *pflag.FlagSet) {
	if err := v.BindPFlags(flags); err != nil {
		panic(fmt.Errorf("cli: binding flags: %w", err))
	}
}

func buildConfig(v *viper.Viper, mode app.Mode, args []string) (*app.Config, error) {
	logFormat := strings.ToLower(v.GetString("log-format"))
	switch logFormat {
	case "auto", "text", "json":
	default:
		return nil, usageError("invalid log-format: must be 'auto', 'text' or 'json'")
	}

	logLevel := strings.ToLower(v.GetString("log-level"))
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	slog.Debug("CLI parameter validation complete.")

	var input string
	if len(args) > 0 {
		input = args[0]
	}

	cfg, err := app.NewConfig(app.Config{
		Mode:          mode,
		TemplatePaths: splitList(v.GetStringSlice("templates")),
		InputPath:     input,
		Watch:         v.GetBool("watch"),
		WatchDelay:    v.GetDuration("watch-delay"),
		Port:          v.GetInt("port"),
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, usageError("%s", err.Error())
	}
	if cfg.WatchDelay <= 0 {
		cfg.WatchDelay = watcher.DefaultDelay
	}
	return cfg, nil
}

// splitList splits entries further on commas and drops empty ones, so lists
// from flags and from environment variables read the same.
func splitList(entries []string) []string {
	var out []string
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
