// Package cli implements the vexora command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/raysh454/vexora/internal/app"
	"github.com/raysh454/vexora/internal/logging"
)

var version = "0.1.0"

// DefaultConfigPath is read when --config is not given. It may be absent.
const DefaultConfigPath = "vexora.yaml"

type rootOptions struct {
	ConfigPath string
	Output     string
	NoSave     bool
	LogLevel   string

	// stderr receives logs; tests point it at a buffer.
	stderr io.Writer
}

// Execute builds the root command tree and runs the CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd returns the full command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(os.Stderr)
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "vexora",
		Short:         "Score URLs, messages, images and videos for scam and deepfake risk",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.Output {
			case outputText, outputJSON:
				return nil
			default:
				return fmt.Errorf("--output must be %q or %q", outputText, outputJSON)
			}
		},
	}
	rootCmd.SetVersionTemplate("vexora version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", DefaultConfigPath, "Path to vexora.yaml (optional)")
	pf.StringVarP(&opts.Output, "output", "o", outputText, "Output format: text|json")
	pf.BoolVar(&opts.NoSave, "no-save", false, "Do not record results in history")
	pf.StringVar(&opts.LogLevel, "log-level", "", "Log level override: debug|info|warn|error")

	rootCmd.AddCommand(
		newURLCmd(opts),
		newTextCmd(opts),
		newImageCmd(opts),
		newVideoCmd(opts),
		newServeCmd(opts),
		newHistoryCmd(opts),
		newPolicyCmd(opts),
	)
	return rootCmd
}

// loadConfig resolves the config file, environment and flag overrides.
func (o *rootOptions) loadConfig(overrides ...func(*app.Config)) (*app.Config, error) {
	if o.LogLevel != "" {
		level := o.LogLevel
		overrides = append(overrides, func(c *app.Config) { c.Logging.Level = level })
	}
	return app.Loader{Path: o.ConfigPath, Overrides: overrides}.Load()
}

func (o *rootOptions) logger(cfg *app.Config) logging.Logger {
	return logging.NewLogger(o.stderr, "vexora", logging.ParseLevel(cfg.Logging.Level))
}

// openApp builds an Application for a single command. The caller must call
// the returned close function.
func (o *rootOptions) openApp(ctx context.Context, overrides ...func(*app.Config)) (*app.Application, func(), error) {
	cfg, err := o.loadConfig(overrides...)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.NewApplication(ctx, cfg, o.logger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return a, func() { _ = a.Shutdown(context.Background()) }, nil
}
