// Command tsinput converts between TypeScript input declarations and
// input-schema JSON, in both directions and in per-actor batches.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tsinput/tsinput/internal/config"
)

const version = "0.1.0-dev"

var (
	configPath string
	logLevel   string

	appConfig config.Config

	// appLogger starts on a plain stderr writer so failures before setup
	// still surface; setup replaces it with the configured logger.
	appLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		appLogger.Error().Err(err).Msg("tsinput failed")
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tsinput",
		Short:   "Convert TypeScript input declarations to input schemas and back",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to tsinput.config.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(newTypeToJSONCommand())
	rootCmd.AddCommand(newMultiactorTypeToJSONCommand())
	rootCmd.AddCommand(newJSONToTypeCommand())
	rootCmd.AddCommand(newMultiactorJSONToTypeCommand())

	return rootCmd
}

// setup loads the optional config file and builds the logger. The config
// supplies flag defaults; explicit flags always win.
func setup(cmd *cobra.Command) error {
	appConfig = config.DefaultConfig()
	path := configPath
	if path == "" {
		if _, err := os.Stat("tsinput.config.json"); err == nil {
			path = "tsinput.config.json"
		}
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		appConfig = *cfg
	}

	level := appConfig.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	appLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsed).
		With().Timestamp().Logger()
	return nil
}
