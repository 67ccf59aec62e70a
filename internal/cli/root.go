package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dcu/moreremesas"
	"github.com/dcu/moreremesas/internal/pkg/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Config *moreremesas.Config
	Client moreremesas.ClientIface
	Logger *slog.Logger
}

type rootFlags struct {
	configPath string
	logLevel   string
	logFile    string
	logFormat  string
}

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var flags rootFlags
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "moreremesas",
		Short:         "CLI for the MoreRemesas remittance API",
		Long:          `A command line interface for quoting, reserving, importing and tracking remittance orders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.SetupLogger(logger.Config{
				Level:   logger.ParseLevel(flags.logLevel),
				LogFile: flags.logFile,
				Format:  flags.logFormat,
				Output:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			ctx.Logger = log.With("component", "cli")
			ctx.Logger.Debug("CLI started", "command", cmd.Name())

			if !needsClient(cmd) {
				cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
				return nil
			}

			cfg, err := moreremesas.LoadConfig(flags.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			opts := cfg.Options()
			opts.Logger = log
			client, err := moreremesas.New(cfg.Host, opts)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			ctx.Config = cfg
			ctx.Client = client
			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))

			return nil
		},
	}

	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newRatesCommand())
	rootCmd.AddCommand(newBranchesCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newCalcCommand())
	rootCmd.AddCommand(newReserveCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newUpdateCommand())
	rootCmd.AddCommand(newCancelCommand())
	rootCmd.AddCommand(newOperationsCommand())
	rootCmd.AddCommand(newPartnerIDCommand())

	defaultConfig := os.Getenv("MOREREMESAS_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "moreremesas.yaml"
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", defaultConfig,
		"Config file path (env MOREREMESAS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text",
		"Log format (text, json)")

	return rootCmd
}

// needsClient reports whether cmd talks to the provider. Offline commands and
// cobra's help and completion commands run without a config file.
func needsClient(cmd *cobra.Command) bool {
	if cmd.Annotations["offline"] == "true" {
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
