package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/typomata"
	"github.com/aretw0/typomata/internal/config"
	"github.com/aretw0/typomata/internal/logging"
	"github.com/aretw0/typomata/internal/machines"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "typomata",
	Short: "Typomata is a type-directed state machine toolkit",
	Long: `Typomata dispatches (state, action) pairs to handlers chosen by the runtime
types of their values. This tool inspects, runs and serves the bundled machines.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cfgErr
	},
}

// Environment and .env provide the flag defaults.
var cfg, cfgErr = loadConfig()

func loadConfig() (config.Config, error) {
	c, err := config.Load()
	if err != nil {
		return config.Config{Machine: "coffee", LogLevel: "warn", Port: "8080", MCPPort: 8081}, err
	}
	return c, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("machine", "m", cfg.Machine, "Name of the bundled machine (TYPOMATA_MACHINE)")
	rootCmd.PersistentFlags().String("log-level", cfg.LogLevel, "Log level: debug, info, warn or error (TYPOMATA_LOG_LEVEL)")
}

// newLogger builds the stderr logger from the --log-level flag.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// loadMachine builds the machine named by the --machine flag.
func loadMachine(cmd *cobra.Command, opts ...typomata.Option) (*typomata.Machine, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	name, _ := cmd.Flags().GetString("machine")

	opts = append([]typomata.Option{typomata.WithLogger(logger)}, opts...)
	return machines.Default().Build(name, opts...)
}
