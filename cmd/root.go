package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"EchoWave/config"
	"EchoWave/logger"
	"EchoWave/server"
)

var rootCmd = &cobra.Command{
	Use:   "echowave",
	Short: "EchoWave is a social music-sharing platform.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		return server.Start(cfg)
	},
}

// loadConfig loads the configuration and initializes logging from it.
func loadConfig() *config.Config {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutputPath,
	})
	return cfg
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
