package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"EchoWave/config"
	"EchoWave/db"
	"EchoWave/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the MySQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if cfg.StorageDriver != config.DriverMySQL {
			return fmt.Errorf("migrate requires STORAGE_DRIVER=%s", config.DriverMySQL)
		}

		if err := db.ConnectGormDB(cfg); err != nil {
			return err
		}
		defer func() {
			if err := db.CloseGormDB(); err != nil {
				logger.Warn("Failed to close GORM connection", logger.ErrorField(err))
			}
		}()

		return db.MigrateSchema()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
