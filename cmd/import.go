package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"EchoWave/config"
	"EchoWave/core/importer"
	"EchoWave/db"
	"EchoWave/logger"
	"EchoWave/repository"
	"EchoWave/storage"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "One-shot import of audio files from the drop folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if cfg.ImportDir == "" || cfg.ImportUserID <= 0 {
			return fmt.Errorf("IMPORT_DIR and IMPORT_USER_ID must be set")
		}
		if cfg.StorageDriver != config.DriverMySQL {
			return fmt.Errorf("import requires STORAGE_DRIVER=%s", config.DriverMySQL)
		}

		if err := db.ConnectDB(cfg); err != nil {
			return err
		}
		defer db.CloseDB()

		if err := storage.InitMinio(cfg); err != nil {
			return err
		}

		content := repository.NewMySQLContentStore(db.DB)
		im := importer.New(cfg.ImportDir, cfg.ImportUserID, content.Tracks)

		imported, err := im.Scan(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("Import finished", logger.Int("imported", imported))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
