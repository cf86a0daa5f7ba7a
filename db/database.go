package db

import (
	"database/sql"
	"fmt"

	"EchoWave/config"
	"EchoWave/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// DB is the shared database handle.
var DB *sql.DB

// ConnectDB establishes a connection to the database. A failure here is
// fatal to the calling flow; it propagates rather than being swallowed.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to the database",
		logger.String("host", cfg.DBHost),
		logger.String("database", cfg.DBName))
	return nil
}

// CloseDB closes the shared handle.
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
