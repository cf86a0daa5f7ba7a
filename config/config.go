package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage driver names. The driver is chosen once at construction; call
// sites never sniff the environment themselves.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config stores the application configuration.
type Config struct {
	HTTPAddr      string
	StorageDriver string // mysql or memory

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis is optional; the play-queue cache is skipped when RedisHost is
	// empty.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO object storage for uploaded audio and cover art.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret string

	// Drop-folder importer. Disabled when ImportDir is empty.
	ImportDir    string
	ImportUserID int64

	LogLevel      string
	LogOutputPath string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or
// defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		StorageDriver: getEnv("STORAGE_DRIVER", DriverMemory),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "echowave"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "echowave"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		JWTSecret: getEnv("JWT_SECRET", "echowave-dev-secret"),

		ImportDir:    os.Getenv("IMPORT_DIR"),
		ImportUserID: int64(getEnvInt("IMPORT_USER_ID", 0)),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogOutputPath: getEnv("LOG_OUTPUT_PATH", ""),
	}
}
