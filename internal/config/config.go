package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gep-report/internal/warehouse"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// SheetsConfig points at the Google Sheets tabs the pipeline reads.
type SheetsConfig struct {
	CredentialsFile      string
	ActualsSpreadsheetID string
	ActualsRange         string
	TargetsSpreadsheetID string
	TargetsRange         string
}

// SlackConfig holds delivery settings for the daily report.
type SlackConfig struct {
	Token   string
	Channel string
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Warehouse     warehouse.Config
	Sheets        SheetsConfig
	Slack         SlackConfig
	DataPath      string
	LogDir        string
	CacheDir      string
	TaxonomyPath  string
	DashboardAddr string
	OpenBrowser   bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	// Ensure directories exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	delaySecs, _ := strconv.Atoi(getEnv("WAREHOUSE_REQUEST_DELAY_SECONDS", "2"))

	cfg := &AppConfig{
		Warehouse: warehouse.Config{
			AccountURL:   getEnv("WAREHOUSE_ACCOUNT_URL", ""),
			Token:        getEnv("WAREHOUSE_TOKEN", ""),
			Warehouse:    getEnv("WAREHOUSE_COMPUTE", ""),
			Database:     getEnv("WAREHOUSE_DATABASE", ""),
			Schema:       getEnv("WAREHOUSE_SCHEMA", ""),
			Role:         getEnv("WAREHOUSE_ROLE", ""),
			RequestDelay: time.Duration(delaySecs) * time.Second,
		},
		Sheets: SheetsConfig{
			CredentialsFile:      getEnv("SHEETS_CREDENTIALS_FILE", ""),
			ActualsSpreadsheetID: getEnv("SHEETS_ACTUALS_SPREADSHEET_ID", ""),
			ActualsRange:         getEnv("SHEETS_ACTUALS_RANGE", "Actuals!A:E"),
			TargetsSpreadsheetID: getEnv("SHEETS_TARGETS_SPREADSHEET_ID", ""),
			TargetsRange:         getEnv("SHEETS_TARGETS_RANGE", "Targets!A:D"),
		},
		Slack: SlackConfig{
			Token:   getEnv("SLACK_TOKEN", ""),
			Channel: getEnv("SLACK_CHANNEL", ""),
		},
		DataPath:      dataPath,
		LogDir:        logDir,
		CacheDir:      cacheDir,
		TaxonomyPath:  getEnv("TAXONOMY_PATH", filepath.Join(dataPath, "taxonomy.json")),
		DashboardAddr: getEnv("DASHBOARD_ADDR", "localhost:8742"),
		OpenBrowser:   getEnvBool("DASHBOARD_OPEN_BROWSER", true),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
