package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend  string
	StorageKey   string
	DataDir      string
	SQLiteDBPath string
	PostgresURL  string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Worker
	SyncInterval time.Duration

	// Presentation
	EditingEnabled bool
	CurrencySymbol string

	// Logging
	LogLevel  string
	LogFormat string
}

// Backends lists the accepted DATA_BACKEND values.
var Backends = []string{"memory", "file", "sqlite", "postgres"}

var logFormats = []string{"auto", "text", "json"}

// Keys are lower case so that a config file and the environment
// (upper-cased by viper) address the same setting.
const (
	keyPort                     = "port"
	keyDataBackend              = "data_backend"
	keyStorageKey               = "storage_key"
	keyDataDir                  = "data_dir"
	keySQLiteDBPath             = "sqlite_db_path"
	keyPostgresURL              = "postgres_url"
	keyAMQPURL                  = "amqp_url"
	keyAMQPExchange             = "amqp_exchange"
	keyAMQPQueue                = "amqp_queue"
	keyGoogleSpreadsheetID      = "google_spreadsheet_id"
	keyGoogleSheetName          = "google_sheet_name"
	keyGoogleServiceAccountFile = "google_service_account_file"
	keyGoogleServiceAccountJSON = "google_service_account_json"
	keySyncInterval             = "sync_interval"
	keyEditingEnabled           = "editing_enabled"
	keyCurrencySymbol           = "currency_symbol"
	keyLogLevel                 = "log_level"
	keyLogFormat                = "log_format"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPort, "8081")
	v.SetDefault(keyDataBackend, "file")
	v.SetDefault(keyStorageKey, "expenses")
	v.SetDefault(keyDataDir, "./data")
	v.SetDefault(keySQLiteDBPath, "./data/tracker.db")
	v.SetDefault(keyPostgresURL, "")
	v.SetDefault(keyAMQPURL, "")
	v.SetDefault(keyAMQPExchange, "expensetracker")
	v.SetDefault(keyAMQPQueue, "expense_changes")
	v.SetDefault(keyGoogleSpreadsheetID, "")
	v.SetDefault(keyGoogleSheetName, "Expenses")
	v.SetDefault(keyGoogleServiceAccountFile, "")
	v.SetDefault(keyGoogleServiceAccountJSON, "")
	v.SetDefault(keySyncInterval, 30*time.Second)
	v.SetDefault(keyEditingEnabled, true)
	v.SetDefault(keyCurrencySymbol, "₹")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "auto")
}

// Load reads the configuration from the environment and, when configFile is
// set, from that file. Without configFile a tracker.{yaml,json,toml} in the
// working directory is used if present. Environment values win over the
// file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("tracker")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port: v.GetString(keyPort),

		DataBackend:  strings.ToLower(v.GetString(keyDataBackend)),
		StorageKey:   v.GetString(keyStorageKey),
		DataDir:      v.GetString(keyDataDir),
		SQLiteDBPath: v.GetString(keySQLiteDBPath),
		PostgresURL:  v.GetString(keyPostgresURL),

		AMQPURL:      v.GetString(keyAMQPURL),
		AMQPExchange: v.GetString(keyAMQPExchange),
		AMQPQueue:    v.GetString(keyAMQPQueue),

		GoogleSpreadsheetID:      v.GetString(keyGoogleSpreadsheetID),
		GoogleSheetName:          v.GetString(keyGoogleSheetName),
		GoogleServiceAccountFile: v.GetString(keyGoogleServiceAccountFile),
		GoogleServiceAccountJSON: v.GetString(keyGoogleServiceAccountJSON),

		SyncInterval: v.GetDuration(keySyncInterval),

		EditingEnabled: v.GetBool(keyEditingEnabled),
		CurrencySymbol: v.GetString(keyCurrencySymbol),

		LogLevel:  v.GetString(keyLogLevel),
		LogFormat: strings.ToLower(v.GetString(keyLogFormat)),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(Backends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	if c.StorageKey == "" || strings.ContainsAny(c.StorageKey, `/\`) {
		errs = append(errs, fmt.Sprintf("invalid storage key '%s': must be non-empty and contain no path separators", c.StorageKey))
	}

	switch c.DataBackend {
	case "file":
		if c.DataDir == "" {
			errs = append(errs, "data directory cannot be empty when using file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "postgres":
		if c.PostgresURL == "" {
			errs = append(errs, "Postgres URL cannot be empty when using postgres backend")
		} else if u, err := url.Parse(c.PostgresURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid Postgres URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errs = append(errs, fmt.Sprintf("invalid Postgres URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SyncInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if !slices.Contains(logFormats, c.LogFormat) {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, logFormats))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateWorker adds the checks that only matter for the sheets mirror
// worker on top of Validate.
func (c *Config) ValidateWorker() error {
	var errs []string
	if err := c.Validate(); err != nil {
		errs = append(errs, strings.TrimPrefix(err.Error(), "configuration validation failed:\n- "))
	}

	if c.DataBackend == "memory" {
		errs = append(errs, "memory backend cannot be shared with the worker: use file, sqlite or postgres")
	}
	if c.GoogleSpreadsheetID == "" {
		errs = append(errs, "Google Spreadsheet ID is required for the sheets worker")
	}
	if c.GoogleSheetName == "" {
		errs = append(errs, "Google Sheet name is required for the sheets worker")
	}

	hasFile := c.GoogleServiceAccountFile != ""
	hasJSON := c.GoogleServiceAccountJSON != ""
	if !hasFile && !hasJSON {
		errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for the sheets worker")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
