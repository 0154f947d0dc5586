package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend  string
	SQLiteDBPath string
	DataDir      string

	// AMQP, empty URL disables the broker
	AMQPURL            string
	AMQPExchange       string
	AMQPInsightsQueue  string
	AMQPRemindersQueue string

	// Gemini, empty key disables AI features
	GeminiAPIKey string
	GeminiModel  string

	// Drafts
	DraftTTL      time.Duration
	DraftCapacity int

	// Google Sheets mirror, empty spreadsheet ID disables it
	GoogleSpreadsheetID string
	SheetsListsTab      string
	SheetsProductsTab   string

	// Worker
	ReminderInterval time.Duration
	ReminderCadence  string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/planeja.db"),
		DataDir:      getEnv("DATA_DIR", "./data"),

		AMQPURL:            getEnv("AMQP_URL", ""),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "planeja"),
		AMQPInsightsQueue:  getEnv("AMQP_INSIGHTS_QUEUE", "insight_refresh"),
		AMQPRemindersQueue: getEnv("AMQP_REMINDERS_QUEUE", "deadline_reminders"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		DraftTTL:      getEnvDuration("DRAFT_TTL", 30*time.Minute),
		DraftCapacity: getEnvInt("DRAFT_CAPACITY", 100),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetsListsTab:      getEnv("SHEETS_LISTS_TAB", "Listas"),
		SheetsProductsTab:   getEnv("SHEETS_PRODUCTS_TAB", "Produtos"),

		ReminderInterval: getEnvDuration("REMINDER_INTERVAL", time.Hour),
		ReminderCadence:  getEnv("REMINDER_CADENCE", "daily"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// AMQPEnabled reports whether a broker URL was configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether lists should be mirrored to a spreadsheet.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPInsightsQueue == "" || c.AMQPRemindersQueue == "" {
			errors = append(errors, "AMQP queue names cannot be empty when AMQP URL is provided")
		} else if c.AMQPInsightsQueue == c.AMQPRemindersQueue {
			errors = append(errors, fmt.Sprintf("AMQP queues must differ, both are '%s'", c.AMQPInsightsQueue))
		}
	}

	if c.GeminiAPIKey != "" && strings.TrimSpace(c.GeminiModel) == "" {
		errors = append(errors, "Gemini model cannot be empty when GEMINI_API_KEY is provided")
	}

	if c.GoogleSpreadsheetID != "" {
		if strings.TrimSpace(c.SheetsListsTab) == "" || strings.TrimSpace(c.SheetsProductsTab) == "" {
			errors = append(errors, "sheet tab names cannot be empty when GOOGLE_SPREADSHEET_ID is provided")
		} else if c.SheetsListsTab == c.SheetsProductsTab {
			errors = append(errors, fmt.Sprintf("sheet tabs must differ, both are '%s'", c.SheetsListsTab))
		}
	}

	if c.DraftTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid draft TTL %v: must be at least 1 minute", c.DraftTTL))
	}
	if c.DraftCapacity < 1 {
		errors = append(errors, fmt.Sprintf("invalid draft capacity %d: must be at least 1", c.DraftCapacity))
	}

	if c.ReminderInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid reminder interval %v: must be at least 1 minute", c.ReminderInterval))
	} else if c.ReminderInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid reminder interval %v: must be at most 24 hours", c.ReminderInterval))
	}

	if c.ReminderCadence != "daily" && c.ReminderCadence != "milestones" {
		errors = append(errors, fmt.Sprintf("invalid reminder cadence '%s': must be 'daily' or 'milestones'", c.ReminderCadence))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
