// Package config loads process configuration from the environment.
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

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string
	// Memory backend seed directory
	DataDirectory string

	// AMQP; empty URL disables the ingest queue
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Assistant
	AssistantBackend  string
	OllamaURL         string
	OllamaModel       string
	GeminiAPIKey      string
	GeminiModel       string
	AssistantTimeout  time.Duration
	AssistantMaxTurns int
	ContextMaxRecords int

	// Statement import
	StatementHeaderRow int

	// Google Sheets statement source
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	AssistantOllama = "ollama"
	AssistantGemini = "gemini"
)

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8081"),
		DataBackend:   getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/reikningar.db"),
		DataDirectory: getEnv("DATA_DIRECTORY", "data"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "reikningar"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ingest_documents"),

		AssistantBackend:  getEnv("ASSISTANT_BACKEND", AssistantOllama),
		OllamaURL:         getEnv("OLLAMA_URL", "http://localhost:11434/api/generate"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "gemma3:12b"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AssistantTimeout:  getEnvDuration("ASSISTANT_TIMEOUT", 2*time.Minute),
		AssistantMaxTurns: getEnvInt("ASSISTANT_MAX_TURNS", 12),
		ContextMaxRecords: getEnvInt("ASSISTANT_CONTEXT_MAX_RECORDS", 500),

		StatementHeaderRow: getEnvInt("STATEMENT_HEADER_ROW", 4),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{BackendMemory, BackendSQLite}
	if !oneOf(c.DataBackend, validBackends) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendSQLite {
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

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate assistant
	validAssistants := []string{AssistantOllama, AssistantGemini}
	if !oneOf(c.AssistantBackend, validAssistants) {
		errors = append(errors, fmt.Sprintf("invalid assistant backend '%s': must be one of %v", c.AssistantBackend, validAssistants))
	}
	if c.AssistantBackend == AssistantOllama {
		if u, err := url.Parse(c.OllamaURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid Ollama URL '%s': must be an http(s) URL", c.OllamaURL))
		}
		if c.OllamaModel == "" {
			errors = append(errors, "Ollama model cannot be empty when using ollama assistant")
		}
	}
	if c.AssistantBackend == AssistantGemini && c.GeminiModel == "" {
		errors = append(errors, "Gemini model cannot be empty when using gemini assistant")
	}
	if c.AssistantTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid assistant timeout %v: must be at least 1 second", c.AssistantTimeout))
	}
	if c.AssistantMaxTurns < 1 {
		errors = append(errors, fmt.Sprintf("invalid assistant max turns %d: must be at least 1", c.AssistantMaxTurns))
	}
	if c.ContextMaxRecords < 1 {
		errors = append(errors, fmt.Sprintf("invalid context max records %d: must be at least 1", c.ContextMaxRecords))
	}

	if c.StatementHeaderRow < 0 {
		errors = append(errors, fmt.Sprintf("invalid statement header row %d: must not be negative", c.StatementHeaderRow))
	}

	// Google Sheets credentials file must exist when given
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// SheetsConfigured reports whether a Google Sheets statement source can be built.
func (c *Config) SheetsConfigured() bool {
	return c.GoogleSpreadsheetID != "" && (c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "")
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
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
