// Package config loads runtime configuration from the environment. A .env
// file in the working directory is folded in when present (it never
// overrides variables already set in the process environment), then typed
// accessors with defaults produce the Config consumed by the commands.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"npileads/internal/store"
)

// Store kinds accepted in Config.Store.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config carries every setting the importer and the API server need.
type Config struct {
	// Store selects the backend: "postgres" or "sqlite".
	Store string

	// DatabaseURL is the DSN for the selected backend.
	DatabaseURL string

	// ListenAddr is the API server bind address.
	ListenAddr string

	// APIKey protects the /api/v1/leads endpoints (X-API-Key header).
	// Empty means the server refuses protected requests with a 500, making
	// the misconfiguration loud instead of leaving the API open.
	APIKey string

	// AbstractEmailAPIKey authorizes the email deliverability lookups.
	AbstractEmailAPIKey string

	// CSVPath is the default NPPES extract location for the importer.
	CSVPath string

	// State is the jurisdiction the import pass filters to.
	State string

	// ChunkSize bounds the per-transaction batch of the inserter.
	ChunkSize int

	// PushgatewayURL, when set, enables metrics pushes after import runs.
	PushgatewayURL string
}

// Load reads .env (when present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return Config{
		Store:               getenv("STORE", StorePostgres),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		ListenAddr:          getenv("LISTEN_ADDR", ":8080"),
		APIKey:              os.Getenv("API_KEY"),
		AbstractEmailAPIKey: os.Getenv("ABSTRACT_EMAIL_API_KEY"),
		CSVPath:             getenv("NPPES_CSV_PATH", "data/npi_raw.csv"),
		State:               getenv("LEAD_STATE", ""),
		ChunkSize:           getint("CHUNK_SIZE", store.DefaultChunkSize),
		PushgatewayURL:      os.Getenv("PUSHGATEWAY_URL"),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer; using %d", key, v, def)
		return def
	}
	return n
}

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks startup.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not
	// block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can travel as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static checks over a Config and returns every finding.
// Callers decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	switch c.Store {
	case StorePostgres, StoreSQLite:
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "STORE",
			Message:  fmt.Sprintf("unknown store kind %q (want postgres or sqlite)", c.Store),
		})
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "DATABASE_URL",
			Message:  "must not be empty",
		})
	}
	if c.ChunkSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "CHUNK_SIZE",
			Message:  fmt.Sprintf("non-positive value falls back to the default %d", store.DefaultChunkSize),
		})
	}
	if c.APIKey == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "API_KEY",
			Message:  "not set; protected endpoints will answer 500 until configured",
		})
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
