package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/tdhoang/evdealer-client/constant"
)

type Config struct {
	Environment    string
	BaseURL        string
	Role           constant.Role
	AgencyID       uint64
	RequestTimeout time.Duration
	TokenFile      string
}

// Load reads configuration from a .env file (when present) and the
// environment. Missing values fall back to development defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment:    getenv("APP_ENV", "development"),
		BaseURL:        getenv("EVDEALER_BASE_URL", "http://localhost:8080"),
		Role:           constant.Role(getenv("EVDEALER_ROLE", string(constant.RoleStaff))),
		AgencyID:       getenvUint("EVDEALER_AGENCY_ID", 0),
		RequestTimeout: getenvDuration("EVDEALER_TIMEOUT", 10*time.Second),
		TokenFile:      getenv("EVDEALER_TOKEN_FILE", defaultTokenFile()),
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evdealer-session.json"
	}
	return home + "/.evdealer-session.json"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvUint(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
