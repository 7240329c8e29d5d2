package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	MaxPartySize   int
	CodeLength     int
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
	DatabaseURL    string
	OutboxLimit    int
}

const (
	defaultPort        = "3000"
	defaultMaxParty    = 4
	defaultCodeLength  = 4
	defaultOutboxLimit = 512
)

// Load reads an optional .env file and then the process environment.
// A missing .env is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(os.Getenv), nil
}

// FromEnv builds a Config from getenv, falling back to defaults for
// missing or unusable values.
func FromEnv(getenv func(string) string) Config {
	return Config{
		Port:           stringOr(getenv("PORT"), defaultPort),
		MaxPartySize:   positiveInt(getenv("PARTY_MAX_SIZE"), defaultMaxParty),
		CodeLength:     positiveInt(getenv("PARTY_CODE_LENGTH"), defaultCodeLength),
		AllowedOrigins: origins(getenv("CORS_ORIGIN")),
		LogLevel:       stringOr(getenv("LOG_LEVEL"), "info"),
		LogFormat:      stringOr(getenv("LOG_FORMAT"), "json"),
		DatabaseURL:    strings.TrimSpace(getenv("DATABASE_URL")),
		OutboxLimit:    positiveInt(getenv("OUTBOX_LIMIT"), defaultOutboxLimit),
	}
}

func (c Config) Addr() string { return ":" + c.Port }

func stringOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}

func positiveInt(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func origins(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
