// Package config reads leadchat settings from LEADCHAT_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Prefix is prepended to every key.
const Prefix = "LEADCHAT_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds every runtime setting of the CLI hosts.
type Config struct {
	Addr     string
	Flow     string
	LogLevel string

	RelayURL       string
	RelayAccessKey string
	RelayTimeout   time.Duration
	RelayAttempts  int
	ContactEmail   string
	DeliverConfig  string

	Store         string
	SessionDir    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	// StoreKey enables at-rest encryption of conversations (base64, 32 bytes).
	StoreKey          string
	StoreFallbackKeys string

	CORSOrigin string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:          ":8080",
		LogLevel:      "info",
		RelayTimeout:  15 * time.Second,
		RelayAttempts: 2,
		Store:         StoreMemory,
		RedisAddr:     "localhost:6379",
		SessionTTL:    24 * time.Hour,
		CORSOrigin:    "*",
	}
}

// KeyError reports a value that could not be parsed.
type KeyError struct {
	Key   string
	Value string
	Err   error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("config %s%s=%q: %v", Prefix, e.Key, e.Value, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromMap reads the configuration from env, keyed without the prefix
// or with it.
func FromMap(env map[string]string) (Config, error) {
	return FromLookup(func(key string) (string, bool) {
		if v, ok := env[key]; ok {
			return v, true
		}
		v, ok := env[strings.TrimPrefix(key, Prefix)]
		return v, ok
	})
}

// FromLookup reads the configuration through lookup, which receives
// fully prefixed keys.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.str("ADDR", &cfg.Addr)
	p.str("FLOW", &cfg.Flow)
	p.str("LOG_LEVEL", &cfg.LogLevel)
	p.str("RELAY_URL", &cfg.RelayURL)
	p.str("RELAY_ACCESS_KEY", &cfg.RelayAccessKey)
	p.duration("RELAY_TIMEOUT", &cfg.RelayTimeout)
	p.int("RELAY_ATTEMPTS", &cfg.RelayAttempts)
	p.str("CONTACT_EMAIL", &cfg.ContactEmail)
	p.str("DELIVER_CONFIG", &cfg.DeliverConfig)
	p.str("STORE", &cfg.Store)
	p.str("SESSION_DIR", &cfg.SessionDir)
	p.str("REDIS_ADDR", &cfg.RedisAddr)
	p.str("REDIS_PASSWORD", &cfg.RedisPassword)
	p.int("REDIS_DB", &cfg.RedisDB)
	p.duration("SESSION_TTL", &cfg.SessionTTL)
	p.str("STORE_KEY", &cfg.StoreKey)
	p.str("STORE_FALLBACK_KEYS", &cfg.StoreFallbackKeys)
	p.str("CORS_ORIGIN", &cfg.CORSOrigin)

	if len(p.errs) > 0 {
		return cfg, errors.Join(p.errs...)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that parse but make no sense.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, &KeyError{Key: "STORE", Value: c.Store, Err: errors.New("want memory, file or redis")})
	}
	if c.RelayTimeout <= 0 {
		errs = append(errs, &KeyError{Key: "RELAY_TIMEOUT", Value: c.RelayTimeout.String(), Err: errors.New("must be positive")})
	}
	if c.RelayAttempts < 1 {
		errs = append(errs, &KeyError{Key: "RELAY_ATTEMPTS", Value: strconv.Itoa(c.RelayAttempts), Err: errors.New("must be at least 1")})
	}
	if c.RedisDB < 0 {
		errs = append(errs, &KeyError{Key: "REDIS_DB", Value: strconv.Itoa(c.RedisDB), Err: errors.New("must not be negative")})
	}
	return errors.Join(errs...)
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) get(key string) (string, bool) {
	v, ok := p.lookup(Prefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) int(key string, dst *int) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, &KeyError{Key: key, Value: v, Err: errors.New("not an integer")})
		return
	}
	*dst = n
}

func (p *parser) duration(key string, dst *time.Duration) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, &KeyError{Key: key, Value: v, Err: err})
		return
	}
	*dst = d
}
