package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cbodonnell/tabletop/pkg/game/constants"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to the upper-cased flag name to form its environment variable
const EnvPrefix = "TABLETOP_"

// Config holds the server settings. Flags take precedence over the
// environment, which takes precedence over the defaults.
type Config struct {
	Port        int
	LogLevel    string
	DatabaseURL string
	Ruleset     string
	MaxTurns    int
	AllowOrigin string

	ActorIdleTimeout  time.Duration
	EvictionInterval  time.Duration
	BroadcastInterval time.Duration
	EventQueueSize    int
	PersistTimeout    time.Duration

	FirebaseProjectID       string
	FirebaseAPIKey          string
	FirebaseCredentialsFile string

	TLSCertFile string
	TLSKeyFile  string
}

// AuthEnabled reports whether requests must carry a Firebase ID token
func (c *Config) AuthEnabled() bool {
	return c.FirebaseProjectID != ""
}

// TLSEnabled reports whether the API is served over TLS
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Load parses args (without the program name). A .env file in the working
// directory is read first when present.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %v", err)
	}

	cfg := &Config{}
	flags := flag.NewFlagSet("tabletop", flag.ContinueOnError)
	flags.IntVar(&cfg.Port, "port", 8080, "port to listen on")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "log level")
	flags.StringVar(&cfg.DatabaseURL, "database-url", "memory://", "game state store: memory://, sqlite://file.db, postgresql://... or redis://host:port/db")
	flags.StringVar(&cfg.Ruleset, "ruleset", "turn-limit", "game rules: turn-limit or last-standing")
	flags.IntVar(&cfg.MaxTurns, "max-turns", constants.DefaultMaxTurns, "rounds played before a turn-limit game ends")
	flags.StringVar(&cfg.AllowOrigin, "allow-origin", "*", "allowed CORS and websocket origin")
	flags.DurationVar(&cfg.ActorIdleTimeout, "actor-idle-timeout", constants.DefaultActorIdleTimeout, "unload games unused for this long")
	flags.DurationVar(&cfg.EvictionInterval, "eviction-interval", time.Minute, "how often idle games are unloaded")
	flags.DurationVar(&cfg.BroadcastInterval, "broadcast-interval", 100*time.Millisecond, "how often state changes are pushed to subscribers")
	flags.IntVar(&cfg.EventQueueSize, "event-queue-size", 10000, "pending state changes kept for broadcasting")
	flags.DurationVar(&cfg.PersistTimeout, "persist-timeout", 5*time.Second, "maximum time a single write may take")
	flags.StringVar(&cfg.FirebaseProjectID, "firebase-project-id", "", "enables token verification when set")
	flags.StringVar(&cfg.FirebaseAPIKey, "firebase-api-key", "", "Firebase API key")
	flags.StringVar(&cfg.FirebaseCredentialsFile, "firebase-credentials-file", "", "Firebase service account file")
	flags.StringVar(&cfg.TLSCertFile, "tls-cert-file", "", "TLS certificate")
	flags.StringVar(&cfg.TLSKeyFile, "tls-key-file", "", "TLS key")

	if err := applyEnv(flags); err != nil {
		return nil, err
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv sets every flag that has a matching environment variable, so that
// explicit flags parsed afterwards still win.
func applyEnv(flags *flag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *flag.Flag) {
		if err != nil {
			return
		}
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		value, ok := os.LookupEnv(name)
		if !ok {
			return
		}
		if setErr := f.Value.Set(value); setErr != nil {
			err = fmt.Errorf("invalid value %q for %s: %v", value, name, setErr)
		}
	})
	return err
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max-turns must be positive")
	}
	if c.ActorIdleTimeout <= 0 || c.EvictionInterval <= 0 || c.BroadcastInterval <= 0 || c.PersistTimeout <= 0 {
		return fmt.Errorf("timeouts and intervals must be positive")
	}
	if c.EventQueueSize <= 0 {
		return fmt.Errorf("event-queue-size must be positive")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("tls-cert-file and tls-key-file must be set together")
	}
	return nil
}
