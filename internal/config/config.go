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
	"gopkg.in/yaml.v3"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/signup"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the full server configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Storage      StorageConfig      `yaml:"storage"`
	Gate         GateConfig         `yaml:"gate"`
	Captcha      CaptchaConfig      `yaml:"captcha"`
	Registration RegistrationConfig `yaml:"registration"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig selects the user store
type StorageConfig struct {
	Type        string `yaml:"type"`
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`
}

// GateConfig tunes the verification gate
type GateConfig struct {
	Strategy      string        `yaml:"strategy"`
	Delay         time.Duration `yaml:"delay"`
	MismatchDelay time.Duration `yaml:"mismatch_delay"`
	Pairs         int           `yaml:"pairs"`
	Symbols       []string      `yaml:"symbols"`
	MaxMisses     int           `yaml:"max_misses"`
	ChallengeTTL  time.Duration `yaml:"challenge_ttl"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SubmitTimeout time.Duration `yaml:"submit_timeout"`
}

// CaptchaConfig configures the external token widget and server-side checks.
// Tokens are verified only when Secret is set.
type CaptchaConfig struct {
	SiteKey   string `yaml:"site_key"`
	Secret    string `yaml:"secret"`
	VerifyURL string `yaml:"verify_url"`
}

// RegistrationConfig points the gate at a remote backend. Empty URL means the
// in-process backend is used.
type RegistrationConfig struct {
	URL string `yaml:"url"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	gate := signup.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // SSE streams stay open
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log:     LogConfig{Level: "info"},
		Storage: StorageConfig{Type: StorageMemory},
		Gate: GateConfig{
			Strategy:      string(gate.Strategy),
			Delay:         gate.VerifyDelay,
			MismatchDelay: gate.MismatchDelay,
			Pairs:         gate.Pairs,
			ChallengeTTL:  gate.ChallengeTTL,
			SessionTTL:    gate.SessionTTL,
			SweepInterval: time.Minute,
			SubmitTimeout: gate.SubmitTimeout,
		},
	}
}

// LoadDotEnv loads a .env file into the environment if one exists.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load builds the configuration from defaults, the optional YAML file at
// path, then environment variables
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	integer("PORT", &c.Server.Port)
	str("LOG_LEVEL", &c.Log.Level)
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	str("STORAGE_TYPE", &c.Storage.Type)
	str("REDIS_URL", &c.Storage.RedisURL)
	str("DATABASE_URL", &c.Storage.DatabaseURL)
	if _, set := lookup("STORAGE_TYPE"); !set && c.Storage.Type == StorageMemory && c.Storage.DatabaseURL != "" {
		c.Storage.Type = StoragePostgres
	}

	str("GATE_STRATEGY", &c.Gate.Strategy)
	duration("GATE_DELAY", &c.Gate.Delay)
	duration("GATE_MISMATCH_DELAY", &c.Gate.MismatchDelay)
	integer("GATE_PAIRS", &c.Gate.Pairs)
	if v, ok := lookup("GATE_SYMBOLS"); ok && v != "" {
		c.Gate.Symbols = splitList(v)
	}
	integer("GATE_MAX_MISSES", &c.Gate.MaxMisses)
	duration("GATE_CHALLENGE_TTL", &c.Gate.ChallengeTTL)
	duration("GATE_SESSION_TTL", &c.Gate.SessionTTL)
	duration("GATE_SWEEP_INTERVAL", &c.Gate.SweepInterval)

	str("CAPTCHA_SITE_KEY", &c.Captcha.SiteKey)
	str("CAPTCHA_SECRET", &c.Captcha.Secret)
	str("CAPTCHA_VERIFY_URL", &c.Captcha.VerifyURL)

	str("REGISTRATION_URL", &c.Registration.URL)

	return errors.Join(errs...)
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_url is required for redis storage"))
		}
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("storage.database_url is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}
	if !model.ChallengeKind(c.Gate.Strategy).Valid() {
		errs = append(errs, fmt.Errorf("unknown gate strategy %q", c.Gate.Strategy))
	}
	if c.Gate.Delay < 0 || c.Gate.MismatchDelay < 0 || c.Gate.ChallengeTTL < 0 || c.Gate.SessionTTL < 0 {
		errs = append(errs, errors.New("gate durations must not be negative"))
	}
	if model.ChallengeKind(c.Gate.Strategy) == model.ChallengeDelay &&
		c.Gate.ChallengeTTL > 0 && c.Gate.ChallengeTTL <= c.Gate.Delay {
		errs = append(errs, fmt.Errorf("gate.challenge_ttl %s must be longer than gate.delay %s", c.Gate.ChallengeTTL, c.Gate.Delay))
	}
	if c.Gate.SweepInterval <= 0 {
		errs = append(errs, errors.New("gate.sweep_interval must be positive"))
	}

	return errors.Join(errs...)
}

// SignupConfig converts the gate section to the signup package's config
func (c Config) SignupConfig() signup.Config {
	return signup.Config{
		Strategy:      model.ChallengeKind(c.Gate.Strategy),
		VerifyDelay:   c.Gate.Delay,
		MismatchDelay: c.Gate.MismatchDelay,
		Pairs:         c.Gate.Pairs,
		Symbols:       c.Gate.Symbols,
		MaxMisses:     c.Gate.MaxMisses,
		SiteKey:       c.Captcha.SiteKey,
		ChallengeTTL:  c.Gate.ChallengeTTL,
		SessionTTL:    c.Gate.SessionTTL,
		SubmitTimeout: c.Gate.SubmitTimeout,
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
