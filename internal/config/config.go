package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ConfigPathEnv names the variable holding the optional TOML file path.
const ConfigPathEnv = "DAYRISE_CONFIG"

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Auth     AuthConfig     `toml:"auth"`
	Stats    StatsConfig    `toml:"stats"`
}

type ServerConfig struct {
	Port            string   `toml:"port"`
	DefaultTimezone string   `toml:"default_timezone"`
	RateLimit       int      `toml:"rate_limit"`
	RateWindow      Duration `toml:"rate_window"`
}

type DatabaseConfig struct {
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
}

type RedisConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type AuthConfig struct {
	JWTSecret string   `toml:"jwt_secret"`
	JWTIssuer string   `toml:"jwt_issuer"`
	TokenTTL  Duration `toml:"token_ttl"`
}

type StatsConfig struct {
	LookbackDays int      `toml:"lookback_days"`
	MaxWalk      int      `toml:"max_walk"`
	CacheTTL     Duration `toml:"cache_ttl"`
}

// Duration reads Go duration strings such as "30m" from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			DefaultTimezone: "UTC",
			RateLimit:       100,
			RateWindow:      Duration{time.Minute},
		},
		Database: DatabaseConfig{
			Host: "localhost",
			Port: "5432",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Auth: AuthConfig{
			JWTIssuer: "dayrise-engine",
			TokenTTL:  Duration{24 * time.Hour},
		},
		Stats: StatsConfig{
			LookbackDays: 60,
			MaxWalk:      60,
			CacheTTL:     Duration{10 * time.Minute},
		},
	}
}

// Load reads .env into the process environment, then layers the TOML file
// named by DAYRISE_CONFIG and the environment over the defaults.
func Load() (*LoadResult, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return LoadFrom(os.Getenv(ConfigPathEnv), os.LookupEnv)
}

// LoadFrom builds the config from an optional TOML file and an environment
// lookup. A missing file is not an error; unknown keys become warnings.
func LoadFrom(path string, lookup func(string) (string, bool)) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}

	if path != "" {
		md, err := toml.DecodeFile(path, &result.Config)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result.Warnings = append(result.Warnings, fmt.Sprintf("config file %s not found, using defaults", path))
		case err != nil:
			return nil, fmt.Errorf("parsing config file: %w", err)
		default:
			for _, key := range md.Undecoded() {
				result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key.String()))
			}
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&result.Config, lookup); err != nil {
		return nil, err
	}

	if err := validate(&result.Config); err != nil {
		return nil, err
	}

	return result, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: not an integer: %q", key, v))
			return
		}
		*dst = n
	}
	dur := func(key string, dst *Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: not a duration: %q", key, v))
			return
		}
		dst.Duration = d
	}

	str("PORT", &cfg.Server.Port)
	str("DEFAULT_TIMEZONE", &cfg.Server.DefaultTimezone)
	num("RATE_LIMIT", &cfg.Server.RateLimit)
	dur("RATE_WINDOW", &cfg.Server.RateWindow)

	str("DB_USER", &cfg.Database.User)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_NAME", &cfg.Database.Name)
	str("DB_HOST", &cfg.Database.Host)
	str("DB_PORT", &cfg.Database.Port)

	str("REDIS_HOST", &cfg.Redis.Host)
	str("REDIS_PORT", &cfg.Redis.Port)
	str("REDIS_PASSWORD", &cfg.Redis.Password)

	str("JWT_SECRET", &cfg.Auth.JWTSecret)
	str("JWT_ISSUER", &cfg.Auth.JWTIssuer)
	dur("TOKEN_TTL", &cfg.Auth.TokenTTL)

	num("STATS_LOOKBACK_DAYS", &cfg.Stats.LookbackDays)
	num("STREAK_MAX_WALK", &cfg.Stats.MaxWalk)
	dur("STATS_CACHE_TTL", &cfg.Stats.CacheTTL)

	return errors.Join(errs...)
}

func validate(cfg *Config) error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("server port must be 1-65535, got %q", cfg.Server.Port))
	}
	if _, err := time.LoadLocation(cfg.Server.DefaultTimezone); err != nil {
		errs = append(errs, fmt.Sprintf("default_timezone must be an IANA name, got %q", cfg.Server.DefaultTimezone))
	}
	if cfg.Server.RateLimit < 1 {
		errs = append(errs, fmt.Sprintf("rate_limit must be positive, got %d", cfg.Server.RateLimit))
	}
	if cfg.Server.RateWindow.Duration <= 0 {
		errs = append(errs, fmt.Sprintf("rate_window must be positive, got %s", cfg.Server.RateWindow))
	}
	if cfg.Auth.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}
	if cfg.Auth.TokenTTL.Duration <= 0 {
		errs = append(errs, fmt.Sprintf("token_ttl must be positive, got %s", cfg.Auth.TokenTTL))
	}
	if cfg.Stats.LookbackDays < 28 {
		errs = append(errs, fmt.Sprintf("lookback_days must cover the 28-day series, got %d", cfg.Stats.LookbackDays))
	}
	if cfg.Stats.MaxWalk < 1 {
		errs = append(errs, fmt.Sprintf("max_walk must be positive, got %d", cfg.Stats.MaxWalk))
	}
	if cfg.Stats.CacheTTL.Duration <= 0 {
		errs = append(errs, fmt.Sprintf("cache_ttl must be positive, got %s", cfg.Stats.CacheTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// DSN returns the postgres connection URL.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}
