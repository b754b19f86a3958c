package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the service options read from the environment
type Config struct {
	Addr         string        `env:"BOARD_ADDR"           envDefault:":3000"`
	DBDriver     string        `env:"BOARD_DB_DRIVER"      envDefault:"sqlite"`
	DBDSN        string        `env:"BOARD_DB_DSN"         envDefault:"file:board.db?cache=shared"`
	JWTSecret    string        `env:"BOARD_JWT_SECRET"`
	JWTExpiresIn string        `env:"BOARD_JWT_EXPIRES_IN" envDefault:"1d"`
	JWTIssuer    string        `env:"BOARD_JWT_ISSUER"`
	JWTAudience  []string      `env:"BOARD_JWT_AUDIENCE"   envSeparator:","`
	BcryptCost   int           `env:"BOARD_BCRYPT_COST"    envDefault:"10"`
	StoreTimeout time.Duration `env:"BOARD_STORE_TIMEOUT"  envDefault:"5s"`
	Migrate      bool          `env:"BOARD_MIGRATE"        envDefault:"true"`
	LogLevel     string        `env:"BOARD_LOG_LEVEL"      envDefault:"info"`
	LogFormat    string        `env:"BOARD_LOG_FORMAT"     envDefault:"json"`

	tokenExpiration time.Duration
}

// Load reads the configuration from the process environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg.finalize()
}

// LoadFrom reads the configuration from the given variables only
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg.finalize()
}

func (c *Config) finalize() (*Config, error) {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))

	expiration, err := ParseExpiration(c.JWTExpiresIn)
	if err != nil {
		return nil, err
	}
	c.tokenExpiration = expiration

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate will run validation rules
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DBDriver, validation.Required, validation.In("sqlite", "postgres")),
		validation.Field(&c.DBDSN, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
		validation.Field(&c.StoreTimeout, validation.Min(time.Duration(0))),
	)
}

// ParseExpiration parses a Go duration and also accepts a whole number of
// days such as "1d" or "7d".
func ParseExpiration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("token expiration must not be empty")
	}

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid token expiration %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid token expiration %q: %w", value, err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("token expiration %q is too short", value)
	}
	return d, nil
}

func (c *Config) GetSigningKey() string {
	return c.JWTSecret
}

func (c *Config) GetTokenExpiration() time.Duration {
	return c.tokenExpiration
}

func (c *Config) GetIssuer() string {
	return c.JWTIssuer
}

func (c *Config) GetAudience() []string {
	return c.JWTAudience
}
