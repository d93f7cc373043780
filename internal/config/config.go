package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all runtime configuration values. It is loaded once at
// process start and passed by value to the components that need it; no
// package reads the environment on its own after that.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"prod"`      // application environment (dev, test, prod)
	Port        string `env:"APP_PORT" envDefault:"8000"`     // HTTP port to listen on
	ProjectName string `env:"PROJECT_NAME" envDefault:"auth"` // shown in logs
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`    // DEBUG, INFO, WARN, ERROR
	LogMode     string `env:"LOG_MODE"`                       // "dev" switches to human readable logs
	RabbitMQURL string `env:"RABBITMQ_URL"`                   // empty disables auth events

	// allowed CORS origins, comma separated
	CORSOrigins []string `env:"BACKEND_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost,http://localhost:3000,http://localhost:8000,http://localhost:8080,http://127.0.0.1:3000,http://127.0.0.1:8000,http://127.0.0.1:8080"`

	DB  DBConfig
	JWT JWTConfig

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"` // bcrypt cost for password hashing
}

// DBConfig describes the MySQL connection and pool.
type DBConfig struct {
	User        string        `env:"DB_USER,required"`
	Pass        string        `env:"DB_PASS"` // empty allowed
	Host        string        `env:"DB_HOST,required"`
	Port        string        `env:"DB_PORT" envDefault:"3306"`
	Name        string        `env:"DB_NAME,required"`
	PoolSize    int           `env:"DB_POOL_SIZE" envDefault:"10"`
	PoolRecycle time.Duration `env:"DB_POOL_RECYCLE" envDefault:"1500s"`
	Migrate     bool          `env:"DB_MIGRATE" envDefault:"true"`
	// InMemory skips MySQL entirely; only honoured when APP_ENV=dev.
	InMemory bool `env:"DB_IN_MEMORY" envDefault:"false"`
}

// JWTConfig configures token signing. TTLs are durations ("15m", "168h").
type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET,required"`
	Algorithm  string        `env:"JWT_ALGORITHM" envDefault:"HS256"`
	AccessTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv fills target from environment variables using its struct tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings the token and password components cannot use.
func (c Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	switch strings.ToUpper(c.JWT.Algorithm) {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not an HMAC algorithm", c.JWT.Algorithm))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_TTL must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within %d..%d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	return errors.Join(errs...)
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool { return strings.EqualFold(c.Env, "dev") }
