package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var Module = fx.Provide(NewConfig)

type (
	Config struct {
		Env        string        `mapstructure:"ENV"`
		Host       string        `mapstructure:"HOST"`
		Port       string        `mapstructure:"PORT"`
		GRPCPort   string        `mapstructure:"GRPC_PORT"`
		DBDriver   string        `mapstructure:"DB_DRIVER"`
		DBPath     string        `mapstructure:"DB_PATH"`
		DBHost     string        `mapstructure:"DB_HOST"`
		DBPort     string        `mapstructure:"DB_PORT"`
		DBUser     string        `mapstructure:"DB_USER"`
		DBPassword string        `mapstructure:"DB_PASSWORD"`
		DBName     string        `mapstructure:"DB_NAME"`
		DBSSLMode  string        `mapstructure:"DB_SSL_MODE"`
		JWTSecret  string        `mapstructure:"JWT_SECRET"`
		TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`
		BcryptCost int           `mapstructure:"BCRYPT_COST"`
	}
)

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RECIPES")

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "1323")
	v.SetDefault("GRPC_PORT", "9000")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_PATH", "recipes.db")
	v.SetDefault("DB_HOST", "0.0.0.0")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "db")
	v.SetDefault("DB_SSL_MODE", sslModeDisable)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", 21*24*time.Hour)
	v.SetDefault("BCRYPT_COST", 12)

	envs := []string{
		"ENV", "HOST", "PORT", "GRPC_PORT",
		"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"JWT_SECRET", "TOKEN_TTL", "BCRYPT_COST",
	}
	for _, key := range envs {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func (c *Config) HTTPListen() string {
	return c.Host + ":" + c.Port
}

func (c *Config) GRPCListen() string {
	return c.Host + ":" + c.GRPCPort
}

func validate(cfg *Config) error {
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return errors.New(fmt.Sprintf("env is invalid: %s", cfg.Env))
	}
	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		return errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver))
	}
	if cfg.DBSSLMode != sslModeDisable && cfg.DBSSLMode != sslModeRequire {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT secret is required")
	}
	if cfg.TokenTTL <= 0 {
		return errors.New(fmt.Sprintf("token TTL must be positive: %s", cfg.TokenTTL))
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return errors.New(fmt.Sprintf("bcrypt cost is out of range: %d", cfg.BcryptCost))
	}
	return nil
}
