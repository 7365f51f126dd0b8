// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"
)

// Authentication modes.
const (
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

// Config holds all runtime settings for the server.
type Config struct {
	Port string `mapstructure:"port"`

	// CORSOrigins lists allowed browser origins. Empty allows any origin.
	CORSOrigins []string `mapstructure:"cors_origins"`

	Store struct {
		Backend string `mapstructure:"backend"`
	} `mapstructure:"store"`

	Auth struct {
		Mode      string `mapstructure:"mode"`
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`

	Firebase struct {
		ProjectID   string `mapstructure:"project_id"`
		Credentials string `mapstructure:"credentials"`
	} `mapstructure:"firebase"`

	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`

	GitHub struct {
		ClientID     string        `mapstructure:"client_id"`
		ClientSecret string        `mapstructure:"client_secret"`
		Token        string        `mapstructure:"token"`
		BaseURL      string        `mapstructure:"base_url"`
		Timeout      time.Duration `mapstructure:"timeout"`
	} `mapstructure:"github"`
}

var envBindings = map[string]string{
	"port":                 "PORT",
	"cors_origins":         "CORS_ORIGINS",
	"store.backend":        "STORE_BACKEND",
	"auth.mode":            "AUTH_MODE",
	"auth.jwt_secret":      "JWT_SECRET",
	"firebase.project_id":  "FIREBASE_PROJECT_ID",
	"firebase.credentials": "GOOGLE_APPLICATION_CREDENTIALS",
	"mongo.uri":            "MONGO_URI",
	"mongo.database":       "MONGO_DATABASE",
	"github.client_id":     "GITHUB_CLIENT_ID",
	"github.client_secret": "GITHUB_CLIENT_SECRET",
	"github.token":         "GITHUB_TOKEN",
	"github.base_url":      "GITHUB_BASE_URL",
	"github.timeout":       "GITHUB_TIMEOUT",
}

// Load reads an optional .env file, then environment variables, and returns a
// validated Config. A missing .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("store.backend", StoreFirestore)
	v.SetDefault("auth.mode", AuthFirebase)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "devconnector")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.timeout", 10*time.Second)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Auth.Mode = strings.ToLower(strings.TrimSpace(cfg.Auth.Mode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration combinations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case StoreFirestore, StoreMemory:
	case StoreMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo backend"))
		}
		if c.Mongo.Database == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required for the mongo backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	switch c.Auth.Mode {
	case AuthFirebase:
	case AuthJWT:
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_MODE=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode))
	}

	if c.GitHub.Timeout < 0 {
		errs = append(errs, errors.New("GITHUB_TIMEOUT must not be negative"))
	}

	return errors.Join(errs...)
}

// NeedsFirebase reports whether the Firebase app must be initialized.
func (c *Config) NeedsFirebase() bool {
	return c.Store.Backend == StoreFirestore || c.Auth.Mode == AuthFirebase
}

