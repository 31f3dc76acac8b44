package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"
)

// Config represents the proxy configuration.
type Config struct {
	Server  ServerConfig
	CORS    CORSConfig
	Backend BackendConfig
}

// ServerConfig contains raw TCP listener settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"SERVER_PORT" envDefault:"8082"`
}

// CORSConfig contains the permissive CORS policy attached to every response.
type CORSConfig struct {
	AllowedOrigin  string   `env:"CORS_ALLOWED_ORIGIN"                   envDefault:"*"`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization,X-Api-Key,Anthropic-Version"`
}

// BackendConfig contains backend invocation settings. Executable, ConfigDir
// and ModelOverride are only startup defaults: the live values come from the
// Settings store, which the watcher may refresh between requests.
type BackendConfig struct {
	Name             string `env:"BACKEND_NAME"           envDefault:"claude-cli"`
	Executable       string `env:"BACKEND_EXECUTABLE"     envDefault:"claude"`
	ConfigDir        string `env:"BACKEND_CONFIG_DIR"`
	ModelOverride    string `env:"BACKEND_MODEL_OVERRIDE"`
	TimeoutSeconds   int    `env:"BACKEND_TIMEOUT"        envDefault:"300"`
	StopGraceSeconds int    `env:"BACKEND_STOP_GRACE"     envDefault:"5"`
	SettingsPath     string `env:"BACKEND_SETTINGS_FILE"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*BackendConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Backend,
	}
}
