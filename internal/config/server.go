package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// ServerConfig holds the API process settings, read from the environment.
type ServerConfig struct {
	Port       string        `env:"API_PORT" envDefault:"8080"`
	Env        string        `env:"API_ENV" envDefault:"development"`
	StaticDir  string        `env:"STATIC_DIR" envDefault:""`
	RunTTL     time.Duration `env:"RUN_TTL" envDefault:"1h"`
	LogFile    string        `env:"LOG_FILE" envDefault:""`
	DataDir    string        `env:"DATA_DIR" envDefault:""`
	ConfigFile string        `env:"FESTIVE_CONFIG" envDefault:""`
}

func (s ServerConfig) Production() bool { return s.Env == "production" }

// LoadServer reads .env files (when present) into the process environment and
// parses ServerConfig from it. Variables already set win over the files.
func LoadServer(envFiles ...string) (ServerConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}
