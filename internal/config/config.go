package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const DefaultAddr = "0.0.0.0:8000"

// Config is the process-level configuration. API_KEY and OTHER_VALUE are not
// part of it: they are looked up per invocation.
type Config struct {
	Addr     string `validate:"required,hostname_port"`
	AppEnv   string `validate:"omitempty,oneof=development production"`
	// LogLevel is parsed by the logger, which falls back to info.
	LogLevel string
}

var validate = validator.New()

// Load reads the optional dotenv files, then the environment. Variables
// already set in the process take precedence over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := Config{
		Addr:     os.Getenv("ENVECHO_ADDR"),
		AppEnv:   os.Getenv("APP_ENV"),
		LogLevel: os.Getenv("LOG_LEVEL"),
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
