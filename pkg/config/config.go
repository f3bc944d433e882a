// Package config resolves tradelog settings from .tradelog.yaml, TRADELOG_*
// environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "TRADELOG"
	ConfigPathEnv  = "TRADELOG_CONFIG_PATH"
	configName     = ".tradelog" // .yaml is implicit
	DefaultServer  = "http://localhost:8686"
	DefaultListen  = ":8686"
	DefaultPath    = "~/.tradelog.db"
	DefaultTimeout = 15 * time.Second
)

// Config holds every setting the commands read.
type Config struct {
	// Server is the journal server the client talks to.
	Server string `json:"server"`
	// Listen is the address `tradelog serve` binds.
	Listen string `json:"listen"`
	// Path is the journal server's data directory.
	Path    string        `json:"path"`
	Timeout time.Duration `json:"timeout"`
	Log     LogConfig     `json:"log"`
}

type LogConfig struct {
	Level    string `json:"level"`
	Encoding string `json:"encoding"`
	Output   string `json:"output"`
}

// BasePath returns the expanded data directory.
func (c *Config) BasePath() string {
	path, err := homedir.Expand(c.Path)
	if err != nil {
		return c.Path
	}
	return path
}

// Load reads the configuration. A missing config file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("server", DefaultServer)
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("path", DefaultPath)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.output", "stderr")

	v.SetConfigName(configName)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv(ConfigPathEnv); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	cfg := &Config{
		Server:  strings.TrimRight(v.GetString("server"), "/"),
		Listen:  v.GetString("listen"),
		Path:    v.GetString("path"),
		Timeout: v.GetDuration("timeout"),
		Log: LogConfig{
			Level:    v.GetString("log.level"),
			Encoding: v.GetString("log.encoding"),
			Output:   v.GetString("log.output"),
		},
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("config: timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.Path != "" && !strings.HasPrefix(cfg.Path, "~") {
		cfg.Path = filepath.Clean(cfg.Path)
	}
	return cfg, nil
}
