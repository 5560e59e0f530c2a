// Package config loads user preferences from ~/.scaff/config.yaml and
// SCAFF_* environment variables. Environment wins over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	dirName   = ".scaff"
	fileName  = "config"
	fileType  = "yaml"
	envPrefix = "SCAFF"
)

// Config is the user configuration.
type Config struct {
	Authors     string
	ProjectName string
	LogLevel    string
	LogFormat   string
	// Variables seed every run's execution context.
	Variables map[string]string
}

// Dir returns the scaff config directory (~/.scaff/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// FilePath returns the default config file path.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Load reads path, or the default config file when path is empty. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FilePath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	return &Config{
		Authors:     v.GetString("authors"),
		ProjectName: v.GetString("project_name"),
		LogLevel:    v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		Variables:   v.GetStringMapString("variables"),
	}, nil
}

// DefaultVariables returns the variables a run starts with. Explicit
// authors and project_name settings override entries in Variables.
func (c *Config) DefaultVariables() map[string]string {
	out := make(map[string]string, len(c.Variables)+2)
	for k, val := range c.Variables {
		out[k] = val
	}
	if c.Authors != "" {
		out["authors"] = c.Authors
	}
	if c.ProjectName != "" {
		out["project-name"] = c.ProjectName
	}
	return out
}
