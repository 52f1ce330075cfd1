package logger

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled *bool  `yaml:"console_enabled,omitempty"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   bool   `yaml:"file_compress"`
}

// loggingFile is the layout of a logging YAML file
type loggingFile struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig logs INFO and above as text to stdout
func DefaultConfig() Config {
	console := true
	return Config{
		Level:          "INFO",
		ConsoleEnabled: &console,
		ConsoleFormat:  "text",
		FilePath:       "logs/wavefield.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// Console reports whether console output is enabled
func (c Config) Console() bool {
	return c.ConsoleEnabled == nil || *c.ConsoleEnabled
}

// LoadConfig reads the logging section of a YAML file over the defaults and
// then applies environment overrides. A missing file is not an error; a file
// that fails to parse returns the defaults along with the error.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	var loadErr error
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			loadErr = fmt.Errorf("read logging config: %w", err)
		default:
			var file loggingFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				loadErr = fmt.Errorf("parse logging config %s: %w", configPath, err)
			} else {
				config.merge(file.Logging)
			}
		}
	}

	config.applyEnv()
	return config, loadErr
}

// merge copies every field that is set in other
func (c *Config) merge(other Config) {
	if other.Level != "" {
		c.Level = other.Level
	}
	if other.ConsoleEnabled != nil {
		c.ConsoleEnabled = other.ConsoleEnabled
	}
	if other.ConsoleFormat != "" {
		c.ConsoleFormat = other.ConsoleFormat
	}
	c.FileEnabled = other.FileEnabled
	if other.FilePath != "" {
		c.FilePath = other.FilePath
	}
	if other.FileFormat != "" {
		c.FileFormat = other.FileFormat
	}
	if other.FileMaxSizeMB > 0 {
		c.FileMaxSizeMB = other.FileMaxSizeMB
	}
	if other.FileMaxBackups > 0 {
		c.FileMaxBackups = other.FileMaxBackups
	}
	if other.FileMaxAgeDays > 0 {
		c.FileMaxAgeDays = other.FileMaxAgeDays
	}
	c.FileCompress = other.FileCompress
}

// applyEnv applies LOG_* environment overrides
func (c *Config) applyEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Level = v
	}
	if v := os.Getenv("LOG_CONSOLE_FORMAT"); v != "" {
		c.ConsoleFormat = v
	}
	if v := os.Getenv("LOG_FILE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.FileEnabled = enabled
		}
	}
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		c.FilePath = v
	}
}
