// Package config loads the run configuration from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Logging holds diagnostic logger settings
type Logging struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Config is the explicit run configuration handed to the organizer
type Config struct {
	SourceRoot string   `yaml:"source_root" toml:"source_root"`
	TargetRoot string   `yaml:"target_root" toml:"target_root"`
	Extensions []string `yaml:"extensions" toml:"extensions"`
	Logging    Logging  `yaml:"logging" toml:"logging"`
}

// Default returns a config with every optional field populated
func Default() Config {
	return Config{
		Extensions: []string{".dcm"},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML or TOML config file on top of the defaults.
// An empty path returns the defaults without validation, so flags can fill the roots
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension %q (use .yaml, .yml or .toml)", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Normalize expands and cleans the root paths and fills empty optional fields
func (c *Config) Normalize() error {
	var err error
	if c.SourceRoot, err = expandPath(c.SourceRoot); err != nil {
		return err
	}
	if c.TargetRoot, err = expandPath(c.TargetRoot); err != nil {
		return err
	}

	exts := make([]string, 0, len(c.Extensions))
	for _, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = Default().Extensions
	}
	c.Extensions = exts

	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = Default().Logging.Level
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = Default().Logging.Format
	}
	return nil
}

// Validate checks the roots. Call Normalize first
func (c Config) Validate() error {
	var errs []error
	if c.SourceRoot == "" {
		errs = append(errs, errors.New("source root is required"))
	}
	if c.TargetRoot == "" {
		errs = append(errs, errors.New("target root is required"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if c.SourceRoot == c.TargetRoot {
		return fmt.Errorf("source and target root must differ (both %s)", c.SourceRoot)
	}
	return nil
}

// TargetInsideSource reports whether the target root lies under the source root.
// Such a layout is allowed, but the target is then listed as a patient folder too
func (c Config) TargetInsideSource() bool {
	if c.SourceRoot == "" || c.TargetRoot == "" || c.SourceRoot == c.TargetRoot {
		return false
	}
	rel, err := filepath.Rel(c.SourceRoot, c.TargetRoot)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
