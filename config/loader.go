package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name looked up in the XDG config directory.
const DefaultConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadFile reads crawl options from a YAML file.
func LoadFile(path string) (*Options, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &opts, nil
}

// FindConfigFile returns configPath when it is set, otherwise the
// plowcrawl config file in the XDG config directories if one exists.
// An empty string means no file should be loaded.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	path, err := xdg.SearchConfigFile(filepath.Join(AppName, DefaultConfigFile))
	if err != nil {
		return ""
	}
	return path
}
