package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/slides/pkg/carousel"
	"github.com/go-drift/slides/pkg/items"
)

// DefaultFile is the config file name looked up when none is given.
const DefaultFile = "slides.yaml"

// SupportedVersion is the newest config schema this build understands.
const SupportedVersion = "v1"

// Config represents a slides.yaml file.
type Config struct {
	Version  string          `yaml:"version,omitempty"`
	Carousel carousel.Params `yaml:"carousel"`
	Clones   *CloneConfig    `yaml:"clones,omitempty"`
	Items    []items.Item    `yaml:"items"`
}

// CloneConfig overrides the engine loop requirements.
type CloneConfig struct {
	Minimum      int `yaml:"minimum"`
	SafetyMargin int `yaml:"safety_margin"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	// Path is the file the configuration was read from, empty when defaults were used.
	Path    string
	Version string
	Params  carousel.Params
	Clones  carousel.CloneOptions
	Items   []items.Item
}

// LoadOptional reads path if present. Fields missing from the file keep
// their defaults.
func LoadOptional(path string) (*Config, bool, error) {
	cfg := &Config{Carousel: carousel.DefaultParams()}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return cfg, true, nil
}

// Resolve loads path (if present), resolves defaults and validates the result.
// A directory resolves to the DefaultFile inside it.
func Resolve(path string) (*Resolved, error) {
	if path == "" {
		path = DefaultFile
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFile)
	}

	cfg, found, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}

	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = SupportedVersion
	}
	if err := validateVersion(version); err != nil {
		return nil, err
	}

	if err := cfg.Carousel.Validate(); err != nil {
		return nil, fmt.Errorf("carousel: %w", err)
	}

	clones := carousel.DefaultCloneOptions
	if cfg.Clones != nil {
		if cfg.Clones.Minimum < 0 || cfg.Clones.SafetyMargin < 0 {
			return nil, fmt.Errorf("clones: minimum and safety_margin must not be negative")
		}
		clones = carousel.CloneOptions{Minimum: cfg.Clones.Minimum, SafetyMargin: cfg.Clones.SafetyMargin}
	}

	for i, it := range cfg.Items {
		if strings.TrimSpace(it.Image) == "" {
			return nil, fmt.Errorf("items[%d]: image is required", i)
		}
	}

	r := &Resolved{
		Version: version,
		Params:  cfg.Carousel,
		Clones:  clones,
		Items:   cfg.Items,
	}
	if found {
		r.Path = path
	}
	return r, nil
}

func validateVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("version %q is not a valid semantic version (e.g. %s)", v, SupportedVersion)
	}
	if semver.Compare(semver.Major(v), SupportedVersion) > 0 {
		return fmt.Errorf("version %s is newer than supported %s", v, SupportedVersion)
	}
	return nil
}
