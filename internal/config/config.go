// Package config loads the quickpost host configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-quickpost/pkg/access"
	"github.com/goliatone/go-quickpost/pkg/fields"
	"github.com/goliatone/go-quickpost/pkg/inject"
	"github.com/goliatone/go-quickpost/pkg/savehook"
)

// Defaults applied to missing values.
const (
	DefaultAddr     = "127.0.0.1:8080"
	DefaultDatabase = "quickpost.sqlite"
	DefaultLogLevel = "info"
)

// Config is the host configuration document.
type Config struct {
	Server     Server              `yaml:"server" json:"server"`
	Database   Database            `yaml:"database" json:"database"`
	Taxonomies Taxonomies          `yaml:"taxonomies" json:"taxonomies"`
	Editor     Editor              `yaml:"editor" json:"editor"`
	Fields     []fields.Definition `yaml:"fields" json:"fields"`
	Actor      access.Actor        `yaml:"actor" json:"actor"`
	Log        Log                 `yaml:"log" json:"log"`
}

// Server configures the demo editor listener.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Database locates the sqlite file.
type Database struct {
	Path string `yaml:"path" json:"path"`
}

// Taxonomies locates the taxonomy definitions. An empty Dir uses the
// embedded defaults; Watch reloads definitions when files in Dir change.
type Taxonomies struct {
	Dir   string `yaml:"dir" json:"dir"`
	Watch bool   `yaml:"watch" json:"watch"`
}

// Editor tunes the injected controls.
type Editor struct {
	ContentType string   `yaml:"contentType" json:"contentType"`
	AssetBase   string   `yaml:"assetBase" json:"assetBase"`
	Denylist    []string `yaml:"denylist" json:"denylist"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML (or JSON) document at path. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document, applies defaults and validates it.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(raw)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabase
	}
	c.Taxonomies.Dir = strings.TrimSpace(c.Taxonomies.Dir)
	c.Editor.ContentType = strings.TrimSpace(c.Editor.ContentType)
	if c.Editor.ContentType == "" {
		c.Editor.ContentType = savehook.DefaultContentType
	}
	c.Editor.AssetBase = strings.TrimSpace(c.Editor.AssetBase)
	if c.Editor.AssetBase == "" {
		c.Editor.AssetBase = inject.DefaultAssetBase
	}
	if c.Editor.Denylist == nil {
		c.Editor.Denylist = append([]string(nil), inject.DefaultDenylist...)
	}
	c.Actor.Name = strings.TrimSpace(c.Actor.Name)
	if c.Actor.Name == "" {
		c.Actor.Name = "admin"
	}
	if c.Actor.Capabilities == nil {
		c.Actor.Capabilities = []string{"*"}
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if _, err := fields.NormalizeDefinitions(c.Fields); err != nil {
		errs = append(errs, err)
	}
	if c.Taxonomies.Watch && c.Taxonomies.Dir == "" {
		errs = append(errs, errors.New("config: taxonomies.watch requires taxonomies.dir"))
	}
	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("config: log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
