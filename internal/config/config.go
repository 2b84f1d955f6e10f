// Package config loads the rollcall configuration file.
//
// The file is YAML. Its defaults section is a job whose fields apply to every
// command unless the job file or command-line flags set them:
//
//	defaults:
//	  title: LISTA DE PRESENÇA
//	  verification: qr
//	  layout:
//	    orientation: landscape
//	server:
//	  addr: :8080
//	log:
//	  debug: false
//	  json: true
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lvillar/rollcall/job"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "ROLLCALL_CONFIG"

// Config represents the rollcall configuration.
type Config struct {
	Defaults job.Job `yaml:"defaults,omitempty"`
	Server   Server  `yaml:"server,omitempty"`
	Log      Log     `yaml:"log,omitempty"`

	// Color mode of terminal messages (auto, always, never).
	Color string `yaml:"color,omitempty"`
}

// Server configures the HTTP server. Durations use time.ParseDuration syntax.
type Server struct {
	Addr            string `yaml:"addr,omitempty"`
	ReadTimeout     string `yaml:"read_timeout,omitempty"`
	WriteTimeout    string `yaml:"write_timeout,omitempty"`
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
	// SourceRoot confines local source paths requested over HTTP.
	SourceRoot string `yaml:"source_root,omitempty"`
}

// Log configures logging.
type Log struct {
	Debug bool `yaml:"debug,omitempty"`
	JSON  bool `yaml:"json,omitempty"`
}

// DefaultPath returns $ROLLCALL_CONFIG, or ~/.config/rollcall/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rollcall", "config.yaml"), nil
}

// Load loads the config from the default path. A missing file yields an
// empty config.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the config from path. A missing file yields an empty
// config.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := cfg.Server.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Durations returns the server timeouts, falling back to the given defaults
// for unset values.
func (s Server) Durations(read, write, shutdown time.Duration) (time.Duration, time.Duration, time.Duration) {
	return duration(s.ReadTimeout, read), duration(s.WriteTimeout, write), duration(s.ShutdownTimeout, shutdown)
}

func (s Server) validate() error {
	for name, v := range map[string]string{
		"read_timeout":     s.ReadTimeout,
		"write_timeout":    s.WriteTimeout,
		"shutdown_timeout": s.ShutdownTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("server.%s: %w", name, err)
		}
	}
	return nil
}

func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
