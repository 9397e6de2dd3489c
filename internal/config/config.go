// Package config holds the process-wide configuration. It is built once at
// start-up and passed by value into every component constructor; nothing else
// in the module reads the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BuildDriverCLI    = "cli"
	BuildDriverEngine = "engine"
)

type HTTP struct {
	Listen     string `yaml:"listen"`
	CORSOrigin string `yaml:"cors_origin"`
	BodyLimit  int    `yaml:"body_limit"`
}

type Ledger struct {
	// Path of the badger directory. Empty keeps jobs in memory only.
	Path string `yaml:"path"`
}

type Model struct {
	APIKey          string        `yaml:"api_key"`
	Endpoint        string        `yaml:"endpoint"`
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Temperature     float64       `yaml:"temperature"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
}

// Enabled reports whether a credential is configured.
func (m Model) Enabled() bool {
	return strings.TrimSpace(m.APIKey) != ""
}

type Build struct {
	Driver      string        `yaml:"driver"`
	Binary      string        `yaml:"binary"`
	ExtraArgs   string        `yaml:"extra_args"`
	Timeout     time.Duration `yaml:"timeout"`
	NodeVersion string        `yaml:"node_version"`
}

type Git struct {
	CloneDepth   int           `yaml:"clone_depth"`
	CloneTimeout time.Duration `yaml:"clone_timeout"`
	Username     string        `yaml:"username"`
	AuthorName   string        `yaml:"author_name"`
	AuthorEmail  string        `yaml:"author_email"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	WorkDir string `yaml:"work_dir"`
	HTTP    HTTP   `yaml:"http"`
	Ledger  Ledger `yaml:"ledger"`
	Model   Model  `yaml:"model"`
	Build   Build  `yaml:"build"`
	Git     Git    `yaml:"git"`
	Log     Log    `yaml:"log"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		WorkDir: filepath.Join(os.TempDir(), "dockgen"),
		HTTP: HTTP{
			Listen:     ":4000",
			CORSOrigin: "*",
			BodyLimit:  10 * 1024 * 1024,
		},
		Model: Model{
			Endpoint:        "https://generativelanguage.googleapis.com",
			Name:            "gemini-1.5-flash-latest",
			Version:         "v1beta",
			Temperature:     0.2,
			MaxOutputTokens: 1024,
			Timeout:         60 * time.Second,
		},
		Build: Build{
			Driver:      BuildDriverCLI,
			Binary:      "docker",
			Timeout:     20 * time.Minute,
			NodeVersion: "20-alpine",
		},
		Git: Git{
			CloneDepth:   1,
			CloneTimeout: 5 * time.Minute,
			Username:     "x-access-token",
			AuthorName:   "dockgen",
			AuthorEmail:  "dockgen@users.noreply.github.com",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order.
func Load(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if lookup != nil {
		if err := cfg.applyEnv(lookup); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.HTTP.Listen = fmt.Sprintf(":%d", port)
	}
	str("DOCKGEN_LISTEN", &c.HTTP.Listen)
	str("CORS_ORIGIN", &c.HTTP.CORSOrigin)
	str("WORK_DIR", &c.WorkDir)
	str("DOCKGEN_LEDGER_PATH", &c.Ledger.Path)

	str("GOOGLE_API_KEY", &c.Model.APIKey)
	str("GOOGLE_API_MODEL", &c.Model.Name)
	str("GOOGLE_API_VERSION", &c.Model.Version)
	str("DOCKGEN_MODEL_ENDPOINT", &c.Model.Endpoint)

	str("DEFAULT_NODE_VERSION", &c.Build.NodeVersion)
	str("DOCKGEN_BUILD_DRIVER", &c.Build.Driver)
	str("DOCKGEN_BUILD_BINARY", &c.Build.Binary)
	str("DOCKGEN_BUILD_ARGS", &c.Build.ExtraArgs)
	if err := dur("DOCKGEN_BUILD_TIMEOUT", &c.Build.Timeout); err != nil {
		return err
	}
	if err := dur("DOCKGEN_CLONE_TIMEOUT", &c.Git.CloneTimeout); err != nil {
		return err
	}

	str("DOCKGEN_LOG_LEVEL", &c.Log.Level)
	str("DOCKGEN_LOG_FORMAT", &c.Log.Format)
	return nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.WorkDir) == "" {
		return fmt.Errorf("work directory is required")
	}
	switch c.Build.Driver {
	case BuildDriverCLI, BuildDriverEngine:
	default:
		return fmt.Errorf("unknown build driver %q", c.Build.Driver)
	}
	if c.Build.Driver == BuildDriverCLI && strings.TrimSpace(c.Build.Binary) == "" {
		return fmt.Errorf("build binary is required for the cli driver")
	}
	if strings.TrimSpace(c.Build.NodeVersion) == "" {
		return fmt.Errorf("node version is required")
	}
	if c.Git.CloneDepth < 0 {
		return fmt.Errorf("clone depth must not be negative")
	}
	if strings.TrimSpace(c.Git.Username) == "" {
		return fmt.Errorf("git username is required")
	}
	return nil
}
