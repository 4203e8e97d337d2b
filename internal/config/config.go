// Package config loads the tool's yaml configuration. Every field has a
// working default, so the file is optional.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// WatchDir is the directory tree observed for document changes.
	WatchDir string `yaml:"watch_dir"`

	// PollIntervalMS is the scheduler's queue-drain cadence.
	PollIntervalMS int `yaml:"poll_interval_ms"`

	SceneSuffix   string `yaml:"scene_suffix"`
	ModelSuffix   string `yaml:"model_suffix"`
	ArchiveSuffix string `yaml:"archive_suffix"`
	StagingDir    string `yaml:"staging_dir"`

	Engine EngineConfig `yaml:"engine"`

	// StatusAddr serves the websocket status feed; empty disables it.
	StatusAddr string `yaml:"status_addr"`

	// IndexPath is the run-history sqlite file; empty disables indexing.
	IndexPath string `yaml:"index_path"`
}

type EngineConfig struct {
	Bin        string   `yaml:"bin"`
	Args       []string `yaml:"args,omitempty"`
	Resolution [2]int   `yaml:"resolution"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		WatchDir:       ".",
		PollIntervalMS: 900,
		SceneSuffix:    ".bsz",
		ModelSuffix:    ".vmax",
		ArchiveSuffix:  ".zip",
		StagingDir:     "download",
		Engine: EngineConfig{
			Bin:        "bella_cli",
			Resolution: [2]int{720, 405},
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	def := Defaults()
	if strings.TrimSpace(c.WatchDir) == "" {
		c.WatchDir = def.WatchDir
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = def.PollIntervalMS
	}
	for _, s := range []*string{&c.SceneSuffix, &c.ModelSuffix, &c.ArchiveSuffix} {
		*s = strings.TrimSpace(*s)
		if *s != "" && !strings.HasPrefix(*s, ".") {
			*s = "." + *s
		}
	}
	if c.SceneSuffix == "" {
		c.SceneSuffix = def.SceneSuffix
	}
	if c.ModelSuffix == "" {
		c.ModelSuffix = def.ModelSuffix
	}
	if c.ArchiveSuffix == "" {
		c.ArchiveSuffix = def.ArchiveSuffix
	}
	if strings.TrimSpace(c.StagingDir) == "" {
		c.StagingDir = def.StagingDir
	}
	if strings.TrimSpace(c.Engine.Bin) == "" {
		c.Engine.Bin = def.Engine.Bin
	}
	if c.Engine.Resolution[0] <= 0 || c.Engine.Resolution[1] <= 0 {
		c.Engine.Resolution = def.Engine.Resolution
	}
}

func (c Config) Validate() error {
	if c.SceneSuffix == c.ModelSuffix {
		return fmt.Errorf("scene_suffix and model_suffix must differ (both %q)", c.SceneSuffix)
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("poll_interval_ms must be > 0")
	}
	if c.Engine.Resolution[0] <= 0 || c.Engine.Resolution[1] <= 0 {
		return fmt.Errorf("engine resolution must be positive, got %dx%d", c.Engine.Resolution[0], c.Engine.Resolution[1])
	}
	return nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}
