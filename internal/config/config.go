package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const defaultAPIURL = "http://127.0.0.1:8000/api"

// Resource describes the list and delete endpoints of one resource kind.
// DeleteURL may contain {id} and {userId} placeholders.
type Resource struct {
	ListURL       string `yaml:"list_url"`
	DeleteURL     string `yaml:"delete_url"`
	ItemsField    string `yaml:"items_field"`
	ScopeToViewer bool   `yaml:"scope_to_viewer"`
}

type Config struct {
	ConfigDir       string        `yaml:"-"`
	ConfigPath      string        `yaml:"-"`
	DBPath          string        `yaml:"db_path"`
	LogPath         string        `yaml:"log_path"`
	SiteURL         string        `yaml:"site_url"`
	SigninURL       string        `yaml:"signin_url"`
	PageSize        int           `yaml:"page_size"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
	HistoryLimit    int           `yaml:"history_limit"`
	Comments        Resource      `yaml:"comments"`
	Posts           Resource      `yaml:"posts"`
}

// envOverrides are read from the environment after the config file.
type envOverrides struct {
	ConfigPath      string        `env:"DASHPANEL_CONFIG"`
	APIURL          string        `env:"DASHPANEL_API_URL"`
	SiteURL         string        `env:"DASHPANEL_SITE_URL"`
	LogPath         string        `env:"DASHPANEL_LOG_PATH"`
	PageSize        int           `env:"DASHPANEL_PAGE_SIZE"`
	MonitorInterval time.Duration `env:"DASHPANEL_MONITOR_INTERVAL"`
}

func Default() Config {
	configDir := filepath.Join(userConfigDir(), "dashpanel")
	cfg := Config{
		ConfigDir:       configDir,
		ConfigPath:      filepath.Join(configDir, "config.yaml"),
		DBPath:          filepath.Join(configDir, "dashpanel.db"),
		LogPath:         filepath.Join(configDir, "debug.log"),
		SiteURL:         "http://localhost:5173",
		PageSize:        9,
		RequestTimeout:  10 * time.Second,
		MonitorInterval: 60 * time.Second,
		HistoryLimit:    50,
	}
	cfg.applyAPIURL(defaultAPIURL)
	return cfg
}

// Load builds the configuration from defaults, the optional YAML file and
// environment overrides, in that order.
func Load() (Config, error) {
	cfg := Default()

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if ov.ConfigPath != "" {
		cfg.ConfigPath = ov.ConfigPath
	}

	data, err := os.ReadFile(cfg.ConfigPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", cfg.ConfigPath, err)
		}
	}

	if ov.APIURL != "" {
		cfg.applyAPIURL(ov.APIURL)
	}
	if ov.SiteURL != "" {
		cfg.SiteURL = ov.SiteURL
	}
	if ov.LogPath != "" {
		cfg.LogPath = ov.LogPath
	}
	if ov.PageSize != 0 {
		cfg.PageSize = ov.PageSize
	}
	if ov.MonitorInterval != 0 {
		cfg.MonitorInterval = ov.MonitorInterval
	}

	return cfg, cfg.Validate()
}

// Validate reports configuration the dashboard cannot run with.
func (c Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	for name, r := range map[string]Resource{"comments": c.Comments, "posts": c.Posts} {
		if r.ListURL == "" || r.DeleteURL == "" {
			return fmt.Errorf("%s: list_url and delete_url are required", name)
		}
		if !strings.Contains(r.DeleteURL, "{id}") {
			return fmt.Errorf("%s: delete_url must contain {id}", name)
		}
		if r.ItemsField == "" {
			return fmt.Errorf("%s: items_field is required", name)
		}
	}
	return nil
}

func (c *Config) applyAPIURL(base string) {
	base = strings.TrimRight(base, "/")
	c.SigninURL = base + "/auth/signin"
	c.Comments = Resource{
		ListURL:    base + "/comment/getcomments",
		DeleteURL:  base + "/comment/deleteComment/{id}",
		ItemsField: "comments",
	}
	c.Posts = Resource{
		ListURL:       base + "/post/getposts",
		DeleteURL:     base + "/post/delete/{id}/{userId}",
		ItemsField:    "posts",
		ScopeToViewer: true,
	}
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
