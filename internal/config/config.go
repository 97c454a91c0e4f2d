// README: Koanf-based configuration: YAML/JSON file plus SAGUARO_ env
// overrides, with per-section defaults and validation.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP   HTTPConfig   `json:"http"`
	AI     AIConfig     `json:"ai"`
	Maps   MapsConfig   `json:"maps"`
	Source SourceConfig `json:"source"`
	Cache  CacheConfig  `json:"cache"`
	Redis  RedisConfig  `json:"redis"`
	Zones  ZonesConfig  `json:"zones"`
	Slack  SlackConfig  `json:"slack"`
}

type HTTPConfig struct {
	Addr string `json:"addr"`
}

type AIConfig struct {
	// GeminiKey authenticates the availability parser. Empty disables the
	// parser; callers must then supply pre-parsed windows.
	GeminiKey string `json:"gemini_key"`
}

type MapsConfig struct {
	APIKey string `json:"api_key"`
}

type SourceConfig struct {
	// Backend selects the appointment source: "clickup" or "postgres".
	Backend       string `json:"backend"`
	ClickUpToken  string `json:"clickup_token"`
	ClickUpListID string `json:"clickup_list_id"`
	PostgresDSN   string `json:"postgres_dsn"`
}

type CacheConfig struct {
	Dir        string `json:"dir"`
	TTLMinutes int    `json:"ttl_minutes"`
}

type RedisConfig struct {
	// Addr enables the shared geocode cache when set.
	Addr string `json:"addr"`
}

type ZonesConfig struct {
	// Path points to a zones GeoJSON file; empty uses the embedded map.
	Path string `json:"path"`
}

type SlackConfig struct {
	SigningSecret string `json:"signing_secret"`
}

func (c *Config) setDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Source.Backend == "" {
		c.Source.Backend = "clickup"
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "cache"
	}
	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = 60
	}
}

func (c *Config) validate() error {
	switch c.Source.Backend {
	case "clickup":
		if c.Source.ClickUpToken == "" || c.Source.ClickUpListID == "" {
			return fmt.Errorf("source.clickup_token and source.clickup_list_id are required for the clickup backend")
		}
	case "postgres":
		if c.Source.PostgresDSN == "" {
			return fmt.Errorf("source.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown source backend %q", c.Source.Backend)
	}
	if c.Maps.APIKey == "" {
		return fmt.Errorf("maps.api_key is required")
	}
	return nil
}

// Load reads the config file (YAML or JSON; path may be empty to use env
// vars alone) and applies SAGUARO_ environment overrides, where double
// underscores separate sections: SAGUARO_MAPS__API_KEY.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", path)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("SAGUARO_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "saguaro_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
