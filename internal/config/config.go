/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package config loads the router's single YAML configuration document,
// loaded once at startup, covering both the core routing knobs (listen
// address, handshake secret, rate limits, access list, aliases, ACIs,
// filter name) and the ambient listen/log/metrics settings.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/ortuman/jxrouter/internal/acl"
	"github.com/ortuman/jxrouter/internal/log"
)

// AliasEntry is one {name, target} pair from the config's alias list,
// loaded once at startup.
type AliasEntry struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
}

// RateConfig is the shape shared by byte_rate_* and conn_rate_*: total
// tokens per window, in seconds, plus an extra wait cooldown once
// exhausted. Total == 0 disables the limiter.
type RateConfig struct {
	Total   int `yaml:"total"`
	Seconds int `yaml:"seconds"`
	Wait    int `yaml:"wait"`
}

// Config is the router's full startup configuration.
type Config struct {
	Listen      string       `yaml:"listen"`
	LocalSecret string       `yaml:"local_secret"`
	ByteRate    RateConfig   `yaml:"byte_rate"`
	ConnRate    RateConfig   `yaml:"conn_rate"`
	Access      []string     `yaml:"access"` // CIDR or bare-IP rules; first match wins, '!' prefix denies, no match allows
	Aliases     []AliasEntry `yaml:"aliases"`
	ACI         []acl.Rule   `yaml:"aci"`
	Filter      string       `yaml:"filter"` // reserved for a future rule-set name; unused by the default Nop filter
	ConnRateCacheSize int    `yaml:"conn_rate_cache_size"`

	Log     log.Config `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig controls the optional Prometheus exporter.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Load reads and parses the YAML document at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading %s", path)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parsing %s", path)
	}
	if cfg.ConnRateCacheSize <= 0 {
		cfg.ConnRateCacheSize = 4096
	}
	return &cfg, nil
}
