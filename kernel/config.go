// Copyright 2026 The Genesis Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernel

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the kernel's boot configuration. Values load in order of
// precedence: defaults, then an optional YAML or TOML file, then
// environment variables.
type Config struct {
	ServerPort          int      `yaml:"serverPort" toml:"serverPort"`
	ServerHostname      string   `yaml:"serverHostname" toml:"serverHostname"`
	Debug               bool     `yaml:"debug" toml:"debug"`
	Environment         string   `yaml:"environment" toml:"environment"`
	ServerScriptPath    string   `yaml:"serverScriptPath" toml:"serverScriptPath"`
	HeartbeatScriptPath string   `yaml:"heartbeatScriptPath" toml:"heartbeatScriptPath"`
	AllowedOrigins      []string `yaml:"allowedOrigins" toml:"allowedOrigins"`
	ErrorReportingURL   string   `yaml:"errorReportingUrl" toml:"errorReportingUrl"`
	ErrorReportingKey   string   `yaml:"errorReportingApiKey" toml:"errorReportingApiKey"`
}

// DefaultConfig returns the development defaults.
func DefaultConfig() Config {
	return Config{
		ServerPort:     9000,
		ServerHostname: "127.0.0.1",
		Environment:    "development",
	}
}

// LoadConfig builds a Config from defaults, the optional file at path
// (codec chosen by extension: .yaml/.yml or .toml), and the environment.
// An empty path skips the file layer.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse yaml config %s: %w", path, err)
			}
		case ".toml":
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse toml config %s: %w", path, err)
			}
		default:
			return cfg, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays the well-known environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.ServerPort = port
		}
	}
	if v := os.Getenv("HOSTNAME"); v != "" {
		cfg.ServerHostname = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		cfg.AllowedOrigins = origins
	}
	if v := os.Getenv("ERROR_REPORTING_URL"); v != "" {
		cfg.ErrorReportingURL = v
	}
	if v := os.Getenv("ERROR_REPORTING_API_KEY"); v != "" {
		cfg.ErrorReportingKey = v
	}
}

// Production reports whether the configured environment is production.
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}
