/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type LayoutConfig struct {
	TextLines  int `yaml:"text_lines"`  // lines per on-screen box
	LineLength int `yaml:"line_length"` // display columns per line
}

type ScriptConfig struct {
	Encoding string `yaml:"encoding"` // "auto" | "utf-8" | "shift-jis"
}

type PipelineConfig struct {
	Workers int    `yaml:"workers"`
	RunTag  string `yaml:"run_tag"` // subfolder of 4_MachineTranslations and 5_Inserted
}

type ProviderConfig struct {
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
	// API keys are not stored on disk; they live in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Workspace     string         `yaml:"workspace"`
	Layout        LayoutConfig   `yaml:"layout"`
	Script        ScriptConfig   `yaml:"script"`
	Pipeline      PipelineConfig `yaml:"pipeline"`
	Provider      ProviderConfig `yaml:"provider"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Supported script encodings.
const (
	EncodingAuto     = "auto"
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift-jis"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Workspace:     "Eushlator",
		Layout:        LayoutConfig{TextLines: 3, LineLength: 54},
		Script:        ScriptConfig{Encoding: EncodingAuto},
		Pipeline:      PipelineConfig{Workers: runtime.NumCPU(), RunTag: "default"},
		Provider:      ProviderConfig{Name: "anthropic"},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvWorkspace      = "EUS_WORKSPACE"
	EnvTextLines      = "EUS_TEXT_LINES"
	EnvLineLength     = "EUS_LINE_LENGTH"
	EnvScriptEncoding = "EUS_SCRIPT_ENCODING"
	EnvWorkers        = "EUS_WORKERS"
	EnvRunTag         = "EUS_RUN_TAG"
	EnvProvider       = "EUS_PROVIDER"
	EnvModel          = "EUS_MODEL"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "EUS_LOG_LEVEL"
	EnvLogFormat = "EUS_LOG_FORMAT"
	EnvLogSource = "EUS_LOG_SOURCE"
	EnvLogFile   = "EUS_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base != "" {
			base = filepath.Join(base, "Eushlator")
		}
	}
	if base == "" {
		home, err := homedir.Dir()
		if err != nil || home == "" {
			return "", errors.New("cannot resolve config directory")
		}
		base = filepath.Join(home, ".config", "eushlator")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path. A missing file is not an error;
// a file that exists but does not parse is.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML to the default location.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the user config YAML to path.
func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate reports configuration values the pipeline cannot work with.
func (c AppConfig) Validate() error {
	var errs []error
	if c.Layout.TextLines < 1 {
		errs = append(errs, fmt.Errorf("layout.text_lines must be >= 1, got %d", c.Layout.TextLines))
	}
	if c.Layout.LineLength < 1 {
		errs = append(errs, fmt.Errorf("layout.line_length must be >= 1, got %d", c.Layout.LineLength))
	}
	if c.Pipeline.Workers < 1 {
		errs = append(errs, fmt.Errorf("pipeline.workers must be >= 1, got %d", c.Pipeline.Workers))
	}
	switch c.Script.Encoding {
	case EncodingAuto, EncodingUTF8, EncodingShiftJIS:
	default:
		errs = append(errs, fmt.Errorf("script.encoding %q is not one of auto, utf-8, shift-jis", c.Script.Encoding))
	}
	return errors.Join(errs...)
}

// WorkspaceDir returns the workspace root with a leading ~ expanded.
func (c AppConfig) WorkspaceDir() (string, error) {
	return homedir.Expand(c.Workspace)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.Workspace) != "" {
		dst.Workspace = strings.TrimSpace(src.Workspace)
	}
	if src.Layout.TextLines != 0 {
		dst.Layout.TextLines = src.Layout.TextLines
	}
	if src.Layout.LineLength != 0 {
		dst.Layout.LineLength = src.Layout.LineLength
	}
	if strings.TrimSpace(src.Script.Encoding) != "" {
		dst.Script.Encoding = normalizeEncoding(src.Script.Encoding)
	}
	if src.Pipeline.Workers != 0 {
		dst.Pipeline.Workers = src.Pipeline.Workers
	}
	if strings.TrimSpace(src.Pipeline.RunTag) != "" {
		dst.Pipeline.RunTag = strings.TrimSpace(src.Pipeline.RunTag)
	}
	if strings.TrimSpace(src.Provider.Name) != "" {
		dst.Provider.Name = strings.ToLower(strings.TrimSpace(src.Provider.Name))
	}
	if strings.TrimSpace(src.Provider.Model) != "" {
		dst.Provider.Model = strings.TrimSpace(src.Provider.Model)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvWorkspace)); v != "" {
		cfg.Workspace = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTextLines)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Layout.TextLines = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLineLength)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Layout.LineLength = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvScriptEncoding)); v != "" {
		cfg.Script.Encoding = normalizeEncoding(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.Workers = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRunTag)); v != "" {
		cfg.Pipeline.RunTag = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProvider)); v != "" {
		cfg.Provider.Name = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		cfg.Provider.Model = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func normalizeEncoding(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf8", "utf-8":
		return EncodingUTF8
	case "sjis", "shift_jis", "shift-jis", "shiftjis", "cp932":
		return EncodingShiftJIS
	case "auto", "":
		return EncodingAuto
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "workspace":
		env = EnvWorkspace
	case "layout.text_lines":
		env = EnvTextLines
	case "layout.line_length":
		env = EnvLineLength
	case "script.encoding":
		env = EnvScriptEncoding
	case "pipeline.workers":
		env = EnvWorkers
	case "pipeline.run_tag":
		env = EnvRunTag
	case "provider.name":
		env = EnvProvider
	case "provider.model":
		env = EnvModel
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
