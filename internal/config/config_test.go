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
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	def := Defaults()
	if cfg.Layout != def.Layout || cfg.Script != def.Script {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
}

func TestLoadFromFileMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "workspace: /games/eush\nlayout:\n  text_lines: 4\n  line_length: 40\nscript:\n  encoding: SJIS\npipeline:\n  workers: 2\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Workspace != "/games/eush" || cfg.Layout.TextLines != 4 || cfg.Layout.LineLength != 40 {
		t.Fatalf("file values not merged: %#v", cfg)
	}
	if cfg.Script.Encoding != EncodingShiftJIS {
		t.Fatalf("Script.Encoding = %q, want %q", cfg.Script.Encoding, EncodingShiftJIS)
	}
	if cfg.Pipeline.Workers != 2 {
		t.Fatalf("Pipeline.Workers = %d, want 2", cfg.Pipeline.Workers)
	}
	// untouched sections keep defaults
	if cfg.Pipeline.RunTag != "default" {
		t.Fatalf("Pipeline.RunTag = %q, want default", cfg.Pipeline.RunTag)
	}
}

func TestLoadFromBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("layout: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Layout.TextLines != Defaults().Layout.TextLines {
		t.Fatalf("defaults should still be returned on error: %#v", cfg.Layout)
	}
}

func TestEnvOverridesLayout(t *testing.T) {
	t.Setenv(EnvTextLines, "2")
	t.Setenv(EnvLineLength, "30")
	t.Setenv(EnvWorkers, "7")
	t.Setenv(EnvScriptEncoding, "utf8")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Layout.TextLines != 2 || cfg.Layout.LineLength != 30 {
		t.Fatalf("layout env overrides not applied: %#v", cfg.Layout)
	}
	if cfg.Pipeline.Workers != 7 {
		t.Fatalf("Pipeline.Workers = %d, want 7", cfg.Pipeline.Workers)
	}
	if cfg.Script.Encoding != EncodingUTF8 {
		t.Fatalf("Script.Encoding = %q, want %q", cfg.Script.Encoding, EncodingUTF8)
	}
	if env, ok := EnvOverrideFor("layout.text_lines"); !ok || env != EnvTextLines {
		t.Fatalf("EnvOverrideFor(layout.text_lines) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("provider.model"); ok {
		t.Fatalf("provider.model should not be overridden")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/eus.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/eus.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/var/log/eus.log")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/var/log/eus.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	bad := Defaults()
	bad.Layout.TextLines = 0
	bad.Script.Encoding = "latin1"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Provider.Model = "some-model"
	cfg.Layout.LineLength = 48
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if got.Provider.Model != "some-model" || got.Layout.LineLength != 48 {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

type memStore struct{ m map[string]string }

func (s *memStore) Get(service, key string) (string, error) {
	v, ok := s.m[service+"/"+key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}
func (s *memStore) Set(service, key, value string) error {
	s.m[service+"/"+key] = value
	return nil
}
func (s *memStore) Delete(service, key string) error {
	if _, ok := s.m[service+"/"+key]; !ok {
		return keyring.ErrNotFound
	}
	delete(s.m, service+"/"+key)
	return nil
}

func TestAPIKeyStore(t *testing.T) {
	mem := &memStore{m: map[string]string{}}
	t.Cleanup(SetTokenStore(mem))

	if _, err := APIKey("anthropic"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
	if err := SetAPIKey("Anthropic", "  sk-test "); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}
	// batch provider shares the key
	got, err := APIKey("anthropic-batch")
	if err != nil || got != "sk-test" {
		t.Fatalf("APIKey() = %q, %v; want sk-test", got, err)
	}
	if err := DeleteAPIKey("anthropic"); err != nil {
		t.Fatalf("DeleteAPIKey() error: %v", err)
	}
	if err := DeleteAPIKey("anthropic"); err != nil {
		t.Fatalf("deleting a missing key should be a no-op: %v", err)
	}
	if err := SetAPIKey("openai", ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
