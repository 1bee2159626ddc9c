/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
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
	"time"

	"gopkg.in/yaml.v3"

	"notegrid/internal/domain"
)

// AppConfig is the user-editable configuration persisted as YAML in the user scope.
// Environment variables override it at runtime and are never written back.
type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Playback      PlaybackConfig `yaml:"playback"`
	Editor        EditorConfig   `yaml:"editor"`
	Synth         SynthConfig    `yaml:"synth"`
	Export        ExportConfig   `yaml:"export"`
	Logging       LoggingConfig  `yaml:"logging"`
}

type PlaybackConfig struct {
	Tempo       int     `yaml:"tempo"`
	Velocity    float64 `yaml:"velocity"`
	WrapPauseMs int     `yaml:"wrap_pause_ms"`
}

type EditorConfig struct {
	TimeSignature string  `yaml:"time_signature"`
	HistoryDepth  int     `yaml:"history_depth"`
	CoalesceMs    int     `yaml:"coalesce_ms"`
	GridWidth     float64 `yaml:"grid_width"`
	// EdgeFraction is the share of a cell's width, at either side, that starts a resize drag.
	EdgeFraction float64 `yaml:"edge_fraction"`
}

type SynthConfig struct {
	Driver      string `yaml:"driver"` // none | midi | oto
	MIDIPort    string `yaml:"midi_port"`
	MIDIChannel int    `yaml:"midi_channel"`
	SampleRate  int    `yaml:"sample_rate"`
}

type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // pdf | png | svg | ly
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Playback:      PlaybackConfig{Tempo: domain.DefaultTempo, Velocity: 0.8, WrapPauseMs: 50},
		Editor: EditorConfig{
			TimeSignature: string(domain.DefaultTimeSignature),
			HistoryDepth:  50,
			CoalesceMs:    400,
			GridWidth:     1280,
			EdgeFraction:  0.2,
		},
		Synth:   SynthConfig{Driver: "none", MIDIChannel: 0, SampleRate: 44100},
		Export:  ExportConfig{Dir: ".", Format: "pdf"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvTempo         = "NGRID_TEMPO"
	EnvTimeSignature = "NGRID_TIME_SIGNATURE"
	EnvSynth         = "NGRID_SYNTH"
	EnvMIDIPort      = "NGRID_MIDI_PORT"
	EnvExportDir     = "NGRID_EXPORT_DIR"
	EnvLogLevel      = "NGRID_LOG_LEVEL"
	EnvLogFormat     = "NGRID_LOG_FORMAT"
	EnvLogSource     = "NGRID_LOG_SOURCE"
	EnvLogFile       = "NGRID_LOG_FILE"
	// EnvConfigPath points Load at a different file.
	EnvConfigPath = "NGRID_CONFIG"
)

type override struct {
	key   string
	env   string
	apply func(cfg *AppConfig, v string)
}

var overrides = []override{
	{"playback.tempo", EnvTempo, func(c *AppConfig, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.Playback.Tempo = n
		}
	}},
	{"editor.time_signature", EnvTimeSignature, func(c *AppConfig, v string) { c.Editor.TimeSignature = v }},
	{"synth.driver", EnvSynth, func(c *AppConfig, v string) { c.Synth.Driver = strings.ToLower(v) }},
	{"synth.midi_port", EnvMIDIPort, func(c *AppConfig, v string) { c.Synth.MIDIPort = v }},
	{"export.dir", EnvExportDir, func(c *AppConfig, v string) { c.Export.Dir = v }},
	{"logging.level", EnvLogLevel, func(c *AppConfig, v string) { c.Logging.Level = strings.ToLower(v) }},
	{"logging.format", EnvLogFormat, func(c *AppConfig, v string) { c.Logging.Format = strings.ToLower(v) }},
	{"logging.source", EnvLogSource, func(c *AppConfig, v string) { c.Logging.Source = truthy(v) }},
	{"logging.file", EnvLogFile, func(c *AppConfig, v string) { c.Logging.File = v }},
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ConfigPath returns the per-user config file path, or $NGRID_CONFIG when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Notegrid")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Notegrid")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "notegrid")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "notegrid")
		}
	}
	if base == "" || base == "notegrid" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file if present, then applies environment overrides and Validate.
// A missing file is not an error; a malformed one is.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		cfg.Validate()
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// fields absent from the file keep their defaults
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			cfg = Defaults()
			applyEnvOverrides(&cfg)
			cfg.Validate()
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	cfg.Validate()
	return cfg, nil
}

// Save writes cfg to the user config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as YAML, creating the directory when needed.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func applyEnvOverrides(cfg *AppConfig) {
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			o.apply(cfg, v)
		}
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	for _, o := range overrides {
		if o.key == key && strings.TrimSpace(os.Getenv(o.env)) != "" {
			return o.env, true
		}
	}
	return "", false
}

// Validate normalises out-of-range values in place.
func (c *AppConfig) Validate() {
	d := Defaults()
	if c.Playback.Tempo == 0 {
		c.Playback.Tempo = d.Playback.Tempo
	}
	c.Playback.Tempo = domain.ClampTempo(c.Playback.Tempo)
	if c.Playback.Velocity <= 0 || c.Playback.Velocity > 1 {
		c.Playback.Velocity = d.Playback.Velocity
	}
	if c.Playback.WrapPauseMs < 0 {
		c.Playback.WrapPauseMs = 0
	}
	if _, err := domain.ParseTimeSignature(c.Editor.TimeSignature); err != nil {
		c.Editor.TimeSignature = d.Editor.TimeSignature
	}
	if c.Editor.HistoryDepth < 1 {
		c.Editor.HistoryDepth = d.Editor.HistoryDepth
	}
	if c.Editor.CoalesceMs < 0 {
		c.Editor.CoalesceMs = 0
	}
	if c.Editor.GridWidth <= 0 {
		c.Editor.GridWidth = d.Editor.GridWidth
	}
	if c.Editor.EdgeFraction <= 0 || c.Editor.EdgeFraction >= 0.5 {
		c.Editor.EdgeFraction = d.Editor.EdgeFraction
	}
	switch c.Synth.Driver {
	case "none", "midi", "oto":
	default:
		c.Synth.Driver = d.Synth.Driver
	}
	if c.Synth.MIDIChannel < 0 || c.Synth.MIDIChannel > 15 {
		c.Synth.MIDIChannel = 0
	}
	if c.Synth.SampleRate <= 0 {
		c.Synth.SampleRate = d.Synth.SampleRate
	}
	switch c.Export.Format {
	case "pdf", "png", "svg", "ly":
	default:
		c.Export.Format = d.Export.Format
	}
}

// Meter returns the configured time signature.
func (e EditorConfig) Meter() domain.TimeSignature {
	ts, err := domain.ParseTimeSignature(e.TimeSignature)
	if err != nil {
		return domain.DefaultTimeSignature
	}
	return ts
}

// WrapPause converts WrapPauseMs for playback.Config, where a negative value disables the pause.
func (p PlaybackConfig) WrapPause() time.Duration {
	if p.WrapPauseMs <= 0 {
		return -1
	}
	return time.Duration(p.WrapPauseMs) * time.Millisecond
}

// Coalesce converts CoalesceMs.
func (e EditorConfig) Coalesce() time.Duration { return time.Duration(e.CoalesceMs) * time.Millisecond }
