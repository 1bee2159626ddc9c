/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"notegrid/internal/config"
	"notegrid/internal/domain"
	"notegrid/internal/export"
	applog "notegrid/internal/log"
	"notegrid/internal/playback"
	"notegrid/internal/session"
	"notegrid/internal/synth"
	"notegrid/internal/tui"
)

// phraseFlags are shared by the commands that build a session from a phrase literal.
type phraseFlags struct {
	tempo   *int
	meter   *string
	dynamic *string
}

func addPhraseFlags(fs *flag.FlagSet) phraseFlags {
	return phraseFlags{
		tempo:   fs.Int("tempo", 0, "tempo in BPM, 40..208 (default from config)"),
		meter:   fs.String("meter", "", "time signature, 4/4 or 3/4 (default from config)"),
		dynamic: fs.String("dynamic", "", "dynamic marking: pp p mp mf f ff"),
	}
}

// apply sets meter, tempo and dynamic, then loads the phrase. The meter goes first because
// changing it clears the grid.
func (f phraseFlags) apply(s *session.Session, phrase string) error {
	if *f.meter != "" {
		ts, err := domain.ParseTimeSignature(*f.meter)
		if err != nil {
			return err
		}
		if err := s.ChangeTimeSignature(ts); err != nil {
			return err
		}
	}
	if *f.tempo > 0 {
		s.ChangeTempo(*f.tempo)
	}
	if *f.dynamic != "" {
		d, err := domain.ParseDynamic(*f.dynamic)
		if err != nil {
			return err
		}
		if err := s.SetDynamicMarking(d); err != nil {
			return err
		}
	}
	if phrase == "" {
		return nil
	}
	if err := s.LoadPhrase(phrase); err != nil {
		return fmt.Errorf("load phrase: %w", err)
	}
	return nil
}

func phraseArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() < 1 {
		return "", fmt.Errorf("%s requires <phrase>", fs.Name())
	}
	return fs.Arg(0), nil
}

func openSynth(cfg config.AppConfig) synth.Device {
	dev, err := synth.Open(cfg.Synth)
	if err != nil {
		applog.WithComponent("cli").Warn("synth unavailable, playing silently", slog.String("driver", cfg.Synth.Driver), slog.Any("err", err))
		return &synth.Null{}
	}
	return dev
}

func runTUI(cfg config.AppConfig, phrase string, cur *current) error {
	dev := openSynth(cfg)
	defer func() { _ = dev.Close() }()

	feed := tui.NewFeed()
	opts := session.OptionsFromConfig(cfg, dev)
	opts.OnProgress = feed.Publish
	s := session.New(opts)
	defer s.Close()
	cur.s = s
	if phrase != "" {
		if err := s.LoadPhrase(phrase); err != nil {
			return fmt.Errorf("load phrase: %w", err)
		}
	}
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		format = export.FormatPDF
	}
	m := tui.NewModel(s, feed, tui.Options{
		EdgeFraction: cfg.Editor.EdgeFraction,
		ExportDir:    cfg.Export.Dir,
		ExportFormat: format,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

func runPlay(cfg config.AppConfig, args []string, cur *current) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	pf := addPhraseFlags(fs)
	loops := fs.Int("loops", 1, "passes through the grid; 0 plays until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	phrase, err := phraseArg(fs)
	if err != nil {
		return err
	}
	dev := openSynth(cfg)
	defer func() { _ = dev.Close() }()

	done := make(chan struct{})
	var once sync.Once
	var passes atomic.Int32
	opts := session.OptionsFromConfig(cfg, dev)
	opts.OnProgress = func(p playback.Progress) {
		if !p.Running || p.Column != 0 {
			return
		}
		if n := passes.Add(1); *loops > 0 && int(n) > *loops {
			once.Do(func() { close(done) })
		}
	}
	s := session.New(opts)
	defer s.Close()
	cur.s = s
	if err := pf.apply(s, phrase); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	l := applog.WithComponent("cli")
	l.Info("playing", slog.Int("tempo", s.Tempo()), slog.Int("loops", *loops), slog.String("phrase", s.Phrase()))
	s.TogglePlayback()
	select {
	case <-done:
	case <-ctx.Done():
	}
	if s.Playing() {
		s.TogglePlayback()
	}
	l.Info("stopped", slog.Int("passes", int(passes.Load())))
	return nil
}

func runExport(cfg config.AppConfig, args []string, cur *current) ([]string, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	pf := addPhraseFlags(fs)
	format := fs.String("format", "", "pdf, png, svg or ly (default from -o extension, then config)")
	preset := fs.String("preset", "", "write a preset set of formats: web (png, svg) or print (pdf, ly)")
	out := fs.String("o", "", "output file, or directory with -preset")
	title := fs.String("title", "", "title printed above the staff")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	phrase, err := phraseArg(fs)
	if err != nil {
		return nil, err
	}
	s := session.New(session.OptionsFromConfig(cfg, nil))
	defer s.Close()
	cur.s = s
	if err := pf.apply(s, phrase); err != nil {
		return nil, err
	}
	score := s.Score()
	opt := export.Options{Title: *title, Tempo: s.Tempo()}

	if *preset != "" {
		dir := *out
		if dir == "" {
			dir = cfg.Export.Dir
		}
		return export.BatchExport(score, export.BatchOptions{Preset: export.PresetName(*preset), OutDir: dir, Options: opt})
	}

	var f export.Format
	if *format != "" {
		if f, err = export.ParseFormat(*format); err != nil {
			return nil, err
		}
	}
	path := *out
	if path == "" {
		if f == "" {
			if f, err = export.ParseFormat(cfg.Export.Format); err != nil {
				f = export.FormatPDF
			}
		}
		path = filepath.Join(cfg.Export.Dir, "phrase"+f.Ext())
	}
	if err := export.WriteFile(path, f, score, opt); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func runDescribe(w io.Writer, args []string, cur *current) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	pf := addPhraseFlags(fs)
	asJSON := fs.Bool("json", false, "print the staff measures as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	phrase, err := phraseArg(fs)
	if err != nil {
		return err
	}
	s := session.New(session.Options{})
	defer s.Close()
	cur.s = s
	if err := pf.apply(s, phrase); err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Score())
	}
	_, err = fmt.Fprintln(w, s.Describe())
	return err
}

func runDevices(w io.Writer) error {
	ports, err := synth.ListOutPorts()
	if errors.Is(err, synth.ErrUnavailable) {
		return fmt.Errorf("MIDI support needs a cgo build: %w", err)
	}
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		_, err = fmt.Fprintln(w, "No MIDI output ports found.")
		return err
	}
	for i, p := range ports {
		if _, err := fmt.Fprintf(w, "%d: %s\n", i, p); err != nil {
			return err
		}
	}
	return nil
}

func runConfig(w io.Writer, args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if firstArg(args) == "init" {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
		if err := config.SaveFile(path, config.Defaults()); err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, "Created", path)
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Config:", path)
	fmt.Fprintf(w, "Tempo: %d  Meter: %s  Synth: %s  Export: %s (%s)\n",
		cfg.Playback.Tempo, cfg.Editor.Meter(), cfg.Synth.Driver, cfg.Export.Dir, cfg.Export.Format)
	for _, key := range []string{"playback.tempo", "editor.time_signature", "synth.driver", "synth.midi_port", "export.dir", "logging.level"} {
		if env, ok := config.EnvOverrideFor(key); ok {
			fmt.Fprintf(w, "  %s overridden by %s\n", key, env)
		}
	}
	return nil
}
