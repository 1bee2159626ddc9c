/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tui is the terminal grid editor. Mouse gestures on the grid go through an
// interaction.Machine; keys map to session intents.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"notegrid/internal/domain"
	"notegrid/internal/export"
	"notegrid/internal/grid"
	"notegrid/internal/interaction"
	applog "notegrid/internal/log"
	"notegrid/internal/playback"
	"notegrid/internal/session"
)

const tempoStep = 5

// Feed carries playback progress from the scheduler goroutine to the program.
type Feed struct {
	ch chan playback.Progress
}

func NewFeed() *Feed { return &Feed{ch: make(chan playback.Progress, 16)} }

// Publish never blocks. Progress is dropped while the terminal lags behind; the next redraw
// reads the cursor from the session anyway.
func (f *Feed) Publish(p playback.Progress) {
	select {
	case f.ch <- p:
	default:
	}
}

type ProgressMsg playback.Progress

func ListenForProgress(f *Feed) tea.Cmd {
	return func() tea.Msg {
		return ProgressMsg(<-f.ch)
	}
}

// Options configures the editor.
type Options struct {
	EdgeFraction float64
	ExportDir    string
	ExportFormat export.Format
	Title        string
}

// editor holds the mutable state shared by the copies of Model bubbletea passes around.
type editor struct {
	machine  *interaction.Machine
	pending  *grid.DurationChoice
	status   string
	progress playback.Progress
	help     help.Model
	quitting bool
}

type Model struct {
	Session *session.Session
	feed    *Feed
	opts    Options
	keys    keyMap
	ed      *editor
	log     *slog.Logger
}

func NewModel(s *session.Session, feed *Feed, opts Options) Model {
	if opts.ExportFormat == "" {
		opts.ExportFormat = export.FormatPDF
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	ed := &editor{progress: playback.Progress{Column: -1, Next: -1}, help: help.New()}
	g := s.Gesture(
		func(c grid.DurationChoice) { ed.pending = &c },
		func(reason string) { ed.status = declineText(reason) },
	)
	ed.machine = interaction.New(g, opts.EdgeFraction)
	return Model{
		Session: s,
		feed:    feed,
		opts:    opts,
		keys:    defaultKeys(),
		ed:      ed,
		log:     applog.WithComponent("tui"),
	}
}

func (m Model) Init() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return ListenForProgress(m.feed)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.ed.help.Width = msg.Width

	case ProgressMsg:
		m.ed.progress = playback.Progress(msg)
		return m, ListenForProgress(m.feed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.ed.pending != nil {
		switch {
		case key.Matches(msg, m.keys.Choose):
			m.choose(int(msg.String()[0] - '1'))
			return nil
		case key.Matches(msg, m.keys.Dismiss):
			m.ed.pending = nil
			return nil
		}
	}
	m.ed.status = ""
	s := m.Session
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ed.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Play):
		s.TogglePlayback()
	case key.Matches(msg, m.keys.Undo):
		m.travel(s.Undo, "nothing to undo")
	case key.Matches(msg, m.keys.Redo):
		m.travel(s.Redo, "nothing to redo")
	case key.Matches(msg, m.keys.Reset):
		m.ed.pending = nil
		if err := s.Reset(session.ResetAll); err != nil {
			m.ed.status = err.Error()
		}
	case key.Matches(msg, m.keys.Faster):
		s.ChangeTempo(s.Tempo() + tempoStep)
	case key.Matches(msg, m.keys.Slower):
		s.ChangeTempo(s.Tempo() - tempoStep)
	case key.Matches(msg, m.keys.Meter):
		ts := domain.ThreeFour
		if s.View().TimeSignature == domain.ThreeFour {
			ts = domain.FourFour
		}
		m.ed.pending = nil
		if err := s.ChangeTimeSignature(ts); err != nil {
			m.ed.status = err.Error()
		}
	case key.Matches(msg, m.keys.Dynamic):
		if err := s.SetDynamicMarking(nextDynamic(s.View().Dynamic)); err != nil {
			m.ed.status = err.Error()
		}
	case key.Matches(msg, m.keys.Export):
		path, err := m.export()
		if err != nil {
			m.log.Warn("export failed", slog.String("path", path), slog.Any("err", err))
			m.ed.status = "export failed: " + err.Error()
			return nil
		}
		m.ed.status = "exported " + path
	case key.Matches(msg, m.keys.Help):
		m.ed.help.ShowAll = !m.ed.help.ShowAll
	}
	return nil
}

func (m Model) travel(fn func() error, empty string) {
	err := fn()
	switch {
	case errors.Is(err, domain.ErrEmptyHistory):
		m.ed.status = empty
	case err != nil:
		m.ed.status = err.Error()
	}
}

func (m Model) choose(i int) {
	c := *m.ed.pending
	if i < 0 || i >= len(c.Options) {
		return
	}
	opt := c.Options[i]
	if !opt.Enabled {
		m.ed.status = fmt.Sprintf("%s: %s", opt.Label, opt.Note)
		return
	}
	m.ed.pending = nil
	if err := m.Session.RequestDurationChoice(c.Column, c.Row, opt.Duration); err != nil {
		m.ed.status = declineText(domain.Reason(err))
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) {
	p, ok := m.pointerAt(msg.X, msg.Y)
	mach := m.ed.machine
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !ok {
			return
		}
		m.ed.pending = nil
		m.ed.status = ""
		mach.Down(p)
	case tea.MouseActionMotion:
		if mach.State() == interaction.Idle {
			return
		}
		if !ok {
			mach.Cancel()
			return
		}
		mach.Move(p)
	case tea.MouseActionRelease:
		mach.Up()
	}
}

func (m Model) export() (string, error) {
	f := m.opts.ExportFormat
	path := filepath.Join(m.opts.ExportDir, "phrase"+f.Ext())
	opt := export.Options{Title: m.opts.Title, Tempo: m.Session.Tempo()}
	return path, export.WriteFile(path, f, m.Session.Score(), opt)
}

// nextDynamic cycles none, pp .. ff, none.
func nextDynamic(d domain.Dynamic) domain.Dynamic {
	for i, x := range domain.Dynamics {
		if x == d {
			if i+1 < len(domain.Dynamics) {
				return domain.Dynamics[i+1]
			}
			return domain.NoDynamic
		}
	}
	return domain.Dynamics[0]
}

func declineText(reason string) string {
	switch reason {
	case domain.ReasonMeasureFull:
		return "measure full"
	case domain.ReasonCrossesMeasureBoundary:
		return "crosses measure"
	case domain.ReasonSpanOccupied:
		return "inside another note"
	case domain.ReasonNone:
		return ""
	}
	return reason
}
