/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session owns one editable phrase: the grid, tempo, dynamic marking, undo history and
// the playback scheduler. Every intent a front end may invoke is a method here, and all of them,
// together with each playback step, run under one mutex.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"notegrid/internal/domain"
	"notegrid/internal/grid"
	"notegrid/internal/history"
	applog "notegrid/internal/log"
	"notegrid/internal/notation"
	"notegrid/internal/playback"
)

// VolumeSetter is implemented by synths that follow the dynamic marking.
type VolumeSetter interface {
	SetVolume(v float64)
}

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	TimeSignature domain.TimeSignature
	Tempo         int
	HistoryDepth  int
	Coalesce      time.Duration
	GridWidth     float64

	Velocity  float64
	WrapPause time.Duration
	Synth     playback.Synth
	Sleep     playback.Sleeper
	// OnProgress is called from the playback goroutine or from TogglePlayback and Reset, never
	// with the session lock held.
	OnProgress func(playback.Progress)

	// Renderer receives a fresh score after every change, outside the session lock.
	Renderer notation.Renderer

	Now func() time.Time
}

// Session is the single owned model. It is safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	grid  *grid.Store
	tempo int
	dyn   domain.Dynamic
	last  domain.Duration

	hist  *history.Manager
	sched *playback.Scheduler
	opts  Options
	ctx   context.Context
	log   *slog.Logger
}

var sessionSeq atomic.Int64

// New creates a session with an empty grid.
func New(opts Options) *Session {
	if !opts.TimeSignature.Valid() {
		opts.TimeSignature = domain.DefaultTimeSignature
	}
	if opts.Tempo == 0 {
		opts.Tempo = domain.DefaultTempo
	}
	if opts.GridWidth <= 0 {
		opts.GridWidth = notation.DefaultGridWidth
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	id := fmt.Sprintf("s%d", sessionSeq.Add(1))
	s := &Session{
		grid:  grid.New(opts.TimeSignature),
		tempo: domain.ClampTempo(opts.Tempo),
		last:  domain.Eighth,
		hist:  history.NewManager(history.Config{MaxDepth: opts.HistoryDepth, MinInterval: opts.Coalesce}),
		opts:  opts,
		ctx:   applog.WithSession(context.Background(), id),
		log:   applog.WithComponent("session"),
	}
	s.sched = playback.New(source{s}, &s.mu, opts.Synth, playback.Config{
		Velocity:   opts.Velocity,
		WrapPause:  opts.WrapPause,
		Sleep:      opts.Sleep,
		OnProgress: opts.OnProgress,
	})
	return s
}

// source is the scheduler's view of the grid; its methods run with s.mu held.
type source struct{ s *Session }

func (p source) Tempo() int                              { return p.s.tempo }
func (p source) Len() int                                { return p.s.grid.Len() }
func (p source) NoteAt(col int) (domain.NoteEntry, bool) { return p.s.grid.NoteAt(col) }

// View is a consistent read of everything a front end draws.
type View struct {
	TimeSignature domain.TimeSignature
	Cells         []domain.Cell
	Tempo         int
	Dynamic       domain.Dynamic
	Playing       bool
	Cursor        int
	LastDuration  domain.Duration
	CanUndo       bool
	CanRedo       bool
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	undo, redo := s.hist.Stats()
	return View{
		TimeSignature: s.grid.TimeSignature(),
		Cells:         s.grid.Cells(),
		Tempo:         s.tempo,
		Dynamic:       s.dyn,
		Playing:       s.sched.Running(),
		Cursor:        s.sched.Cursor(),
		LastDuration:  s.last,
		CanUndo:       undo > 0,
		CanRedo:       redo > 0,
	}
}

// Selected reports whether (col,row) is lit on the grid.
func (s *Session) Selected(col, row int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Selected(col, row)
}

// Tempo returns the current tempo in BPM.
func (s *Session) Tempo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempo
}

// Score lays out the current grid.
func (s *Session) Score() notation.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

func (s *Session) scoreLocked() notation.Score {
	return notation.Layout(s.grid.Snapshot(), s.dyn, notation.Options{GridWidth: s.opts.GridWidth})
}

// Notes lists the notes in column order.
func (s *Session) Notes() []domain.PlacedNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Notes()
}

// Phrase returns the notes as a "col:row:dur" literal.
func (s *Session) Phrase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return grid.FormatPhrase(s.grid.Notes())
}

// Describe dumps the session for crash reports.
func (s *Session) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "tempo=%d dynamic=%q phrase=%q\n", s.tempo, s.dyn, grid.FormatPhrase(s.grid.Notes()))
	if s.dyn != domain.NoDynamic {
		fmt.Fprintf(&b, "%s, velocity %.1f\n", s.dyn.Title(), s.dyn.Velocity())
	}
	b.WriteString(s.grid.String())
	return b.String()
}

// Playing reports whether the scheduler is running.
func (s *Session) Playing() bool { return s.sched.Running() }

// Close stops playback and waits for the loop to exit.
func (s *Session) Close() {
	s.sched.Stop()
	s.sched.Wait()
}

// capture takes the pre-mutation snapshot. Callers hold s.mu.
func (s *Session) capture(kind string) history.Snapshot {
	return history.Snapshot{Grid: s.grid.Snapshot(), Tempo: s.tempo, Dynamic: s.dyn, Kind: kind, TS: s.opts.Now()}
}

func (s *Session) apply(snap history.Snapshot) {
	s.grid.Restore(snap.Grid)
	s.tempo = snap.Tempo
	s.setDynamicLocked(snap.Dynamic)
}

func (s *Session) setDynamicLocked(d domain.Dynamic) {
	s.dyn = d
	if vs, ok := s.opts.Synth.(VolumeSetter); ok {
		vs.SetVolume(d.Velocity())
	}
}

// render hands the score to the renderer. It must be called without s.mu held.
func (s *Session) render(score notation.Score) {
	if s.opts.Renderer == nil {
		return
	}
	if err := s.opts.Renderer.Render(score); err != nil {
		s.log.WarnContext(s.ctx, "render failed", slog.Any("err", err))
	}
}

// Regenerate re-renders the current score, e.g. at the end of a drag gesture.
func (s *Session) Regenerate() { s.render(s.Score()) }

// declined logs a rejected intent and passes the error through.
func (s *Session) declined(op string, err error) error {
	s.log.DebugContext(s.ctx, "intent declined", slog.String("op", op), slog.String("reason", domain.Reason(err)), slog.Any("err", err))
	return err
}
