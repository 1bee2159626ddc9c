/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package playback steps through grid columns on a timer and sends sounding notes to a synth.
package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"notegrid/internal/domain"
	applog "notegrid/internal/log"
)

// Defaults for Config.
const (
	DefaultVelocity  = 0.8
	DefaultWrapPause = 50 * time.Millisecond
)

// NoteEvent is one sounding note handed to a synth.
type NoteEvent struct {
	Row      int
	Pitch    int
	Velocity float64
	Duration time.Duration
}

// Synth plays notes. PlayNote must not block; errors are logged and playback continues.
type Synth interface {
	PlayNote(ev NoteEvent) error
}

// SynthFunc adapts a function to Synth.
type SynthFunc func(NoteEvent) error

func (f SynthFunc) PlayNote(ev NoteEvent) error { return f(ev) }

// Source is the grid view read on every step. Calls happen with the scheduler's locker held.
type Source interface {
	Tempo() int
	Len() int
	NoteAt(col int) (domain.NoteEntry, bool)
}

// Progress is emitted once per step.
type Progress struct {
	Running bool
	// Column is now playing, Next is up next; both -1 when stopped.
	Column int
	Next   int
	// Fraction is Column/total in [0,1).
	Fraction float64
}

// Sleeper waits for d or until ctx is done, returning ctx.Err() when cancelled.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-time Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Config struct {
	Velocity float64
	// WrapPause is the silence before looping back to column 0; zero means the default,
	// negative disables it.
	WrapPause time.Duration
	Sleep     Sleeper
	// OnProgress is called from the playback goroutine without the source lock held. It must not
	// call Stop.
	OnProgress func(Progress)
}

// Scheduler is the Stopped/Running machine driving playback.
type Scheduler struct {
	src   Source
	lock  sync.Locker
	synth Synth
	cfg   Config
	log   *slog.Logger

	// emitMu orders progress updates so the one published by Stop comes last.
	emitMu sync.Mutex

	mu      sync.Mutex
	running bool
	gen     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	cursor  int
}

// New builds a stopped scheduler. lock guards src and is taken for the duration of each step.
func New(src Source, lock sync.Locker, synth Synth, cfg Config) *Scheduler {
	if cfg.Velocity <= 0 || cfg.Velocity > 1 {
		cfg.Velocity = DefaultVelocity
	}
	if cfg.WrapPause == 0 {
		cfg.WrapPause = DefaultWrapPause
	}
	if cfg.Sleep == nil {
		cfg.Sleep = Sleep
	}
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &Scheduler{src: src, lock: lock, synth: synth, cfg: cfg, log: applog.WithComponent("playback")}
}

// StepDelay is the time one column lasts at bpm, scaled by the span of a note starting there.
func StepDelay(bpm, span int) time.Duration {
	if bpm <= 0 {
		bpm = domain.DefaultTempo
	}
	if span < 1 {
		span = 1
	}
	base := 60000.0 / float64(bpm*4)
	return time.Duration(base * float64(span) * float64(time.Millisecond))
}

// Start moves to Running from column 0. It is a no-op when already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.gen++
	s.cancel = cancel
	s.cursor = 0
	s.done = make(chan struct{})
	go s.run(ctx, s.gen, s.done)
	s.log.Info("playback started")
	return true
}

// Stop moves to Stopped. The pending delay is cancelled and no further note sounds, even if the
// loop is blocked waiting for the locker or reading the grid. Stop waits for a note already being
// sent to the synth but not for the loop to exit, so it may be called with the locker held.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	s.running = false
	s.gen++
	s.cursor = 0
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.log.Info("playback stopped")
	s.emitMu.Lock()
	s.emit(Progress{Column: -1, Next: -1})
	s.emitMu.Unlock()
	return true
}

// Toggle starts or stops playback and reports the new state.
func (s *Scheduler) Toggle() bool {
	if s.Stop() {
		return false
	}
	return s.Start()
}

// Running reports the current state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Cursor is the column that plays next.
func (s *Scheduler) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Wait blocks until the loop of the last Start has exited.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Scheduler) active(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.gen == gen
}

func (s *Scheduler) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)
	for {
		delay, wrapped, prog, ok := s.step(gen)
		if !ok || !s.emitActive(gen, prog) {
			return
		}
		if err := s.cfg.Sleep(ctx, delay); err != nil {
			return
		}
		if wrapped && s.cfg.WrapPause > 0 {
			if err := s.cfg.Sleep(ctx, s.cfg.WrapPause); err != nil {
				return
			}
		}
	}
}

// step plays one column. ok is false when the scheduler was stopped before the step began.
func (s *Scheduler) step(gen uint64) (delay time.Duration, wrapped bool, prog Progress, ok bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mu.Lock()
	if !s.running || s.gen != gen {
		s.mu.Unlock()
		return 0, false, prog, false
	}
	total := s.src.Len()
	if total <= 0 {
		s.mu.Unlock()
		return StepDelay(s.src.Tempo(), 1), false, Progress{Running: true, Column: -1, Next: -1}, true
	}
	col := s.cursor
	if col >= total {
		col = 0
	}
	next := col + 1
	if next >= total {
		next = 0
		wrapped = true
	}
	s.cursor = next
	s.mu.Unlock()

	prog = Progress{Running: true, Column: col, Next: next, Fraction: float64(col) / float64(total)}
	note, has := s.src.NoteAt(col)
	if !has {
		return StepDelay(s.src.Tempo(), 1), wrapped, prog, true
	}
	delay = StepDelay(s.src.Tempo(), note.Span())
	if s.synth != nil {
		ev := NoteEvent{Row: note.Row, Pitch: domain.MIDIPitch(note.Row), Velocity: s.cfg.Velocity, Duration: delay}
		if !s.sound(gen, ev) {
			return 0, false, prog, false
		}
	}
	return delay, wrapped, prog, true
}

// sound plays ev unless the scheduler was stopped since gen started. Stop waits for a note in
// flight, so nothing sounds once it has returned.
func (s *Scheduler) sound(gen uint64, ev NoteEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.gen != gen {
		return false
	}
	if err := s.synth.PlayNote(ev); err != nil {
		s.log.Warn("synth failed", slog.Int("pitch", ev.Pitch), slog.Any("err", err))
	}
	return true
}

// emitActive publishes p unless the scheduler was stopped since gen started.
func (s *Scheduler) emitActive(gen uint64, p Progress) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if !s.active(gen) {
		return false
	}
	s.emit(p)
	return true
}

func (s *Scheduler) emit(p Progress) {
	if s.cfg.OnProgress != nil {
		s.cfg.OnProgress(p)
	}
}
