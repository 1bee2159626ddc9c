/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"fmt"
	"log/slog"
	"strings"

	"notegrid/internal/domain"
	"notegrid/internal/grid"
)

// mutate runs fn under the lock, records the pre-mutation state when fn reports a change and
// renders afterwards when render is set.
func (s *Session) mutate(kind string, render bool, fn func() (bool, error)) error {
	s.mu.Lock()
	before := s.capture(kind)
	changed, err := fn()
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.hist.Record(before)
	score := s.scoreLocked()
	s.mu.Unlock()
	if render {
		s.render(score)
	}
	return nil
}

// RequestPlaceNote opens the duration choice for an empty cell. Nothing is placed; the caller
// shows the options and commits one with RequestDurationChoice. The request is declined when the
// cell already belongs to another note or the measure has no room left.
func (s *Session) RequestPlaceNote(col, row int) (grid.DurationChoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.precheck(col, row); err != nil {
		return grid.DurationChoice{}, s.declined("request-place", err)
	}
	if s.grid.MeasureFull(col) {
		err := &domain.PlacementError{Column: col, Row: row, Err: domain.ErrMeasureFull}
		return grid.DurationChoice{}, s.declined("request-place", err)
	}
	return s.grid.Choices(col, row), nil
}

func (s *Session) precheck(col, row int) error {
	if !domain.ValidRow(row) {
		return &domain.PlacementError{Column: col, Row: row, Err: domain.ErrRowOutOfRange}
	}
	if col < 0 || col >= s.grid.Len() {
		return &domain.PlacementError{Column: col, Row: row, Err: domain.ErrColumnOutOfRange}
	}
	return nil
}

// RequestDurationChoice commits a note of duration d at (col,row). The chosen duration becomes the
// one reused while painting.
func (s *Session) RequestDurationChoice(col, row int, d domain.Duration) error {
	return s.place(col, row, d, true)
}

func (s *Session) place(col, row int, d domain.Duration, render bool) error {
	err := s.mutate("", render, func() (bool, error) {
		if err := s.precheck(col, row); err != nil {
			return false, err
		}
		if err := s.grid.Place(col, row, d); err != nil {
			return false, err
		}
		s.last = d
		return true, nil
	})
	if err != nil {
		return s.declined("place", err)
	}
	s.log.DebugContext(s.ctx, "note placed", slog.Int("col", col), slog.Int("row", row), slog.String("dur", string(d)))
	return nil
}

// RequestRemoveNote removes the note lit at (col,row) and reports whether one was removed.
func (s *Session) RequestRemoveNote(col, row int) bool {
	return s.remove(col, row, true)
}

func (s *Session) remove(col, row int, render bool) bool {
	removed := false
	_ = s.mutate("", render, func() (bool, error) {
		removed = s.grid.Remove(col, row)
		return removed, nil
	})
	return removed
}

// ResizeNote changes the note lit at (anchorCol,row) to the shortest duration that reaches toCol
// and still fits its measure. When no duration reaching toCol fits, the longest one that fits is
// used instead. It reports whether the note changed.
func (s *Session) ResizeNote(anchorCol, row, toCol int) bool {
	return s.resize(anchorCol, row, toCol, true)
}

func (s *Session) resize(anchorCol, row, toCol int, render bool) bool {
	changed := false
	_ = s.mutate("", render, func() (bool, error) {
		origin, note, ok := s.noteLitAt(anchorCol, row)
		if !ok {
			return false, nil
		}
		need := toCol - origin + 1
		saved := s.grid.Snapshot()
		s.grid.Remove(origin, row)
		var pick domain.Duration
		for _, d := range domain.Durations {
			if s.grid.Check(origin, row, d) != nil {
				continue
			}
			pick = d
			if d.Span() >= need {
				break
			}
		}
		if pick == "" || pick == note.Duration {
			s.grid.Restore(saved)
			return false, nil
		}
		if err := s.grid.Place(origin, row, pick); err != nil {
			s.grid.Restore(saved)
			return false, nil
		}
		changed = true
		return true, nil
	})
	return changed
}

// noteLitAt finds the origin of the note covering col in row.
func (s *Session) noteLitAt(col, row int) (int, domain.NoteEntry, bool) {
	if !s.grid.Selected(col, row) {
		return 0, domain.NoteEntry{}, false
	}
	for c := col; c >= 0; c-- {
		if n, ok := s.grid.NoteAt(c); ok {
			return c, n, true
		}
	}
	return 0, domain.NoteEntry{}, false
}

// ChangeTimeSignature rebuilds the grid for ts, discarding every note. Choosing the active meter
// again is a no-op.
func (s *Session) ChangeTimeSignature(ts domain.TimeSignature) error {
	if !ts.Valid() {
		return s.declined("time-signature", fmt.Errorf("%w: %q", domain.ErrInvalidTimeSignature, ts))
	}
	changed := false
	err := s.mutate("", true, func() (bool, error) {
		if s.grid.TimeSignature() == ts {
			return false, nil
		}
		s.grid.Rebuild(ts)
		changed = true
		return true, nil
	})
	if changed {
		s.log.InfoContext(s.ctx, "time signature changed", slog.String("ts", string(ts)))
	}
	return err
}

// ChangeTempo sets the tempo, clamped to the supported range. Rapid changes coalesce into one
// undo step. The running scheduler picks the new tempo up on its next step.
func (s *Session) ChangeTempo(bpm int) int {
	bpm = domain.ClampTempo(bpm)
	_ = s.mutate("tempo", true, func() (bool, error) {
		if s.tempo == bpm {
			return false, nil
		}
		s.tempo = bpm
		return true, nil
	})
	return bpm
}

// SetDynamicMarking sets the marking shown on the first measure and the synth volume.
func (s *Session) SetDynamicMarking(d domain.Dynamic) error {
	d, err := domain.ParseDynamic(string(d))
	if err != nil {
		return s.declined("dynamic", err)
	}
	return s.mutate("dynamic", true, func() (bool, error) {
		if s.dyn == d {
			return false, nil
		}
		s.setDynamicLocked(d)
		return true, nil
	})
}

// TogglePlayback starts or stops the scheduler and reports whether it is now running.
func (s *Session) TogglePlayback() bool {
	running := s.sched.Toggle()
	s.log.InfoContext(s.ctx, "playback toggled", slog.Bool("running", running))
	return running
}

// ResetScope selects what Reset restores.
type ResetScope string

const (
	ResetAll           ResetScope = "all"
	ResetNotes         ResetScope = "notes"
	ResetTempo         ResetScope = "tempo"
	ResetTimeSignature ResetScope = "time-signature"
	ResetDynamics      ResetScope = "dynamics"
)

// ResetScopes lists the valid scopes.
var ResetScopes = []ResetScope{ResetAll, ResetNotes, ResetTempo, ResetTimeSignature, ResetDynamics}

// ParseResetScope accepts a scope name; the empty string means all.
func ParseResetScope(s string) (ResetScope, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ResetAll, nil
	}
	for _, sc := range ResetScopes {
		if string(sc) == s {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown reset scope %q", s)
}

// Reset stops playback and restores the defaults of the selected scope. The previous state stays
// reachable through Undo.
func (s *Session) Reset(scope ResetScope) error {
	scope, err := ParseResetScope(string(scope))
	if err != nil {
		return err
	}
	s.sched.Stop()
	err = s.mutate("", true, func() (bool, error) {
		if scope == ResetAll || scope == ResetNotes {
			s.grid.Clear()
		}
		if (scope == ResetAll || scope == ResetTimeSignature) && s.grid.TimeSignature() != domain.DefaultTimeSignature {
			s.grid.Rebuild(domain.DefaultTimeSignature)
		}
		if scope == ResetAll || scope == ResetTempo {
			s.tempo = domain.DefaultTempo
		}
		if scope == ResetAll || scope == ResetDynamics {
			s.setDynamicLocked(domain.NoDynamic)
		}
		return true, nil
	})
	s.log.InfoContext(s.ctx, "reset", slog.String("scope", string(scope)))
	return err
}

// Undo restores the state before the last change.
func (s *Session) Undo() error { return s.travel("undo", true) }

// Redo reapplies the last undone change.
func (s *Session) Redo() error { return s.travel("redo", false) }

func (s *Session) travel(op string, back bool) error {
	s.mu.Lock()
	current := s.capture("")
	var err error
	if back {
		current, err = s.hist.Undo(current)
	} else {
		current, err = s.hist.Redo(current)
	}
	if err != nil {
		s.mu.Unlock()
		return s.declined(op, err)
	}
	s.apply(current)
	score := s.scoreLocked()
	s.mu.Unlock()
	s.render(score)
	return nil
}

// LoadPhrase replaces the notes with a "col:row:dur" phrase. It is one undo step.
func (s *Session) LoadPhrase(phrase string) error {
	notes, err := grid.ParsePhrase(phrase)
	if err != nil {
		return s.declined("load-phrase", err)
	}
	return s.mutate("", true, func() (bool, error) {
		saved := s.grid.Snapshot()
		s.grid.Clear()
		if err := s.grid.Apply(notes); err != nil {
			s.grid.Restore(saved)
			return false, err
		}
		return true, nil
	})
}
