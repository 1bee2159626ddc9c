/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import (
	"notegrid/internal/domain"
)

// MeasureInfo describes the measure containing a column. EndColumn is exclusive.
type MeasureInfo struct {
	Index       int `json:"index"`
	StartColumn int `json:"startColumn"`
	EndColumn   int `json:"endColumn"`
	Capacity    int `json:"capacity"`
}

// MeasureOf is derived purely from the meter.
func MeasureOf(ts domain.TimeSignature, col int) MeasureInfo {
	per := ts.EighthsPerMeasure()
	idx := col / per
	return MeasureInfo{Index: idx, StartColumn: idx * per, EndColumn: idx*per + per, Capacity: per}
}

// MeasureInfo returns the measure containing col under the active meter.
func (s *Store) MeasureInfo(col int) MeasureInfo { return MeasureOf(s.ts, col) }

// Measures is the number of measures in the grid.
func (s *Store) Measures() int { return len(s.cells) / s.ts.EighthsPerMeasure() }

// Check answers whether Place(col,row,d) would succeed without touching the grid.
func (s *Store) Check(col, row int, d domain.Duration) error {
	fail := func(err error) error {
		return &domain.PlacementError{Column: col, Row: row, Duration: d, Err: err}
	}
	if !domain.ValidRow(row) {
		assertRow(row)
		return fail(domain.ErrRowOutOfRange)
	}
	if col < 0 || col >= len(s.cells) {
		return fail(domain.ErrColumnOutOfRange)
	}
	if !d.Valid() {
		return fail(domain.ErrInvalidDuration)
	}
	m := s.MeasureInfo(col)
	if col+d.Span() > m.EndColumn {
		return fail(domain.ErrCrossesMeasureBoundary)
	}
	if s.FilledColumns(m.Index)+d.Span() > m.Capacity {
		return fail(domain.ErrMeasureFull)
	}
	if s.cells[col].Occupied() {
		return fail(domain.ErrSpanOccupied)
	}
	return nil
}

// MeasureFull reports whether no further column can be filled in the measure containing col.
func (s *Store) MeasureFull(col int) bool {
	m := s.MeasureInfo(col)
	return s.FilledColumns(m.Index) >= m.Capacity
}

// MaxFittingDuration returns the largest duration that can be placed at col without crossing the
// measure boundary, overflowing the measure or displacing another note. ok is false when not even
// an eighth fits. Choices may enable longer durations that replace notes inside their span.
func (s *Store) MaxFittingDuration(col int) (d domain.Duration, ok bool) {
	for i := len(domain.Durations) - 1; i >= 0; i-- {
		cand := domain.Durations[i]
		if s.fitsFree(col, cand) {
			return cand, true
		}
	}
	return "", false
}

func (s *Store) fitsFree(col int, d domain.Duration) bool {
	if s.Check(col, 0, d) != nil {
		return false
	}
	for c := col; c < col+d.Span(); c++ {
		if !s.cells[c].Empty() {
			return false
		}
	}
	return true
}

// DurationOption is one entry of the duration menu.
type DurationOption struct {
	Duration domain.Duration `json:"duration"`
	Label    string          `json:"label"`
	Enabled  bool            `json:"enabled"`
	// Reason is the reason code when disabled.
	Reason string `json:"reason,omitempty"`
	// Note is the short hint shown next to a disabled label.
	Note string `json:"note,omitempty"`
}

// DurationChoice lists every duration for a pending placement. The engine never picks one.
type DurationChoice struct {
	Column  int              `json:"column"`
	Row     int              `json:"row"`
	Measure MeasureInfo      `json:"measure"`
	Options []DurationOption `json:"options"`
}

// Enabled returns the selectable durations, shortest first.
func (c DurationChoice) Enabled() []domain.Duration {
	var out []domain.Duration
	for _, o := range c.Options {
		if o.Enabled {
			out = append(out, o.Duration)
		}
	}
	return out
}

// Allows reports whether d is selectable.
func (c DurationChoice) Allows(d domain.Duration) bool {
	for _, o := range c.Options {
		if o.Duration == d {
			return o.Enabled
		}
	}
	return false
}

// Choices builds the duration menu for (col,row).
func (s *Store) Choices(col, row int) DurationChoice {
	choice := DurationChoice{Column: col, Row: row, Measure: s.MeasureInfo(col)}
	for _, d := range domain.Durations {
		opt := DurationOption{Duration: d, Label: d.Label(), Enabled: true}
		if err := s.Check(col, row, d); err != nil {
			opt.Enabled = false
			opt.Reason = domain.Reason(err)
			opt.Note = hint(opt.Reason)
		}
		choice.Options = append(choice.Options, opt)
	}
	return choice
}

func hint(reason string) string {
	switch reason {
	case domain.ReasonCrossesMeasureBoundary:
		return "crosses measure"
	case domain.ReasonMeasureFull:
		return "measure full"
	case domain.ReasonSpanOccupied:
		return "inside another note"
	default:
		return ""
	}
}
