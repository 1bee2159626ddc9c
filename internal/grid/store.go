/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package grid holds the note grid and the measure rules that gate every placement.
package grid

import (
	"notegrid/internal/domain"
)

// Store is the authoritative holder of the grid. It is not safe for concurrent use; the session
// serialises access to it.
type Store struct {
	ts    domain.TimeSignature
	cells []domain.Cell
}

// Snapshot is a deep copy of the grid, safe to keep after the store changes.
type Snapshot struct {
	TimeSignature domain.TimeSignature `json:"timeSignature"`
	Cells         []domain.Cell        `json:"cells"`
}

// New returns an empty grid sized for ts. An invalid ts falls back to the default meter.
func New(ts domain.TimeSignature) *Store {
	s := &Store{}
	s.Rebuild(ts)
	return s
}

// Rebuild resizes the grid for ts and discards all notes.
func (s *Store) Rebuild(ts domain.TimeSignature) {
	if !ts.Valid() {
		ts = domain.DefaultTimeSignature
	}
	s.ts = ts
	s.cells = make([]domain.Cell, ts.Columns())
	s.Clear()
}

// TimeSignature returns the active meter.
func (s *Store) TimeSignature() domain.TimeSignature { return s.ts }

// Len returns the column count.
func (s *Store) Len() int { return len(s.cells) }

// Cell returns column col, or an empty cell when col is outside the grid.
func (s *Store) Cell(col int) domain.Cell {
	if col < 0 || col >= len(s.cells) {
		return domain.EmptyCell()
	}
	return s.cells[col]
}

// Cells returns a copy of all columns.
func (s *Store) Cells() []domain.Cell {
	out := make([]domain.Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// Place installs a note of duration d at (col,row). Existing origins inside the new span are
// replaced. A rejected placement leaves the grid untouched and returns a *domain.PlacementError.
func (s *Store) Place(col, row int, d domain.Duration) error {
	if err := s.Check(col, row, d); err != nil {
		return err
	}
	span := d.Span()
	for c := col; c < col+span; c++ {
		if s.cells[c].HasNote {
			s.clearSpan(c)
		}
	}
	s.cells[col] = domain.Cell{
		Note:      domain.NoteEntry{Row: row, Duration: d, SpanOrigin: true},
		HasNote:   true,
		CoveredBy: -1,
	}
	for c := col + 1; c < col+span; c++ {
		s.cells[c] = domain.Cell{CoveredBy: col}
	}
	return nil
}

// Remove deletes the note whose row matches at col. When col lies inside a span, the covering note
// is removed if its row matches. It reports whether anything was removed.
func (s *Store) Remove(col, row int) bool {
	origin, ok := s.originAt(col)
	if !ok || s.cells[origin].Note.Row != row {
		return false
	}
	s.clearSpan(origin)
	return true
}

// Clear empties every column.
func (s *Store) Clear() {
	for i := range s.cells {
		s.cells[i] = domain.EmptyCell()
	}
}

// FilledColumns is the sum of the spans of the notes whose origin lies in measure m.
func (s *Store) FilledColumns(m int) int {
	per := s.ts.EighthsPerMeasure()
	start := m * per
	if m < 0 || start >= len(s.cells) {
		return 0
	}
	filled := 0
	for c := start; c < start+per; c++ {
		if s.cells[c].HasNote {
			filled += s.cells[c].Note.Span()
		}
	}
	return filled
}

// Notes lists every note ordered by column.
func (s *Store) Notes() []domain.PlacedNote {
	var out []domain.PlacedNote
	for c, cell := range s.cells {
		if cell.HasNote {
			out = append(out, domain.PlacedNote{Column: c, NoteEntry: cell.Note})
		}
	}
	return out
}

// NoteAt returns the note originating at col.
func (s *Store) NoteAt(col int) (domain.NoteEntry, bool) {
	if col < 0 || col >= len(s.cells) || !s.cells[col].HasNote {
		return domain.NoteEntry{}, false
	}
	return s.cells[col].Note, true
}

// Selected reports whether the cell at (col,row) is lit: either an origin in that row or covered
// by one.
func (s *Store) Selected(col, row int) bool {
	origin, ok := s.originAt(col)
	return ok && s.cells[origin].Note.Row == row
}

// Snapshot deep-copies the grid.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{TimeSignature: s.ts, Cells: s.Cells()}
}

// Restore replaces the grid with a copy of snap.
func (s *Store) Restore(snap Snapshot) {
	ts := snap.TimeSignature
	if !ts.Valid() {
		ts = domain.DefaultTimeSignature
	}
	s.ts = ts
	s.cells = make([]domain.Cell, ts.Columns())
	for i := range s.cells {
		if i < len(snap.Cells) {
			s.cells[i] = snap.Cells[i]
		} else {
			s.cells[i] = domain.EmptyCell()
		}
	}
}

func (s *Store) originAt(col int) (int, bool) {
	if col < 0 || col >= len(s.cells) {
		return 0, false
	}
	cell := s.cells[col]
	switch {
	case cell.HasNote:
		return col, true
	case cell.CoveredBy >= 0 && cell.CoveredBy < len(s.cells) && s.cells[cell.CoveredBy].HasNote:
		return cell.CoveredBy, true
	}
	return 0, false
}

func (s *Store) clearSpan(origin int) {
	span := s.cells[origin].Note.Span()
	s.cells[origin] = domain.EmptyCell()
	for c := origin + 1; c < origin+span && c < len(s.cells); c++ {
		if s.cells[c].CoveredBy == origin {
			s.cells[c] = domain.EmptyCell()
		}
	}
}
