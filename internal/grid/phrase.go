/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import (
	"fmt"
	"strconv"
	"strings"

	"notegrid/internal/domain"
)

// ParsePhrase reads a comma separated list of "col:row:dur" triples, e.g. "0:3:q,2:4:8".
// The duration part is optional and defaults to an eighth.
func ParsePhrase(s string) ([]domain.PlacedNote, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []domain.PlacedNote
	for i, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("phrase item %d %q: want col:row[:dur]", i+1, item)
		}
		col, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("phrase item %d: column: %w", i+1, err)
		}
		row, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("phrase item %d: row: %w", i+1, err)
		}
		if !domain.ValidRow(row) {
			return nil, fmt.Errorf("phrase item %d: %w", i+1, &domain.PlacementError{Column: col, Row: row, Err: domain.ErrRowOutOfRange})
		}
		d := domain.Eighth
		if len(parts) == 3 {
			if d, err = domain.ParseDuration(parts[2]); err != nil {
				return nil, fmt.Errorf("phrase item %d: %w", i+1, err)
			}
		}
		out = append(out, domain.PlacedNote{Column: col, NoteEntry: domain.NoteEntry{Row: row, Duration: d, SpanOrigin: true}})
	}
	return out, nil
}

// FormatPhrase is the inverse of ParsePhrase.
func FormatPhrase(notes []domain.PlacedNote) string {
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		parts = append(parts, fmt.Sprintf("%d:%d:%s", n.Column, n.Row, n.Duration))
	}
	return strings.Join(parts, ",")
}

// Apply places every note in order. It stops at the first rejected placement.
func (s *Store) Apply(notes []domain.PlacedNote) error {
	for _, n := range notes {
		if !domain.ValidRow(n.Row) {
			return &domain.PlacementError{Column: n.Column, Row: n.Row, Duration: n.Duration, Err: domain.ErrRowOutOfRange}
		}
		if err := s.Place(n.Column, n.Row, n.Duration); err != nil {
			return err
		}
	}
	return nil
}

// String renders the grid as rows of text, one character per column, for logs and crash reports.
func (s *Store) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d columns\n", s.ts, len(s.cells))
	per := s.ts.EighthsPerMeasure()
	for row := 0; row < domain.Rows; row++ {
		fmt.Fprintf(&b, "%-3s ", domain.Solfege(row))
		for c := range s.cells {
			if c > 0 && c%per == 0 {
				b.WriteByte('|')
			}
			switch {
			case s.cells[c].HasNote && s.cells[c].Note.Row == row:
				b.WriteString(string(s.cells[c].Note.Duration))
			case s.Selected(c, row):
				b.WriteByte('-')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
