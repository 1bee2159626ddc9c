/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package notation

import (
	"math"
	"reflect"
	"testing"

	"notegrid/internal/domain"
	"notegrid/internal/grid"
)

func TestEmptyGridYieldsFullMeasureRests(t *testing.T) {
	for _, tc := range []struct {
		ts   domain.TimeSignature
		rest domain.Duration
	}{{domain.FourFour, domain.Whole}, {domain.ThreeFour, domain.Half}} {
		score := Layout(grid.New(tc.ts).Snapshot(), domain.NoDynamic, Options{})
		if len(score.Measures) != 4 {
			t.Fatalf("%s: measures = %d", tc.ts, len(score.Measures))
		}
		for i, m := range score.Measures {
			if len(m.Tokens) != 1 || !m.Tokens[0].Rest || !m.Tokens[0].FullMeasure || m.Tokens[0].Duration != tc.rest {
				t.Fatalf("%s measure %d tokens = %+v", tc.ts, i, m.Tokens)
			}
		}
	}
}

func TestQuarterThenEighthRests(t *testing.T) {
	g := grid.New(domain.FourFour)
	if err := g.Place(0, 3, domain.Quarter); err != nil {
		t.Fatalf("place: %v", err)
	}
	m0 := Layout(g.Snapshot(), domain.NoDynamic, Options{}).Measures[0]
	if len(m0.Tokens) != 7 {
		t.Fatalf("tokens = %d, want 7", len(m0.Tokens))
	}
	first := m0.Tokens[0]
	if first.Rest || first.Duration != domain.Quarter || first.Key != "g/4" || first.Row != 3 {
		t.Fatalf("first token = %+v", first)
	}
	for i, tok := range m0.Tokens[1:] {
		if !tok.Rest || tok.Duration != domain.Eighth || tok.FullMeasure {
			t.Fatalf("token %d = %+v", i+1, tok)
		}
	}
	if m0.Durations() != 8 {
		t.Fatalf("measure sums to %d eighths", m0.Durations())
	}
}

func TestLayoutIsDeterministic(t *testing.T) {
	g := grid.New(domain.ThreeFour)
	for _, n := range []struct {
		col, row int
		d        domain.Duration
	}{{0, 0, domain.Half}, {4, 7, domain.Eighth}, {6, 2, domain.Quarter}, {12, 5, domain.Half}} {
		if err := g.Place(n.col, n.row, n.d); err != nil {
			t.Fatalf("place: %v", err)
		}
	}
	a := Layout(g.Snapshot(), domain.Forte, Options{GridWidth: 900})
	b := Layout(g.Snapshot(), domain.Forte, Options{GridWidth: 900})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("layout not idempotent")
	}
	if a.Measures[0].Annotation != "f" {
		t.Fatalf("annotation = %q", a.Measures[0].Annotation)
	}
	for _, m := range a.Measures[1:] {
		if m.Annotation != "" {
			t.Fatalf("annotation on measure %d", m.Index)
		}
	}
}

func TestStaleSpanIsClamped(t *testing.T) {
	snap := grid.New(domain.ThreeFour).Snapshot()
	// a whole note left at column 2 from a 4/4 grid
	snap.Cells[2] = domain.Cell{Note: domain.NoteEntry{Row: 1, Duration: domain.Whole, SpanOrigin: true}, HasNote: true, CoveredBy: -1}
	m0 := Layout(snap, domain.NoDynamic, Options{}).Measures[0]
	want := []domain.Duration{domain.Eighth, domain.Eighth, domain.Half}
	if len(m0.Tokens) != len(want) {
		t.Fatalf("tokens = %+v", m0.Tokens)
	}
	for i, d := range want {
		if m0.Tokens[i].Duration != d {
			t.Fatalf("token %d duration = %s, want %s", i, m0.Tokens[i].Duration, d)
		}
	}
	if m0.Durations() != 6 {
		t.Fatalf("clamped measure sums to %d", m0.Durations())
	}
}

func TestMeasureWidthHint(t *testing.T) {
	got := MeasureWidthHint(0, 4)
	want := (1280.0 - 80) / 4 * 1.03
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("hint = %v, want %v", got, want)
	}
	if MeasureWidthHint(500, 0) != (500.0-80)/4*1.03 {
		t.Fatalf("zero measures should fall back to four")
	}
}

func TestRendererFunc(t *testing.T) {
	var got Score
	r := RendererFunc(func(s Score) error { got = s; return nil })
	want := Layout(grid.New(domain.FourFour).Snapshot(), domain.Piano, Options{})
	if err := r.Render(want); err != nil || !reflect.DeepEqual(got, want) {
		t.Fatalf("renderer func did not pass the score through")
	}
}

func TestUnknownDurationReadsAsEighth(t *testing.T) {
	snap := grid.New(domain.FourFour).Snapshot()
	snap.Cells[0] = domain.Cell{Note: domain.NoteEntry{Row: 4, SpanOrigin: true}, HasNote: true, CoveredBy: -1}
	m0 := Layout(snap, domain.NoDynamic, Options{}).Measures[0]
	if len(m0.Tokens) != 8 {
		t.Fatalf("tokens = %+v", m0.Tokens)
	}
	if tok := m0.Tokens[0]; tok.Rest || tok.Duration != domain.Eighth || tok.Key != "f/4" {
		t.Fatalf("first token = %+v", tok)
	}
	if m0.Durations() != 8 {
		t.Fatalf("measure sums to %d", m0.Durations())
	}
}
