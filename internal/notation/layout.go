/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package notation derives staff measures from the grid. Layout is a pure function; drawing is
// left to a Renderer.
package notation

import (
	"notegrid/internal/domain"
	"notegrid/internal/grid"
)

// DefaultGridWidth is the grid width, in pixels, assumed when the caller has none.
const DefaultGridWidth = 1280.0

// Token is one staff symbol. Rests carry Row -1 and no Key.
type Token struct {
	Rest        bool            `json:"rest"`
	Key         string          `json:"key,omitempty"`
	Row         int             `json:"row"`
	Duration    domain.Duration `json:"duration"`
	FullMeasure bool            `json:"fullMeasure,omitempty"`
}

// Measure is the token run of one measure.
type Measure struct {
	Index      int     `json:"index"`
	Tokens     []Token `json:"tokens"`
	Annotation string  `json:"annotation,omitempty"`
}

// Score is the payload handed to a Renderer.
type Score struct {
	TimeSignature    domain.TimeSignature `json:"timeSignature"`
	MeasureWidthHint float64              `json:"measureWidthHint"`
	Measures         []Measure            `json:"measures"`
}

// Options tunes presentation hints only; tokens never depend on it.
type Options struct {
	GridWidth float64
}

// Renderer draws a score. Implementations live in the export and front-end packages.
type Renderer interface {
	Render(score Score) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Score) error

func (f RendererFunc) Render(s Score) error { return f(s) }

// Layout turns a grid snapshot and dynamic marking into staff measures.
func Layout(snap grid.Snapshot, dyn domain.Dynamic, opts Options) Score {
	ts := snap.TimeSignature
	if !ts.Valid() {
		ts = domain.DefaultTimeSignature
	}
	per := ts.EighthsPerMeasure()
	count := (len(snap.Cells) + per - 1) / per
	score := Score{
		TimeSignature:    ts,
		MeasureWidthHint: MeasureWidthHint(opts.GridWidth, count),
		Measures:         make([]Measure, 0, count),
	}
	for m := 0; m < count; m++ {
		measure := Measure{Index: m, Tokens: layoutMeasure(snap.Cells, m*per, per, ts)}
		if m == 0 && dyn != domain.NoDynamic {
			measure.Annotation = string(dyn)
		}
		score.Measures = append(score.Measures, measure)
	}
	return score
}

// MeasureWidthHint spreads the grid width, minus clef and margin, over the measures.
func MeasureWidthHint(gridWidth float64, measures int) float64 {
	if gridWidth <= 0 {
		gridWidth = DefaultGridWidth
	}
	if measures <= 0 {
		measures = domain.MeasuresPerGrid
	}
	return (gridWidth - 60 - 20) / float64(measures) * 1.03
}

func layoutMeasure(cells []domain.Cell, start, per int, ts domain.TimeSignature) []Token {
	end := start + per
	hasOrigin := false
	for c := start; c < end && c < len(cells); c++ {
		if cells[c].HasNote {
			hasOrigin = true
			break
		}
	}
	if !hasOrigin {
		return []Token{{Rest: true, Row: -1, Duration: ts.FullMeasureRest(), FullMeasure: true}}
	}
	var tokens []Token
	for c := start; c < end; {
		if c >= len(cells) || !cells[c].HasNote {
			// uncovered columns and stale cover marks both read as silence
			tokens = append(tokens, Token{Rest: true, Row: -1, Duration: domain.Eighth})
			c++
			continue
		}
		note := cells[c].Note
		d := clamp(note.Duration, end-c)
		tokens = append(tokens, Token{Key: domain.StaffKey(note.Row), Row: note.Row, Duration: d})
		c += d.Span()
	}
	return tokens
}

// clamp shortens d to the largest of half, quarter, eighth that fits in remaining columns. An
// unrecognised duration reads as an eighth.
func clamp(d domain.Duration, remaining int) domain.Duration {
	if !d.Valid() {
		return domain.Eighth
	}
	if d.Span() <= remaining {
		return d
	}
	for _, cand := range []domain.Duration{domain.Half, domain.Quarter, domain.Eighth} {
		if cand.Span() <= remaining {
			return cand
		}
	}
	return domain.Eighth
}

// Durations sums a token run in eighth columns.
func (m Measure) Durations() int {
	n := 0
	for _, t := range m.Tokens {
		n += t.Duration.Span()
	}
	return n
}
