/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"strings"
)

// This file defines the core value types shared by the grid, notation, playback and history
// packages. They are plain values so that a grid snapshot is a deep copy by construction.

// Rows is the number of pitch rows in the grid (one diatonic octave, top row highest).
const Rows = 8

// Duration is a note length expressed by its notation code.
type Duration string

const (
	Eighth  Duration = "8"
	Quarter Duration = "q"
	Half    Duration = "h"
	Whole   Duration = "w"
)

// Durations lists the recognised durations from shortest to longest.
var Durations = []Duration{Eighth, Quarter, Half, Whole}

// Span returns the number of eighth-note columns the duration occupies, or 0 for an unknown value.
func (d Duration) Span() int {
	switch d {
	case Eighth:
		return 1
	case Quarter:
		return 2
	case Half:
		return 4
	case Whole:
		return 8
	default:
		return 0
	}
}

// Valid reports whether d is one of the four recognised durations.
func (d Duration) Valid() bool { return d.Span() > 0 }

// Label is the fraction shown in duration menus.
func (d Duration) Label() string {
	switch d {
	case Eighth:
		return "1/8"
	case Quarter:
		return "1/4"
	case Half:
		return "1/2"
	case Whole:
		return "1"
	default:
		return string(d)
	}
}

// ParseDuration accepts the notation code ("8", "q", "h", "w"), the menu label ("1/8") or the
// English name ("eighth").
func ParseDuration(s string) (Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "8", "1/8", "eighth":
		return Eighth, nil
	case "q", "4", "1/4", "quarter":
		return Quarter, nil
	case "h", "2", "1/2", "half":
		return Half, nil
	case "w", "1", "whole":
		return Whole, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDuration, s)
}

// DurationForSpan returns the duration whose span is exactly n columns.
func DurationForSpan(n int) (Duration, bool) {
	for _, d := range Durations {
		if d.Span() == n {
			return d, true
		}
	}
	return "", false
}

// TimeSignature is one of the supported meters.
type TimeSignature string

const (
	FourFour  TimeSignature = "4/4"
	ThreeFour TimeSignature = "3/4"
)

// DefaultTimeSignature is used for new grids and by reset.
const DefaultTimeSignature = FourFour

// MeasuresPerGrid is fixed for every meter; the column count follows from it.
const MeasuresPerGrid = 4

// ParseTimeSignature validates a meter string.
func ParseTimeSignature(s string) (TimeSignature, error) {
	ts := TimeSignature(strings.TrimSpace(s))
	if !ts.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeSignature, s)
	}
	return ts, nil
}

func (ts TimeSignature) Valid() bool { return ts == FourFour || ts == ThreeFour }

// BeatsPerMeasure is the numerator of the meter (quarter-note beats).
func (ts TimeSignature) BeatsPerMeasure() int {
	if ts == ThreeFour {
		return 3
	}
	return 4
}

// EighthsPerMeasure is the measure capacity in columns.
func (ts TimeSignature) EighthsPerMeasure() int { return ts.BeatsPerMeasure() * 2 }

// Columns is the grid length for the meter (32 for 4/4, 24 for 3/4).
func (ts TimeSignature) Columns() int { return ts.EighthsPerMeasure() * MeasuresPerGrid }

// FullMeasureRest is the rest duration drawn for an empty measure.
func (ts TimeSignature) FullMeasureRest() Duration {
	if ts == ThreeFour {
		return Half
	}
	return Whole
}

// NoteEntry is the authoritative record stored at a span origin.
type NoteEntry struct {
	Row        int      `json:"row"`
	Duration   Duration `json:"duration"`
	SpanOrigin bool     `json:"start"`
}

// Span is the number of columns the entry occupies.
func (n NoteEntry) Span() int { return n.Duration.Span() }

// Cell is one grid column. A cell either holds a note (HasNote) or is covered by the span of the
// origin at CoveredBy, or is empty (CoveredBy == -1).
type Cell struct {
	Note      NoteEntry `json:"note"`
	HasNote   bool      `json:"hasNote"`
	CoveredBy int       `json:"coveredBy"`
}

// EmptyCell returns a cell with no note and no covering span.
func EmptyCell() Cell { return Cell{CoveredBy: -1} }

// Empty reports whether no note starts in or covers the cell.
func (c Cell) Empty() bool { return !c.HasNote && c.CoveredBy < 0 }

// Occupied reports whether the cell lies inside another note's span.
func (c Cell) Occupied() bool { return !c.HasNote && c.CoveredBy >= 0 }

// PlacedNote is a note together with its origin column, as read by playback and front ends.
type PlacedNote struct {
	Column int
	NoteEntry
}
