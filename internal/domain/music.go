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

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Row tables, index 0 is the top (highest) row.
var (
	solfege     = [Rows]string{"Do", "Ti", "La", "Sol", "Fa", "Mi", "Re", "Do"}
	midiPitches = [Rows]int{60, 59, 57, 55, 53, 52, 50, 48}
	staffKeys   = [Rows]string{"c/5", "b/4", "a/4", "g/4", "f/4", "e/4", "d/4", "c/4"}
	rowColors   = [Rows]string{"#e33059", "#ea57b2", "#5b37cc", "#11826d", "#95c631", "#edd929", "#f7943d", "#e33059"}
)

// ValidRow reports whether row addresses one of the grid rows.
func ValidRow(row int) bool { return row >= 0 && row < Rows }

// MIDIPitch returns the sounding pitch for a row.
func MIDIPitch(row int) int { return midiPitches[row] }

// StaffKey returns the notated key ("c/5") for a row.
func StaffKey(row int) string { return staffKeys[row] }

// Solfege returns the row label shown next to the grid.
func Solfege(row int) string { return solfege[row] }

// RowColor returns the hex colour of a row.
func RowColor(row int) string { return rowColors[row] }

// StaffStep is the diatonic distance of a row's notated pitch above the bottom staff line (E4).
// c/4 is -2 (ledger line below), c/5 is 5 (third space).
func StaffStep(row int) int { return (Rows - 1 - row) - 2 }

// Dynamic is a dynamic marking; the empty value means none.
type Dynamic string

const (
	NoDynamic  Dynamic = ""
	Pianissimo Dynamic = "pp"
	Piano      Dynamic = "p"
	MezzoPiano Dynamic = "mp"
	MezzoForte Dynamic = "mf"
	Forte      Dynamic = "f"
	Fortissimo Dynamic = "ff"
)

type dynamicInfo struct {
	name     string
	velocity float64
}

var dynamics = map[Dynamic]dynamicInfo{
	Pianissimo: {"pianissimo", 0.2},
	Piano:      {"piano", 0.4},
	MezzoPiano: {"mezzo-piano", 0.6},
	MezzoForte: {"mezzo-forte", 0.7},
	Forte:      {"forte", 0.8},
	Fortissimo: {"fortissimo", 1.0},
}

// Dynamics lists the markings from softest to loudest.
var Dynamics = []Dynamic{Pianissimo, Piano, MezzoPiano, MezzoForte, Forte, Fortissimo}

// ParseDynamic accepts "" (none) or one of the markings.
func ParseDynamic(s string) (Dynamic, error) {
	d := Dynamic(strings.ToLower(strings.TrimSpace(s)))
	if d == NoDynamic {
		return d, nil
	}
	if _, ok := dynamics[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDynamic, s)
	}
	return d, nil
}

// Name is the Italian term, lower case.
func (d Dynamic) Name() string { return dynamics[d].name }

// Title is the display form of Name ("Mezzo-Forte").
func (d Dynamic) Title() string {
	if d == NoDynamic {
		return ""
	}
	return cases.Title(language.Italian).String(d.Name())
}

// Velocity is the playback level associated with the marking; 1 when there is none.
func (d Dynamic) Velocity() float64 {
	if info, ok := dynamics[d]; ok {
		return info.velocity
	}
	return 1
}

// Tempo bounds in BPM.
const (
	MinTempo     = 40
	MaxTempo     = 208
	DefaultTempo = 120
)

// ClampTempo keeps bpm within the supported range.
func ClampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}

var tempoTerms = []struct {
	max  int
	term string
}{
	{40, "Grave"},
	{60, "Largo"},
	{76, "Adagio"},
	{108, "Andante"},
	{120, "Moderato"},
	{168, "Allegro"},
	{200, "Presto"},
	{300, "Prestissimo"},
}

// TempoTerm returns the Italian tempo indication for bpm.
func TempoTerm(bpm int) string {
	for _, t := range tempoTerms {
		if bpm <= t.max {
			return t.term
		}
	}
	return "Allegro"
}
