/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDurationSpans(t *testing.T) {
	cases := []struct {
		d    Duration
		span int
	}{
		{Eighth, 1}, {Quarter, 2}, {Half, 4}, {Whole, 8}, {Duration("x"), 0},
	}
	for _, c := range cases {
		if got := c.d.Span(); got != c.span {
			t.Fatalf("%q.Span() = %d, want %d", c.d, got, c.span)
		}
	}
}

func TestParseDuration(t *testing.T) {
	for in, want := range map[string]Duration{"8": Eighth, "1/4": Quarter, "half": Half, "W": Whole} {
		got, err := ParseDuration(in)
		if err != nil || got != want {
			t.Fatalf("ParseDuration(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDuration("16"); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestTimeSignatureGeometry(t *testing.T) {
	if FourFour.Columns() != 32 || FourFour.EighthsPerMeasure() != 8 || FourFour.FullMeasureRest() != Whole {
		t.Fatalf("unexpected 4/4 geometry")
	}
	if ThreeFour.Columns() != 24 || ThreeFour.EighthsPerMeasure() != 6 || ThreeFour.FullMeasureRest() != Half {
		t.Fatalf("unexpected 3/4 geometry")
	}
	if _, err := ParseTimeSignature("6/8"); !errors.Is(err, ErrInvalidTimeSignature) {
		t.Fatalf("expected ErrInvalidTimeSignature, got %v", err)
	}
}

func TestRowMapping(t *testing.T) {
	if MIDIPitch(0) != 60 || MIDIPitch(7) != 48 {
		t.Fatalf("unexpected pitch mapping")
	}
	if StaffKey(0) != "c/5" || StaffKey(7) != "c/4" {
		t.Fatalf("unexpected staff keys")
	}
	if StaffStep(7) != -2 || StaffStep(0) != 5 {
		t.Fatalf("unexpected staff steps: %d %d", StaffStep(7), StaffStep(0))
	}
}

func TestDynamics(t *testing.T) {
	d, err := ParseDynamic("MF")
	if err != nil || d != MezzoForte {
		t.Fatalf("ParseDynamic: %q %v", d, err)
	}
	if d.Velocity() != 0.7 {
		t.Fatalf("velocity = %v", d.Velocity())
	}
	if got := d.Title(); got != "Mezzo-Forte" {
		t.Fatalf("Title() = %q", got)
	}
	if NoDynamic.Velocity() != 1 || NoDynamic.Title() != "" {
		t.Fatalf("empty dynamic should be neutral")
	}
	if _, err := ParseDynamic("fff"); !errors.Is(err, ErrInvalidDynamic) {
		t.Fatalf("expected ErrInvalidDynamic, got %v", err)
	}
}

func TestTempoTermsAndClamp(t *testing.T) {
	if TempoTerm(120) != "Moderato" || TempoTerm(40) != "Grave" || TempoTerm(150) != "Allegro" {
		t.Fatalf("unexpected tempo terms")
	}
	if ClampTempo(10) != MinTempo || ClampTempo(999) != MaxTempo || ClampTempo(90) != 90 {
		t.Fatalf("unexpected clamp")
	}
}

func TestReasonCodes(t *testing.T) {
	perr := &PlacementError{Column: 3, Row: 1, Duration: Half, Err: ErrCrossesMeasureBoundary}
	wrapped := fmt.Errorf("session: %w", perr)
	if got := Reason(wrapped); got != ReasonCrossesMeasureBoundary {
		t.Fatalf("Reason = %q", got)
	}
	if Reason(nil) != ReasonNone || Reason(errors.New("x")) != ReasonUnknown {
		t.Fatalf("unexpected fallback reasons")
	}
}
