//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"notegrid/internal/domain"
	"notegrid/internal/grid"
	"notegrid/internal/interaction"
	"notegrid/internal/session"
)

func newTestCanvas(t *testing.T) (*GridCanvas, *session.Session, *[]grid.DurationChoice) {
	t.Helper()
	test.NewTempApp(t)
	s := session.New(session.Options{})
	t.Cleanup(s.Close)
	var choices []grid.DurationChoice
	g := NewGridCanvas(s, s.Gesture(func(c grid.DurationChoice) { choices = append(choices, c) }, nil), 0)
	// 32 columns of 20 and 8 rows of 25
	g.Resize(fyne.NewSize(labelWidth+32*20, 8*25))
	return g, s, &choices
}

func TestGridCanvas_PointerAt(t *testing.T) {
	g, s, _ := newTestCanvas(t)
	p, ok := g.PointerAt(fyne.NewPos(labelWidth+20*9+2, 25*4+10))
	if !ok || p.Col != 9 || p.Row != 4 {
		t.Fatalf("unexpected pointer: %+v %v", p, ok)
	}
	if p.X > interaction.DefaultEdgeFraction {
		t.Fatalf("2px into a 20px cell should be on the left edge, got %v", p.X)
	}
	if _, ok := g.PointerAt(fyne.NewPos(10, 10)); ok {
		t.Fatalf("label area must not map to a cell")
	}
	if err := s.ChangeTimeSignature(domain.ThreeFour); err != nil {
		t.Fatal(err)
	}
	// 24 columns now share the same width
	cw := float32(32*20) / 24
	p, ok = g.PointerAt(fyne.NewPos(labelWidth+cw*23+cw/2, 5))
	if !ok || p.Col != 23 {
		t.Fatalf("last 3/4 column: %+v %v", p, ok)
	}
}

func TestGridCanvas_MouseDownOpensChoiceThenRemoves(t *testing.T) {
	g, s, choices := newTestCanvas(t)
	at := fyne.NewPos(labelWidth+20*2+10, 25*3+10)
	ev := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	ev.Position = at
	g.MouseDown(ev)
	g.MouseUp(ev)
	if len(*choices) != 1 || (*choices)[0].Column != 2 || (*choices)[0].Row != 3 {
		t.Fatalf("expected one choice for (2,3), got %+v", *choices)
	}
	if err := s.RequestDurationChoice(2, 3, domain.Quarter); err != nil {
		t.Fatal(err)
	}
	if got := cellColor(s.View().Cells, 3, 3); got.A != 150 {
		t.Fatalf("covered column should use the span shade, got %+v", got)
	}
	g.MouseDown(ev)
	g.MouseUp(ev)
	if len(s.Notes()) != 0 {
		t.Fatalf("pressing the middle of a lit cell removes it: %+v", s.Notes())
	}
}

func TestDurationMenu_DisablesWithHint(t *testing.T) {
	s := session.New(session.Options{})
	defer s.Close()
	c, err := s.RequestPlaceNote(6, 0)
	if err != nil {
		t.Fatal(err)
	}
	var picked domain.Duration
	m := durationMenu(c, func(d domain.Duration) { picked = d })
	if len(m.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(m.Items))
	}
	if m.Items[0].Disabled || m.Items[1].Disabled || !m.Items[2].Disabled || !m.Items[3].Disabled {
		t.Fatalf("unexpected enabled set")
	}
	if m.Items[3].Label != "1 (crosses measure)" {
		t.Fatalf("unexpected label %q", m.Items[3].Label)
	}
	m.Items[1].Action()
	if picked != domain.Quarter {
		t.Fatalf("picked %q", picked)
	}
}

func TestRowColor(t *testing.T) {
	c := rowColor(0)
	if c.R != 0xe3 || c.G != 0x30 || c.B != 0x59 || c.A != 255 {
		t.Fatalf("row 0 colour: %+v", c)
	}
}
