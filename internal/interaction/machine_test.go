/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"fmt"
	"reflect"
	"testing"
)

// fakeGrid toggles cells and records every request.
type fakeGrid struct {
	on    map[[2]int]bool
	calls []string
	regen int
}

func newFakeGrid(selected ...[2]int) *fakeGrid {
	g := &fakeGrid{on: map[[2]int]bool{}}
	for _, c := range selected {
		g.on[c] = true
	}
	return g
}

func (g *fakeGrid) Selected(col, row int) bool { return g.on[[2]int{col, row}] }

func (g *fakeGrid) Place(col, row int, first bool) {
	g.on[[2]int{col, row}] = true
	g.calls = append(g.calls, fmt.Sprintf("place %d,%d %v", col, row, first))
}

func (g *fakeGrid) Remove(col, row int) {
	delete(g.on, [2]int{col, row})
	g.calls = append(g.calls, fmt.Sprintf("remove %d,%d", col, row))
}

func (g *fakeGrid) Resize(anchorCol, row, toCol int) {
	g.calls = append(g.calls, fmt.Sprintf("resize %d,%d->%d", anchorCol, row, toCol))
}

func (g *fakeGrid) Regenerate() { g.regen++ }

func TestPaintOnDrag(t *testing.T) {
	g := newFakeGrid([2]int{2, 1})
	m := New(g, 0)
	m.Down(Pointer{Col: 0, Row: 1, X: 0.5})
	if m.State() != Painting || !m.PaintTarget() {
		t.Fatalf("state = %v paint=%v", m.State(), m.PaintTarget())
	}
	for _, c := range []int{0, 1, 1, 2, 3, 1} {
		m.Move(Pointer{Col: c, Row: 1, X: 0.5})
	}
	m.Up()
	want := []string{"place 0,1 true", "place 1,1 false", "place 3,1 false"}
	if !reflect.DeepEqual(g.calls, want) {
		t.Fatalf("calls = %v, want %v", g.calls, want)
	}
	if m.State() != Idle || g.regen != 1 {
		t.Fatalf("state = %v regen = %d", m.State(), g.regen)
	}
}

func TestEraseOnDrag(t *testing.T) {
	g := newFakeGrid([2]int{4, 2}, [2]int{5, 2}, [2]int{7, 2})
	m := New(g, 0.2)
	m.Down(Pointer{Col: 4, Row: 2, X: 0.5})
	if m.State() != Painting || m.PaintTarget() {
		t.Fatalf("expected erase painting")
	}
	for _, c := range []int{5, 6, 7} {
		m.Move(Pointer{Col: c, Row: 2, X: 0.5})
	}
	m.Up()
	want := []string{"remove 4,2", "remove 5,2", "remove 7,2"}
	if !reflect.DeepEqual(g.calls, want) {
		t.Fatalf("calls = %v", g.calls)
	}
}

func TestResizeGesture(t *testing.T) {
	g := newFakeGrid([2]int{8, 3})
	m := New(g, 0.2)
	m.Down(Pointer{Col: 8, Row: 3, X: 0.9})
	if m.State() != Resizing || m.AnchorRow() != 3 {
		t.Fatalf("state = %v anchor = %d", m.State(), m.AnchorRow())
	}
	m.Move(Pointer{Col: 8, Row: 3, X: 0.95})
	m.Move(Pointer{Col: 9, Row: 3, X: 0.5})
	m.Move(Pointer{Col: 11, Row: 3, X: 0.5})
	m.Up()
	want := []string{"resize 8,3->9", "resize 8,3->11"}
	if !reflect.DeepEqual(g.calls, want) {
		t.Fatalf("calls = %v", g.calls)
	}
	if g.regen != 1 || m.AnchorRow() != -1 {
		t.Fatalf("regen = %d anchor = %d", g.regen, m.AnchorRow())
	}
}

func TestResizeCancelledByRowChange(t *testing.T) {
	g := newFakeGrid([2]int{0, 5})
	m := New(g, 0.2)
	m.Down(Pointer{Col: 0, Row: 5, X: 0.05})
	m.Move(Pointer{Col: 1, Row: 4, X: 0.5})
	if m.State() != Idle {
		t.Fatalf("row change should cancel resizing, state = %v", m.State())
	}
	m.Move(Pointer{Col: 2, Row: 5, X: 0.5})
	m.Up()
	if len(g.calls) != 0 {
		t.Fatalf("unexpected calls %v", g.calls)
	}
	if g.regen != 1 {
		t.Fatalf("regen = %d, want 1", g.regen)
	}
}

func TestMoveWhileIdleDoesNothing(t *testing.T) {
	g := newFakeGrid()
	m := New(g, 0.2)
	m.Move(Pointer{Col: 3, Row: 3, X: 0.5})
	if len(g.calls) != 0 || g.regen != 0 {
		t.Fatalf("idle machine acted: %v regen=%d", g.calls, g.regen)
	}
	m.Up()
	if g.regen != 1 {
		t.Fatalf("pointer-up while idle should still regenerate once, regen=%d", g.regen)
	}
	if Idle.String() != "idle" || Resizing.String() != "resizing" {
		t.Fatalf("state names")
	}
}
