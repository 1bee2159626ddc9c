/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interaction turns pointer gestures on the grid into placement, removal and resize
// requests. It knows nothing about drawing; front ends feed it cell coordinates.
package interaction

// State of the gesture machine.
type State int

const (
	Idle State = iota
	Painting
	Resizing
)

func (s State) String() string {
	switch s {
	case Painting:
		return "painting"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// DefaultEdgeFraction is the share of the cell width, on either side, that grabs a note for resizing.
const DefaultEdgeFraction = 0.2

// Pointer locates the pointer on the grid. X is the horizontal position inside the cell, 0 at the
// left border and 1 at the right one.
type Pointer struct {
	Col int
	Row int
	X   float64
}

// Target receives the requests produced by a gesture.
type Target interface {
	Selected(col, row int) bool
	// Place asks for a note at (col,row). first is true for the cell the gesture started on,
	// where the front end offers the duration choice; later cells reuse the last chosen duration.
	Place(col, row int, first bool)
	Remove(col, row int)
	// Resize sets the note containing (anchorCol,row) to the shortest duration reaching toCol.
	Resize(anchorCol, row, toCol int)
	Regenerate()
}

type cell struct{ col, row int }

// Machine is the Idle/Painting/Resizing state machine. It is not safe for concurrent use.
type Machine struct {
	target Target
	edge   float64

	state   State
	paintOn bool
	anchor  cell
	lastCol int
	visited map[cell]bool
}

func New(target Target, edgeFraction float64) *Machine {
	if edgeFraction <= 0 || edgeFraction >= 0.5 {
		edgeFraction = DefaultEdgeFraction
	}
	return &Machine{target: target, edge: edgeFraction}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// PaintTarget reports whether the current paint gesture selects (true) or clears cells.
func (m *Machine) PaintTarget() bool { return m.paintOn }

// AnchorRow is the row being resized, -1 when not resizing.
func (m *Machine) AnchorRow() int {
	if m.state != Resizing {
		return -1
	}
	return m.anchor.row
}

// Down starts a gesture.
func (m *Machine) Down(p Pointer) {
	m.visited = map[cell]bool{{p.Col, p.Row}: true}
	switch {
	case !m.target.Selected(p.Col, p.Row):
		m.state, m.paintOn = Painting, true
		m.target.Place(p.Col, p.Row, true)
	case m.nearEdge(p.X):
		m.state = Resizing
		m.anchor = cell{p.Col, p.Row}
		m.lastCol = p.Col
	default:
		m.state, m.paintOn = Painting, false
		m.target.Remove(p.Col, p.Row)
	}
}

// Move continues a gesture. Each cell is acted on at most once per gesture.
func (m *Machine) Move(p Pointer) {
	switch m.state {
	case Painting:
		c := cell{p.Col, p.Row}
		if m.visited[c] {
			return
		}
		m.visited[c] = true
		selected := m.target.Selected(p.Col, p.Row)
		if m.paintOn && !selected {
			m.target.Place(p.Col, p.Row, false)
		} else if !m.paintOn && selected {
			m.target.Remove(p.Col, p.Row)
		}
	case Resizing:
		if p.Row != m.anchor.row {
			m.reset()
			return
		}
		if p.Col == m.lastCol {
			return
		}
		m.lastCol = p.Col
		m.target.Resize(m.anchor.col, m.anchor.row, p.Col)
	}
}

// Up ends the gesture and regenerates the notation once, whatever the state was.
func (m *Machine) Up() {
	m.reset()
	m.target.Regenerate()
}

// Cancel abandons the gesture, e.g. when the pointer leaves the grid. The following Up still
// regenerates.
func (m *Machine) Cancel() { m.reset() }

func (m *Machine) reset() {
	m.state = Idle
	m.paintOn = false
	m.visited = nil
}

func (m *Machine) nearEdge(x float64) bool {
	return x <= m.edge || x >= 1-m.edge
}
