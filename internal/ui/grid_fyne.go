//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"notegrid/internal/domain"
	"notegrid/internal/export"
	"notegrid/internal/interaction"
	"notegrid/internal/session"
)

const (
	labelWidth = 44
	maxColumns = 32 // 4/4
)

var (
	gridBG      = color.NRGBA{R: 30, G: 30, B: 34, A: 255}
	emptyCell   = color.NRGBA{R: 52, G: 52, B: 58, A: 255}
	barColor    = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	playheadCol = color.NRGBA{R: 255, G: 255, B: 255, A: 60}
)

// GridCanvas draws the 8-row note grid and feeds pointer gestures to an interaction.Machine.
type GridCanvas struct {
	widget.BaseWidget

	s       *session.Session
	machine *interaction.Machine
	cursor  int
	pressed bool

	// LastPress is the absolute position of the last mouse down, used to anchor the duration menu.
	LastPress fyne.Position
	// OnGestureEnd runs after pointer-up.
	OnGestureEnd func()
}

var (
	_ desktop.Mouseable = (*GridCanvas)(nil)
	_ fyne.Draggable    = (*GridCanvas)(nil)
)

func NewGridCanvas(s *session.Session, target interaction.Target, edgeFraction float64) *GridCanvas {
	g := &GridCanvas{s: s, machine: interaction.New(target, edgeFraction), cursor: -1}
	g.ExtendBaseWidget(g)
	return g
}

// SetCursor moves the playhead; -1 hides it.
func (g *GridCanvas) SetCursor(col int) {
	g.cursor = col
	g.Refresh()
}

func (g *GridCanvas) MinSize() fyne.Size { return fyne.NewSize(labelWidth+maxColumns*18, domain.Rows*28) }

// cellSize is the size of one grid cell for the current meter.
func (g *GridCanvas) cellSize(columns int) (w, h float32) {
	sz := g.Size()
	return (sz.Width - labelWidth) / float32(columns), sz.Height / domain.Rows
}

// PointerAt maps a widget-relative position to a grid pointer.
func (g *GridCanvas) PointerAt(pos fyne.Position) (interaction.Pointer, bool) {
	cols := g.s.View().TimeSignature.Columns()
	cw, ch := g.cellSize(cols)
	if cw <= 0 || ch <= 0 || pos.X < labelWidth || pos.Y < 0 {
		return interaction.Pointer{}, false
	}
	x := (pos.X - labelWidth) / cw
	col, row := int(x), int(pos.Y/ch)
	if col >= cols || !domain.ValidRow(row) {
		return interaction.Pointer{}, false
	}
	return interaction.Pointer{Col: col, Row: row, X: float64(x - float32(col))}, true
}

func (g *GridCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	g.LastPress = e.AbsolutePosition
	g.pressed = true
	if p, ok := g.PointerAt(e.Position); ok {
		g.machine.Down(p)
		g.Refresh()
	}
}

func (g *GridCanvas) MouseUp(*desktop.MouseEvent) { g.end() }

func (g *GridCanvas) Dragged(e *fyne.DragEvent) {
	if g.machine.State() == interaction.Idle {
		return
	}
	p, ok := g.PointerAt(e.Position)
	if !ok {
		g.machine.Cancel()
	} else {
		g.machine.Move(p)
	}
	g.Refresh()
}

func (g *GridCanvas) DragEnd() { g.end() }

// end runs once per press; MouseUp and DragEnd both arrive after a drag.
func (g *GridCanvas) end() {
	if !g.pressed {
		return
	}
	g.pressed = false
	g.machine.Up()
	g.Refresh()
	if g.OnGestureEnd != nil {
		g.OnGestureEnd()
	}
}

func (g *GridCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &gridRenderer{g: g, bg: canvas.NewRectangle(gridBG)}
	r.objects = append(r.objects, r.bg)
	for row := 0; row < domain.Rows; row++ {
		lbl := canvas.NewText(domain.Solfege(row), rowColor(row))
		lbl.TextStyle = fyne.TextStyle{Bold: true}
		r.labels[row] = lbl
		r.objects = append(r.objects, lbl)
		for col := 0; col < maxColumns; col++ {
			c := canvas.NewRectangle(emptyCell)
			r.cells[row][col] = c
			r.objects = append(r.objects, c)
		}
	}
	for i := range r.bars {
		r.bars[i] = canvas.NewLine(barColor)
		r.bars[i].StrokeWidth = 2
		r.objects = append(r.objects, r.bars[i])
	}
	r.playhead = canvas.NewRectangle(playheadCol)
	r.objects = append(r.objects, r.playhead)
	return r
}

type gridRenderer struct {
	g        *GridCanvas
	objects  []fyne.CanvasObject
	bg       *canvas.Rectangle
	labels   [domain.Rows]*canvas.Text
	cells    [domain.Rows][maxColumns]*canvas.Rectangle
	bars     [domain.MeasuresPerGrid + 1]*canvas.Line
	playhead *canvas.Rectangle
}

func (r *gridRenderer) Destroy()                     {}
func (r *gridRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *gridRenderer) MinSize() fyne.Size           { return r.g.MinSize() }
func (r *gridRenderer) Refresh()                     { r.Layout(r.g.Size()); canvas.Refresh(r.g) }

func (r *gridRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	v := r.g.s.View()
	cols := v.TimeSignature.Columns()
	per := v.TimeSignature.EighthsPerMeasure()
	cw, ch := r.g.cellSize(cols)
	const gap = 1
	for row := 0; row < domain.Rows; row++ {
		r.labels[row].Move(fyne.NewPos(6, float32(row)*ch+ch/2-r.labels[row].MinSize().Height/2))
		for col := 0; col < maxColumns; col++ {
			c := r.cells[row][col]
			if col >= cols {
				c.Hide()
				continue
			}
			c.Show()
			c.FillColor = cellColor(v.Cells, col, row)
			c.Move(fyne.NewPos(labelWidth+float32(col)*cw+gap, float32(row)*ch+gap))
			c.Resize(fyne.NewSize(cw-2*gap, ch-2*gap))
			c.Refresh()
		}
	}
	for i, b := range r.bars {
		x := labelWidth + float32(i*per)*cw
		b.Position1 = fyne.NewPos(x, 0)
		b.Position2 = fyne.NewPos(x, size.Height)
		b.Refresh()
	}
	if r.g.cursor >= 0 && r.g.cursor < cols {
		r.playhead.Show()
		r.playhead.Move(fyne.NewPos(labelWidth+float32(r.g.cursor)*cw, 0))
		r.playhead.Resize(fyne.NewSize(cw, size.Height))
	} else {
		r.playhead.Hide()
	}
}

// cellColor is the row colour for a note origin, a lighter shade for its span and the empty
// colour otherwise.
func cellColor(cells []domain.Cell, col, row int) color.NRGBA {
	if col >= len(cells) {
		return emptyCell
	}
	c := cells[col]
	switch {
	case c.HasNote && c.Note.Row == row:
		return rowColor(row)
	case c.Occupied() && c.CoveredBy < len(cells) && cells[c.CoveredBy].Note.Row == row:
		rc := rowColor(row)
		rc.A = 150
		return rc
	}
	return emptyCell
}

func rowColor(row int) color.NRGBA {
	c := export.ParseHex(domain.RowColor(row))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
