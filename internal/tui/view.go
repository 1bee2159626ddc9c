/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"notegrid/internal/domain"
	"notegrid/internal/interaction"
	"notegrid/internal/session"
)

// Grid geometry in terminal cells.
const (
	labelWidth = 5
	cellWidth  = 3
	// gridTop is the screen line of row 0: header, then the ruler.
	gridTop = 2
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e33059")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5c5c5c"))
	playheadStyle = lipgloss.NewStyle().Background(lipgloss.Color("#303030"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7943d"))
	menuStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#5b37cc")).Padding(0, 1)
)

// columnX is the screen column where grid column col starts. A bar precedes every measure.
func columnX(col, perMeasure int) int {
	return labelWidth + col*cellWidth + col/perMeasure + 1
}

// pointerAt maps a screen position to a grid pointer.
func (m Model) pointerAt(x, y int) (interaction.Pointer, bool) {
	row := y - gridTop
	if !domain.ValidRow(row) {
		return interaction.Pointer{}, false
	}
	ts := m.Session.View().TimeSignature
	per := ts.EighthsPerMeasure()
	for col := 0; col < ts.Columns(); col++ {
		start := columnX(col, per)
		if x >= start && x < start+cellWidth {
			frac := (float64(x-start) + 0.5) / cellWidth
			return interaction.Pointer{Col: col, Row: row, X: frac}, true
		}
	}
	return interaction.Pointer{}, false
}

func (m Model) View() string {
	if m.ed.quitting {
		return ""
	}
	v := m.Session.View()
	var b strings.Builder
	b.WriteString(header(v))
	b.WriteString("\n")
	b.WriteString(ruler(v))
	b.WriteString("\n")
	for row := 0; row < domain.Rows; row++ {
		b.WriteString(gridRow(v, row))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case m.ed.pending != nil:
		b.WriteString(m.menu())
	case m.ed.status != "":
		b.WriteString(statusStyle.Render(m.ed.status))
	}
	b.WriteString("\n")
	b.WriteString(m.ed.help.View(m.keys))
	return b.String()
}

func header(v session.View) string {
	state := "STOP"
	if v.Playing {
		state = "PLAY"
	}
	dyn := "-"
	if v.Dynamic != domain.NoDynamic {
		dyn = fmt.Sprintf("%s (%s)", v.Dynamic, v.Dynamic.Title())
	}
	line := fmt.Sprintf("notegrid  %s  %3d bpm %-11s  %s  %s  last:%s",
		state, v.Tempo, domain.TempoTerm(v.Tempo), v.TimeSignature, dyn, v.LastDuration.Label())
	return headerStyle.Render(line)
}

func ruler(v session.View) string {
	per := v.TimeSignature.EighthsPerMeasure()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for col := 0; col < len(v.Cells); col++ {
		if col%per == 0 {
			b.WriteString(" ")
		}
		switch {
		case v.Playing && col == v.Cursor:
			b.WriteString(headerStyle.Render(" ▼ "))
		case col%per == 0:
			b.WriteString(dimStyle.Render(fmt.Sprintf("%-3d", col/per+1)))
		default:
			b.WriteString(strings.Repeat(" ", cellWidth))
		}
	}
	return b.String()
}

func gridRow(v session.View, row int) string {
	per := v.TimeSignature.EighthsPerMeasure()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-*s", labelWidth, domain.Solfege(row)))
	lit := lipgloss.NewStyle().
		Background(lipgloss.Color(domain.RowColor(row))).
		Foreground(lipgloss.Color("#ffffff")).
		Bold(true)
	for col, c := range v.Cells {
		if col%per == 0 {
			b.WriteString(dimStyle.Render("│"))
		}
		glyph, on := cellGlyph(v.Cells, c, row)
		style := dimStyle
		if on {
			style = lit
		}
		if v.Playing && col == v.Cursor {
			style = style.Inherit(playheadStyle)
		}
		b.WriteString(style.Render(glyph))
	}
	b.WriteString(dimStyle.Render("│"))
	return b.String()
}

// cellGlyph draws a note origin with its duration code and a covered column as a bar.
func cellGlyph(cells []domain.Cell, c domain.Cell, row int) (string, bool) {
	switch {
	case c.HasNote && c.Note.Row == row:
		return " " + string(c.Note.Duration) + " ", true
	case c.Occupied() && c.CoveredBy < len(cells) && cells[c.CoveredBy].Note.Row == row:
		return "━━━", true
	}
	return " · ", false
}

func (m Model) menu() string {
	c := m.ed.pending
	parts := []string{fmt.Sprintf("%s at %d:", domain.Solfege(c.Row), c.Column+1)}
	for i, o := range c.Options {
		if o.Enabled {
			parts = append(parts, fmt.Sprintf("[%d] %s", i+1, o.Label))
			continue
		}
		parts = append(parts, dimStyle.Render(fmt.Sprintf("[%d] %s (%s)", i+1, o.Label, o.Note)))
	}
	parts = append(parts, dimStyle.Render("esc"))
	return menuStyle.Render(strings.Join(parts, "  "))
}
