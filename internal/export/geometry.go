/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"strconv"
	"strings"

	"notegrid/internal/domain"
	"notegrid/internal/notation"
)

// Sheet is a score laid out as drawing primitives. Units are points and the origin is top-left.
// The PDF, PNG and SVG writers only draw what is listed here.
type Sheet struct {
	Width, Height float64
	Lines         []Line
	Rects         []Rect
	Heads         []Head
	Labels        []Label
}

type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
}

// Rect is always filled black.
type Rect struct {
	X, Y, W, H float64
}

// Head is a note head ellipse centred at X,Y.
type Head struct {
	X, Y   float64
	RX, RY float64
	Filled bool
	Color  RGB
}

type Label struct {
	X, Y   float64 // baseline start
	Text   string
	Size   float64
	Italic bool
	Bold   bool
}

// RGB is an opaque colour.
type RGB struct{ R, G, B uint8 }

var black = RGB{}

// ParseHex reads "#rrggbb"; anything else is black.
func ParseHex(s string) RGB {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return black
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// Hex is the inverse of ParseHex.
func (c RGB) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}

// Staff metrics in points.
const (
	lineGap     = 8.0
	marginX     = 20.0
	marginTop   = 40.0
	clefWidth   = 60.0
	measurePad  = 12.0
	stemLength  = 3.5 * lineGap
	staffStroke = 0.6
	barStroke   = 0.8
	stemStroke  = 0.9
)

// Options tunes the exported sheet.
type Options struct {
	// Title is printed above the staff when set.
	Title string
	// Scale is the PNG pixel density in pixels per point; defaults to 2.
	Scale float64
	// Tempo adds a metronome mark to LilyPond output when positive.
	Tempo int
}

// LayoutSheet places every token of score on a single treble staff.
func LayoutSheet(score notation.Score, opt Options) Sheet {
	mw := score.MeasureWidthHint
	if mw <= 0 {
		mw = notation.MeasureWidthHint(0, len(score.Measures))
	}
	top := marginTop
	bottom := top + 4*lineGap
	width := 2*marginX + clefWidth + mw*float64(len(score.Measures))
	sh := Sheet{Width: width, Height: bottom + 4*lineGap + 30}

	if opt.Title != "" {
		sh.Labels = append(sh.Labels, Label{X: marginX, Y: 20, Text: opt.Title, Size: 14, Bold: true})
	}
	for i := 0; i < 5; i++ {
		y := top + float64(i)*lineGap
		sh.Lines = append(sh.Lines, Line{X1: marginX, Y1: y, X2: width - marginX, Y2: y, Width: staffStroke})
	}
	// clef and meter
	sh.Labels = append(sh.Labels,
		Label{X: marginX + 4, Y: bottom - lineGap, Text: "G", Size: 26, Bold: true},
		Label{X: marginX + 34, Y: top + 2*lineGap - 1, Text: strconv.Itoa(score.TimeSignature.BeatsPerMeasure()), Size: 15, Bold: true},
		Label{X: marginX + 34, Y: bottom - 1, Text: "4", Size: 15, Bold: true},
	)

	per := score.TimeSignature.EighthsPerMeasure()
	x0 := marginX + clefWidth
	for i, m := range score.Measures {
		mx := x0 + float64(i)*mw
		sh.Lines = append(sh.Lines, Line{X1: mx, Y1: top, X2: mx, Y2: bottom, Width: barStroke})
		if m.Annotation != "" {
			sh.Labels = append(sh.Labels, Label{X: mx + measurePad, Y: bottom + 3*lineGap, Text: m.Annotation, Size: 13, Italic: true, Bold: true})
		}
		inner := mw - 2*measurePad
		offset := 0
		for _, tok := range m.Tokens {
			span := tok.Duration.Span()
			x := mx + measurePad + float64(offset)/float64(per)*inner
			if tok.FullMeasure {
				x = mx + mw/2
			}
			if tok.Rest {
				sh.placeRest(tok, x, top)
			} else {
				sh.placeNote(tok, x+lineGap*0.7, bottom)
			}
			offset += span
		}
	}
	end := x0 + float64(len(score.Measures))*mw
	sh.Lines = append(sh.Lines,
		Line{X1: end - 4, Y1: top, X2: end - 4, Y2: bottom, Width: barStroke},
		Line{X1: end - 1, Y1: top, X2: end - 1, Y2: bottom, Width: 3 * barStroke},
	)
	return sh
}

// staffY is the vertical centre of a row's note head.
func staffY(row int, bottom float64) float64 {
	return bottom - float64(domain.StaffStep(row))*lineGap/2
}

func (sh *Sheet) placeNote(tok notation.Token, x, bottom float64) {
	y := staffY(tok.Row, bottom)
	rx, ry := lineGap*0.65, lineGap*0.45
	filled := tok.Duration == domain.Eighth || tok.Duration == domain.Quarter
	sh.Heads = append(sh.Heads, Head{X: x, Y: y, RX: rx, RY: ry, Filled: filled, Color: ParseHex(domain.RowColor(tok.Row))})
	if step := domain.StaffStep(tok.Row); step <= -2 {
		for s := -2; s >= step; s -= 2 {
			ly := bottom - float64(s)*lineGap/2
			sh.Lines = append(sh.Lines, Line{X1: x - rx - 3, Y1: ly, X2: x + rx + 3, Y2: ly, Width: staffStroke})
		}
	}
	if tok.Duration == domain.Whole {
		return
	}
	// stems go up below the middle line
	up := domain.StaffStep(tok.Row) < 4
	sx, sy, ey := x+rx-0.5, y, y-stemLength
	if !up {
		sx, ey = x-rx+0.5, y+stemLength
	}
	sh.Lines = append(sh.Lines, Line{X1: sx, Y1: sy, X2: sx, Y2: ey, Width: stemStroke})
	if tok.Duration == domain.Eighth {
		dy := lineGap * 1.6
		if !up {
			dy = -dy
		}
		sh.Lines = append(sh.Lines, Line{X1: sx, Y1: ey, X2: sx + lineGap*0.9, Y2: ey + dy, Width: 1.4})
	}
}

func (sh *Sheet) placeRest(tok notation.Token, x, top float64) {
	switch tok.Duration {
	case domain.Whole, domain.Half:
		w, h := lineGap*1.2, lineGap/2
		y := top + lineGap // hangs from the fourth line
		if tok.Duration == domain.Half {
			y = top + 2*lineGap - h // sits on the middle line
		}
		sh.Rects = append(sh.Rects, Rect{X: x - w/2, Y: y, W: w, H: h})
	case domain.Quarter:
		y := top + lineGap*0.8
		pts := [][2]float64{{x, y}, {x + 4, y + 6}, {x - 1, y + 12}, {x + 4, y + 18}, {x - 1, y + 20}}
		for i := 1; i < len(pts); i++ {
			sh.Lines = append(sh.Lines, Line{X1: pts[i-1][0], Y1: pts[i-1][1], X2: pts[i][0], Y2: pts[i][1], Width: 1.6})
		}
	default:
		y := top + lineGap*1.5
		sh.Heads = append(sh.Heads, Head{X: x, Y: y, RX: 1.8, RY: 1.8, Filled: true})
		sh.Lines = append(sh.Lines, Line{X1: x + 1.5, Y1: y, X2: x + 5, Y2: y - 1.5, Width: 1},
			Line{X1: x + 5, Y1: y - 1.5, X2: x + 1, Y2: y + lineGap*1.6, Width: 1})
	}
}
