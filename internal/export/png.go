/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"notegrid/internal/notation"
)

const defaultScale = 2.0

// Rasterize draws the score into an RGBA image at opt.Scale pixels per point.
// Text uses the fixed basicfont face, so labels do not scale with the image.
func Rasterize(score notation.Score, opt Options) *image.RGBA {
	sh := LayoutSheet(score, opt)
	scale := opt.Scale
	if scale <= 0 {
		scale = defaultScale
	}
	img := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(sh.Width*scale)), int(math.Ceil(sh.Height*scale))))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	ink := toRGBA(black)
	for _, l := range sh.Lines {
		strokeLine(img, l.X1*scale, l.Y1*scale, l.X2*scale, l.Y2*scale, math.Max(1, l.Width*scale), ink)
	}
	for _, r := range sh.Rects {
		fillRect(img, int(math.Round(r.X*scale)), int(math.Round(r.Y*scale)),
			int(math.Round((r.X+r.W)*scale))-1, int(math.Round((r.Y+r.H)*scale))-1, ink)
	}
	for _, h := range sh.Heads {
		ellipse(img, h.X*scale, h.Y*scale, h.RX*scale, h.RY*scale, h.Filled, toRGBA(h.Color))
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: basicfont.Face7x13}
	for _, lb := range sh.Labels {
		d.Dot = fixed.P(int(math.Round(lb.X*scale)), int(math.Round(lb.Y*scale)))
		d.DrawString(lb.Text)
		if lb.Bold {
			// one pixel offset reads as bold with a bitmap face
			d.Dot = fixed.P(int(math.Round(lb.X*scale))+1, int(math.Round(lb.Y*scale)))
			d.DrawString(lb.Text)
		}
	}
	return img
}

// WritePNG encodes Rasterize(score, opt) to w.
func WritePNG(w io.Writer, score notation.Score, opt Options) error {
	if err := png.Encode(w, Rasterize(score, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func toRGBA(c RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// strokeLine stamps squares of side width along the segment.
func strokeLine(img *image.RGBA, x1, y1, x2, y2, width float64, col color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(x2-x1), math.Abs(y2-y1))))
	if steps < 1 {
		steps = 1
	}
	half := width / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x1 + (x2-x1)*t
		y := y1 + (y2-y1)*t
		fillRect(img, int(math.Round(x-half)), int(math.Round(y-half)), int(math.Round(x+half))-1, int(math.Round(y+half))-1, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	b := img.Bounds()
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if image.Pt(x, y).In(b) {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// ellipse fills, or outlines with a ring of about 1.5px, an axis-aligned ellipse.
func ellipse(img *image.RGBA, cx, cy, rx, ry float64, filled bool, col color.RGBA) {
	if rx <= 0 || ry <= 0 {
		return
	}
	const ring = 1.5
	for y := int(math.Floor(cy - ry)); y <= int(math.Ceil(cy+ry)); y++ {
		for x := int(math.Floor(cx - rx)); x <= int(math.Ceil(cx+rx)); x++ {
			dx, dy := (float64(x)+0.5-cx)/rx, (float64(y)+0.5-cy)/ry
			outer := dx*dx + dy*dy
			if outer > 1 {
				continue
			}
			if !filled {
				ix, iy := (float64(x)+0.5-cx)/(rx-ring), (float64(y)+0.5-cy)/(ry-ring)
				if rx > ring && ry > ring && ix*ix+iy*iy < 1 {
					continue
				}
			}
			if image.Pt(x, y).In(img.Bounds()) {
				img.SetRGBA(x, y, col)
			}
		}
	}
}
