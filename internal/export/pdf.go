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
	"io"

	"github.com/jung-kurt/gofpdf"

	"notegrid/internal/notation"
	"notegrid/internal/version"
)

// WritePDF draws the score on a single page sized to the staff.
// Units are points; built-in Helvetica keeps text vector without embedding.
func WritePDF(w io.Writer, score notation.Score, opt Options) error {
	sh := LayoutSheet(score, opt)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: sh.Width, Ht: sh.Height},
	})
	title := opt.Title
	if title == "" {
		title = "notegrid phrase"
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator(version.String(), true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: sh.Width, Ht: sh.Height})

	setDrawColor(pdf, black)
	for _, l := range sh.Lines {
		pdf.SetLineWidth(l.Width)
		pdf.Line(l.X1, l.Y1, l.X2, l.Y2)
	}
	setFillColor(pdf, black)
	for _, r := range sh.Rects {
		pdf.Rect(r.X, r.Y, r.W, r.H, "F")
	}
	pdf.SetLineWidth(1.1)
	for _, h := range sh.Heads {
		setDrawColor(pdf, h.Color)
		style := "D"
		if h.Filled {
			setFillColor(pdf, h.Color)
			style = "FD"
		}
		pdf.Ellipse(h.X, h.Y, h.RX, h.RY, -20, style)
	}
	pdf.SetTextColor(0, 0, 0)
	for _, lb := range sh.Labels {
		style := ""
		if lb.Bold {
			style += "B"
		}
		if lb.Italic {
			style += "I"
		}
		pdf.SetFont("Helvetica", style, lb.Size)
		pdf.Text(lb.X, lb.Y, lb.Text)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c RGB) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c RGB) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
