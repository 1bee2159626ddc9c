/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"

	"notegrid/internal/notation"
)

// WriteSVG writes the score as a standalone SVG document in point units.
func WriteSVG(w io.Writer, score notation.Score, opt Options) error {
	sh := LayoutSheet(score, opt)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpt\" height=\"%gpt\" viewBox=\"0 0 %g %g\">\n", sh.Width, sh.Height, sh.Width, sh.Height)
	if opt.Title != "" {
		wf("  <title>%s</title>\n", escText(opt.Title))
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", sh.Width, sh.Height)

	wf("  <g stroke=\"#000\" stroke-linecap=\"round\">\n")
	for _, l := range sh.Lines {
		wf("    <line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"%g\"/>\n", l.X1, l.Y1, l.X2, l.Y2, l.Width)
	}
	wf("  </g>\n")
	for _, r := range sh.Rects {
		wf("  <rect class=\"rest\" x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"#000\"/>\n", r.X, r.Y, r.W, r.H)
	}
	for _, h := range sh.Heads {
		fill := "none"
		if h.Filled {
			fill = h.Color.Hex()
		}
		wf("  <ellipse class=\"head\" cx=\"%.2f\" cy=\"%.2f\" rx=\"%.2f\" ry=\"%.2f\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1.1\" transform=\"rotate(-20 %.2f %.2f)\"/>\n",
			h.X, h.Y, h.RX, h.RY, fill, h.Color.Hex(), h.X, h.Y)
	}
	for _, lb := range sh.Labels {
		style := ""
		if lb.Italic {
			style += " font-style=\"italic\""
		}
		if lb.Bold {
			style += " font-weight=\"bold\""
		}
		wf("  <text x=\"%.2f\" y=\"%.2f\" font-family=\"%s\" font-size=\"%g\"%s fill=\"#000\">%s</text>\n",
			lb.X, lb.Y, escAttr("Helvetica, Arial, sans-serif"), lb.Size, style, escText(lb.Text))
	}
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
