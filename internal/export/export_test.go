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
	"encoding/xml"
	"errors"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"notegrid/internal/domain"
	"notegrid/internal/grid"
	"notegrid/internal/notation"
)

// sampleScore: quarter on Sol, eighth on low Do, then a whole note on high Do in measure 1.
func sampleScore(t *testing.T, ts domain.TimeSignature) notation.Score {
	t.Helper()
	g := grid.New(ts)
	for _, n := range []struct {
		col, row int
		d        domain.Duration
	}{{0, 3, domain.Quarter}, {2, 7, domain.Eighth}} {
		if err := g.Place(n.col, n.row, n.d); err != nil {
			t.Fatalf("place: %v", err)
		}
	}
	if ts == domain.FourFour {
		if err := g.Place(8, 0, domain.Whole); err != nil {
			t.Fatalf("place whole: %v", err)
		}
	}
	return notation.Layout(g.Snapshot(), domain.MezzoForte, notation.Options{})
}

func TestLayoutSheet(t *testing.T) {
	sh := LayoutSheet(sampleScore(t, domain.FourFour), Options{Title: "Etude"})
	// three notes plus the dots of five eighth rests
	if len(sh.Heads) != 8 {
		t.Fatalf("heads = %d, want 8", len(sh.Heads))
	}
	if len(sh.Rects) != 2 {
		t.Fatalf("full-measure rests = %d, want 2", len(sh.Rects))
	}
	if sh.Heads[0].Color != ParseHex(domain.RowColor(3)) || !sh.Heads[0].Filled {
		t.Fatalf("quarter head = %+v", sh.Heads[0])
	}
	bottom := marginTop + 4*lineGap
	if sh.Heads[1].Y != bottom+lineGap {
		t.Fatalf("low Do should sit on the ledger line below the staff, y = %v", sh.Heads[1].Y)
	}
	var whole *Head
	for i := range sh.Heads {
		if sh.Heads[i].RX > 2 && !sh.Heads[i].Filled {
			whole = &sh.Heads[i]
		}
	}
	if whole == nil || whole.Y != bottom-2.5*lineGap {
		t.Fatalf("whole note head = %+v", whole)
	}
	var labels []string
	for _, l := range sh.Labels {
		labels = append(labels, l.Text)
	}
	if got := strings.Join(labels, ","); got != "Etude,G,4,4,mf" {
		t.Fatalf("labels = %s", got)
	}
	wantW := 2*marginX + clefWidth + 4*notation.MeasureWidthHint(0, 4)
	if math.Abs(sh.Width-wantW) > 1e-9 {
		t.Fatalf("width = %v, want %v", sh.Width, wantW)
	}
}

func TestHexColours(t *testing.T) {
	c := ParseHex("#e33059")
	if c != (RGB{0xe3, 0x30, 0x59}) || c.Hex() != "#e33059" {
		t.Fatalf("ParseHex = %+v hex %s", c, c.Hex())
	}
	if ParseHex("red") != black {
		t.Fatalf("invalid colours fall back to black")
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleScore(t, domain.FourFour), Options{Title: "Etude"}); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRasterizeColoursHeads(t *testing.T) {
	score := sampleScore(t, domain.FourFour)
	img := Rasterize(score, Options{Scale: 2})
	sh := LayoutSheet(score, Options{})
	if img.Bounds().Dx() != int(math.Ceil(sh.Width*2)) {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
	h := sh.Heads[0]
	got := img.RGBAAt(int(h.X*2), int(h.Y*2))
	if got != toRGBA(h.Color) {
		t.Fatalf("head pixel = %+v, want %+v", got, toRGBA(h.Color))
	}
	if corner := img.RGBAAt(1, 1); corner.R != 255 || corner.G != 255 || corner.B != 255 {
		t.Fatalf("background = %+v", corner)
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, score, Options{Scale: 1}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != int(math.Ceil(sh.Width)) {
		t.Fatalf("png width = %d", cfg.Width)
	}
}

func TestWriteSVGIsWellFormed(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, sampleScore(t, domain.FourFour), Options{Title: "Tom & Jerry <3>"}); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := buf.String()
	if n := strings.Count(out, `class="head"`); n != 8 {
		t.Fatalf("heads = %d", n)
	}
	if !strings.Contains(out, ">mf</text>") || !strings.Contains(out, "Tom &amp; Jerry &lt;3&gt;") {
		t.Fatalf("missing labels:\n%s", out)
	}
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("svg is not well formed: %v", err)
		}
	}
}

func TestWriteLily(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLily(&buf, sampleScore(t, domain.FourFour), Options{Title: `My "tune"`, Tempo: 96}); err != nil {
		t.Fatalf("WriteLily: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`title = "My 'tune'"`,
		`\time 4/4`,
		`\tempo 4 = 96`,
		`g'4\mf c'8 r8 r8 r8 r8 r8 |`,
		`c''1 |`,
		`R1 |`,
		`\bar "|."`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteLily(&buf, sampleScore(t, domain.ThreeFour), Options{}); err != nil {
		t.Fatalf("WriteLily 3/4: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "R2. |") || strings.Contains(out, `\tempo`) || !strings.Contains(out, `"notegrid phrase"`) {
		t.Fatalf("3/4 output:\n%s", out)
	}
}

func TestLilyPitch(t *testing.T) {
	for row, want := range []string{"c''", "b'", "a'", "g'", "f'", "e'", "d'", "c'"} {
		if got := LilyPitch(domain.StaffKey(row)); got != want {
			t.Fatalf("row %d: %s, want %s", row, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"PDF": FormatPDF, ".png": FormatPNG, "svg": FormatSVG, "lilypond": FormatLily, ".ly": FormatLily}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("cbz"); err == nil {
		t.Fatalf("cbz should be rejected")
	}
}

func TestBatchExport_Presets(t *testing.T) {
	score := sampleScore(t, domain.FourFour)
	for preset, exts := range map[PresetName][]string{
		PresetWeb:   {".png", ".svg"},
		PresetPrint: {".pdf", ".ly"},
	} {
		dir := filepath.Join(t.TempDir(), string(preset))
		paths, err := BatchExport(score, BatchOptions{Preset: preset, OutDir: dir, Base: "etude"})
		if err != nil {
			t.Fatalf("batch export %s: %v", preset, err)
		}
		if len(paths) != len(exts) {
			t.Fatalf("%s wrote %v", preset, paths)
		}
		for i, p := range paths {
			if filepath.Ext(p) != exts[i] {
				t.Fatalf("%s: %s, want extension %s", preset, p, exts[i])
			}
			st, err := os.Stat(p)
			if err != nil {
				t.Fatalf("missing %s: %v", p, err)
			}
			if st.Size() <= 0 {
				t.Fatalf("empty file: %s", p)
			}
		}
	}
}

func TestFileRenderer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live", "score.svg")
	r := &FileRenderer{Path: path}
	if err := r.Render(sampleScore(t, domain.FourFour)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("read back: %v", err)
	}
	if err := (&FileRenderer{Path: filepath.Join(t.TempDir(), "x.gif")}).Render(notation.Score{}); err == nil {
		t.Fatalf("unknown extension accepted")
	}
}
