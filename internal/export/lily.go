/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"

	"notegrid/internal/domain"
	"notegrid/internal/notation"
	"notegrid/internal/version"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var lilyTemplate = template.Must(template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"))

type lilyData struct {
	Title    string
	Creator  string
	Time     string
	Tempo    int
	Measures [][]string
}

// WriteLily writes the score as a LilyPond source file.
func WriteLily(w io.Writer, score notation.Score, opt Options) error {
	data := lilyData{
		Title:   strings.ReplaceAll(opt.Title, `"`, "'"),
		Creator: version.String(),
		Time:    string(score.TimeSignature),
		Tempo:   opt.Tempo,
	}
	for _, m := range score.Measures {
		data.Measures = append(data.Measures, LilyMeasure(m, score.TimeSignature))
	}
	if err := lilyTemplate.ExecuteTemplate(w, "score.ly.tmpl", data); err != nil {
		return fmt.Errorf("write lilypond: %w", err)
	}
	return nil
}

// LilyMeasure renders one measure as LilyPond tokens in absolute pitch.
func LilyMeasure(m notation.Measure, ts domain.TimeSignature) []string {
	out := make([]string, 0, len(m.Tokens))
	for _, tok := range m.Tokens {
		var s string
		switch {
		case tok.FullMeasure:
			s = "R1"
			if ts == domain.ThreeFour {
				s = "R2."
			}
		case tok.Rest:
			s = "r" + lilyDuration(tok.Duration)
		default:
			s = LilyPitch(tok.Key) + lilyDuration(tok.Duration)
		}
		out = append(out, s)
	}
	if m.Annotation != "" && len(out) > 0 {
		out[0] += `\` + m.Annotation
	}
	return out
}

// LilyPitch converts a staff key ("g/4") to absolute LilyPond pitch ("g'").
func LilyPitch(key string) string {
	name, oct, ok := strings.Cut(key, "/")
	if !ok || name == "" {
		return "c'"
	}
	marks := 0
	switch oct {
	case "5":
		marks = 2
	case "4":
		marks = 1
	}
	return name + strings.Repeat("'", marks)
}

func lilyDuration(d domain.Duration) string {
	switch d {
	case domain.Quarter:
		return "4"
	case domain.Half:
		return "2"
	case domain.Whole:
		return "1"
	default:
		return "8"
	}
}
