/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"notegrid/internal/config"
	"notegrid/internal/notation"
)

func TestExportSingleFileFromExtension(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "etude.ly")
	cur := &current{}
	paths, err := runExport(config.Defaults(), []string{"-o", out, "-title", "Etude", "-dynamic", "mf", "0:3:q,8:0:w"}, cur)
	if err != nil {
		t.Fatalf("runExport: %v", err)
	}
	if len(paths) != 1 || paths[0] != out {
		t.Fatalf("unexpected paths %v", paths)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	src := string(b)
	for _, want := range []string{`title = "Etude"`, `g'4\mf`, "c''1 |"} {
		if !strings.Contains(src, want) {
			t.Fatalf("lilypond output missing %q:\n%s", want, src)
		}
	}
	if cur.Describe() == "" {
		t.Fatalf("crash state should describe the exported phrase")
	}
}

func TestExportPresetWritesAllFormats(t *testing.T) {
	dir := t.TempDir()
	paths, err := runExport(config.Defaults(), []string{"-preset", "web", "-o", dir, "0:0:8"}, &current{})
	if err != nil {
		t.Fatalf("runExport: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("web preset writes png and svg, got %v", paths)
	}
	for _, p := range paths {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
}

func TestExportRequiresPhrase(t *testing.T) {
	if _, err := runExport(config.Defaults(), nil, &current{}); err == nil || !strings.Contains(err.Error(), "requires <phrase>") {
		t.Fatalf("expected missing phrase error, got %v", err)
	}
}

func TestDescribeJSONUsesMeterFlag(t *testing.T) {
	var buf bytes.Buffer
	if err := runDescribe(&buf, []string{"-json", "-meter", "3/4", "0:3:h"}, &current{}); err != nil {
		t.Fatalf("runDescribe: %v", err)
	}
	var score notation.Score
	if err := json.Unmarshal(buf.Bytes(), &score); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if score.TimeSignature != "3/4" || len(score.Measures) != 4 {
		t.Fatalf("unexpected score: %+v", score)
	}
	if tok := score.Measures[0].Tokens[0]; tok.Rest || tok.Key != "g/4" {
		t.Fatalf("first token: %+v", tok)
	}
}

func TestDescribeRejectsBadPhrase(t *testing.T) {
	var buf bytes.Buffer
	if err := runDescribe(&buf, []string{"0:9:q"}, &current{}); err == nil {
		t.Fatalf("row 9 should be rejected")
	}
}

func TestConfigInitCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(config.EnvConfigPath, path)
	var buf bytes.Buffer
	if err := runConfig(&buf, []string{"init"}); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if err := runConfig(&buf, []string{"init"}); err == nil {
		t.Fatalf("second init must not overwrite")
	}
	buf.Reset()
	t.Setenv(config.EnvTempo, "90")
	if err := runConfig(&buf, nil); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(buf.String(), "Tempo: 90") || !strings.Contains(buf.String(), "NGRID_TEMPO") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}
