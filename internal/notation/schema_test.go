/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package notation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"notegrid/internal/domain"
	"notegrid/internal/grid"
)

func TestScoreConformsToSchema(t *testing.T) {
	schemaBytes, err := os.ReadFile(filepath.Join("..", "..", "docs", "score.schema.json"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	g := grid.New(domain.FourFour)
	_ = g.Place(0, 0, domain.Half)
	_ = g.Place(4, 7, domain.Eighth)
	_ = g.Place(8, 3, domain.Whole)

	for _, dyn := range []domain.Dynamic{domain.NoDynamic, domain.MezzoPiano} {
		data, err := json.Marshal(Layout(g.Snapshot(), dyn, Options{}))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(data))
		if err != nil {
			t.Fatalf("schema validate error: %v", err)
		}
		if !result.Valid() {
			for _, e := range result.Errors() {
				t.Logf("schema error: %s", e)
			}
			t.Fatalf("score does not conform to schema")
		}
	}
}
