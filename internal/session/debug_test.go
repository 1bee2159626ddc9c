//go:build ngriddebug

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Run with: go test -tags ngriddebug ./internal/session
package session

import (
	"errors"
	"testing"

	"notegrid/internal/domain"
)

// The store panics on a bad row in debug builds; intents must decline before reaching it.
func TestDebugBuildDeclinesBadRowsWithoutPanic(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("intent reached the store with a bad row: %v", r)
		}
	}()
	if err := s.RequestDurationChoice(0, 9, domain.Quarter); !errors.Is(err, domain.ErrRowOutOfRange) {
		t.Fatalf("err = %v", err)
	}
	if err := s.LoadPhrase("0:9:q"); !errors.Is(err, domain.ErrRowOutOfRange) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.RequestPlaceNote(0, -1); !errors.Is(err, domain.ErrRowOutOfRange) {
		t.Fatalf("err = %v", err)
	}
}
