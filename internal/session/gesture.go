/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"notegrid/internal/domain"
	"notegrid/internal/grid"
	"notegrid/internal/interaction"
)

// Gesture adapts a Session to interaction.Target. Edits made while dragging do not render; the
// machine's Regenerate at pointer-up does.
type Gesture struct {
	s *Session
	// OnChoice receives the duration menu for the cell a paint gesture started on.
	OnChoice func(grid.DurationChoice)
	// OnDecline receives the reason code of a rejected request.
	OnDecline func(reason string)
}

var _ interaction.Target = (*Gesture)(nil)

// Gesture returns a target for an interaction.Machine.
func (s *Session) Gesture(onChoice func(grid.DurationChoice), onDecline func(string)) *Gesture {
	return &Gesture{s: s, OnChoice: onChoice, OnDecline: onDecline}
}

func (g *Gesture) Selected(col, row int) bool { return g.s.Selected(col, row) }

func (g *Gesture) Place(col, row int, first bool) {
	if first {
		choice, err := g.s.RequestPlaceNote(col, row)
		if err != nil {
			g.decline(err)
			return
		}
		if g.OnChoice != nil {
			g.OnChoice(choice)
		}
		return
	}
	g.s.mu.Lock()
	d := g.s.last
	g.s.mu.Unlock()
	if err := g.s.place(col, row, d, false); err != nil {
		g.decline(err)
	}
}

func (g *Gesture) Remove(col, row int) { g.s.remove(col, row, false) }

func (g *Gesture) Resize(anchorCol, row, toCol int) { g.s.resize(anchorCol, row, toCol, false) }

func (g *Gesture) Regenerate() { g.s.Regenerate() }

func (g *Gesture) decline(err error) {
	if g.OnDecline != nil {
		g.OnDecline(domain.Reason(err))
	}
}
