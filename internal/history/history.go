/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"sync"
	"time"

	"notegrid/internal/domain"
	"notegrid/internal/grid"
)

// DefaultDepth is the number of undo steps kept.
const DefaultDepth = 50

// Snapshot is the editable state captured before a mutation. It is never modified after Record.
type Snapshot struct {
	Grid    grid.Snapshot
	Tempo   int
	Dynamic domain.Dynamic
	// Kind groups rapid edits of the same control ("tempo"). Empty never coalesces.
	Kind string
	TS   time.Time
}

// Config controls depth and coalescing.
type Config struct {
	// MaxDepth caps the undo stack; the oldest entry is evicted first.
	MaxDepth int
	// MinInterval merges snapshots of the same Kind recorded within the interval, keeping the
	// older state so one undo reverts the whole gesture.
	MinInterval time.Duration
}

// Manager is an in-memory undo/redo stack of pre-mutation snapshots.
// It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo []Snapshot
	redo []Snapshot
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultDepth
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg}
}

// Record pushes the state captured before a mutation and clears redo.
func (m *Manager) Record(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redo = nil
	if n := len(m.undo); n > 0 && s.Kind != "" {
		last := &m.undo[n-1]
		if last.Kind == s.Kind && s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: the older state stays, the window slides
			last.TS = s.TS
			return
		}
	}
	m.undo = append(m.undo, s)
	if over := len(m.undo) - m.cfg.MaxDepth; over > 0 {
		m.undo = append([]Snapshot{}, m.undo[over:]...)
	}
}

// Undo returns the state before the last recorded mutation and keeps current for Redo.
func (m *Manager) Undo(current Snapshot) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undo)
	if n == 0 {
		return Snapshot{}, domain.ErrEmptyHistory
	}
	s := m.undo[n-1]
	m.undo = m.undo[:n-1]
	current.Kind = ""
	m.redo = append(m.redo, current)
	return s, nil
}

// Redo is the inverse of Undo.
func (m *Manager) Redo(current Snapshot) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redo)
	if n == 0 {
		return Snapshot{}, domain.ErrEmptyHistory
	}
	s := m.redo[n-1]
	m.redo = m.redo[:n-1]
	current.Kind = ""
	m.undo = append(m.undo, current)
	return s, nil
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
}

// Stats returns stack sizes for diagnostics and button state.
func (m *Manager) Stats() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}
