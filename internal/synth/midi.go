/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package synth

import (
	"fmt"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"notegrid/internal/playback"
)

// ccVolume is the channel volume controller.
const ccVolume = 7

// MIDI sends note on/off pairs to one output channel. Note off is scheduled after the event's
// duration so the scheduler never blocks on the port.
type MIDI struct {
	mu      sync.Mutex
	send    func(midi.Message) error
	channel uint8
	after   func(time.Duration, func()) *time.Timer
	pending map[*time.Timer]midi.Message
	closer  func() error
	closed  bool
}

// NewMIDI wraps a sender, e.g. the result of midi.SendTo.
func NewMIDI(send func(midi.Message) error, channel int) *MIDI {
	if channel < 0 || channel > 15 {
		channel = 0
	}
	return &MIDI{send: send, channel: uint8(channel), after: time.AfterFunc, pending: map[*time.Timer]midi.Message{}}
}

func (m *MIDI) PlayNote(ev playback.NoteEvent) error {
	if ev.Pitch < 0 || ev.Pitch > 127 {
		return fmt.Errorf("pitch %d outside the MIDI range", ev.Pitch)
	}
	key := uint8(ev.Pitch)
	vel := uint8(clamp01(ev.Velocity)*126) + 1
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	if err := m.send(midi.NoteOn(m.channel, key, vel)); err != nil {
		return fmt.Errorf("note on: %w", err)
	}
	off := midi.NoteOff(m.channel, key)
	var t *time.Timer
	t = m.after(ev.Duration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.pending[t]; !ok {
			return
		}
		delete(m.pending, t)
		_ = m.send(off)
	})
	m.pending[t] = off
	return nil
}

// SetVolume maps v to the channel volume controller.
func (m *MIDI) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	_ = m.send(midi.ControlChange(m.channel, ccVolume, uint8(clamp01(v)*127)))
}

// Close releases every held note and the port.
func (m *MIDI) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for t, off := range m.pending {
		t.Stop()
		_ = m.send(off)
	}
	m.pending = nil
	closer := m.closer
	m.mu.Unlock()
	if closer != nil {
		return closer()
	}
	return nil
}
