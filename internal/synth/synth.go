/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package synth provides the sound outputs driven by the playback scheduler: a MIDI port, a
// built-in sine synthesiser and a silent sink.
package synth

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"notegrid/internal/config"
	applog "notegrid/internal/log"
	"notegrid/internal/playback"
)

// ErrUnavailable is returned when the binary was built without the audio or MIDI backend.
var ErrUnavailable = errors.New("synth backend not available in this build")

// Device is a synth owned by the application.
type Device interface {
	playback.Synth
	// SetVolume sets the master level in [0,1].
	SetVolume(v float64)
	Close() error
}

// Open builds the device selected by cfg.Driver.
func Open(cfg config.SynthConfig) (Device, error) {
	log := applog.WithComponent("synth")
	switch cfg.Driver {
	case "", "none":
		return &Null{}, nil
	case "midi":
		d, err := OpenMIDI(cfg.MIDIPort, cfg.MIDIChannel)
		if err != nil {
			return nil, fmt.Errorf("open midi: %w", err)
		}
		log.Info("midi output opened", slog.String("port", cfg.MIDIPort), slog.Int("channel", cfg.MIDIChannel))
		return d, nil
	case "oto":
		d, err := OpenOto(cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("open audio: %w", err)
		}
		log.Info("audio output opened", slog.Int("rate", cfg.SampleRate))
		return d, nil
	}
	return nil, fmt.Errorf("unknown synth driver %q", cfg.Driver)
}

// Null discards notes but remembers them, for headless runs and tests.
type Null struct {
	mu     sync.Mutex
	notes  []playback.NoteEvent
	volume float64
}

func (n *Null) PlayNote(ev playback.NoteEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, ev)
	return nil
}

func (n *Null) SetVolume(v float64) {
	n.mu.Lock()
	n.volume = v
	n.mu.Unlock()
}

func (n *Null) Close() error { return nil }

// Notes returns the events received so far.
func (n *Null) Notes() []playback.NoteEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]playback.NoteEvent(nil), n.notes...)
}

// Volume returns the last level set.
func (n *Null) Volume() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.volume
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
