/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package synth

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"notegrid/internal/config"
	"notegrid/internal/playback"
)

type sentLog struct{ msgs []midi.Message }

func (s *sentLog) send(m midi.Message) error {
	s.msgs = append(s.msgs, m)
	return nil
}

func TestMIDINoteOnThenScheduledOff(t *testing.T) {
	log := &sentLog{}
	m := NewMIDI(log.send, 2)
	var fire []func()
	var delays []time.Duration
	m.after = func(d time.Duration, f func()) *time.Timer {
		delays = append(delays, d)
		fire = append(fire, f)
		return time.NewTimer(time.Hour)
	}
	if err := m.PlayNote(playback.NoteEvent{Pitch: 60, Velocity: 0.8, Duration: 250 * time.Millisecond}); err != nil {
		t.Fatalf("PlayNote: %v", err)
	}
	var ch, key, vel uint8
	if len(log.msgs) != 1 || !log.msgs[0].GetNoteOn(&ch, &key, &vel) {
		t.Fatalf("expected one note on, got %v", log.msgs)
	}
	if ch != 2 || key != 60 || vel != 101 {
		t.Fatalf("note on = ch %d key %d vel %d", ch, key, vel)
	}
	if len(delays) != 1 || delays[0] != 250*time.Millisecond {
		t.Fatalf("note off delay = %v", delays)
	}
	fire[0]()
	fire[0]()
	if len(log.msgs) != 2 || !log.msgs[1].GetNoteOff(&ch, &key, &vel) || key != 60 {
		t.Fatalf("expected exactly one note off, got %v", log.msgs)
	}
	if err := m.PlayNote(playback.NoteEvent{Pitch: 200}); err == nil {
		t.Fatalf("out of range pitch accepted")
	}
}

func TestMIDICloseReleasesHeldNotes(t *testing.T) {
	log := &sentLog{}
	m := NewMIDI(log.send, 0)
	m.after = func(time.Duration, func()) *time.Timer { return time.NewTimer(time.Hour) }
	closed := false
	m.closer = func() error { closed = true; return nil }
	_ = m.PlayNote(playback.NoteEvent{Pitch: 55, Velocity: 1, Duration: time.Second})
	m.SetVolume(0.5)
	if err := m.Close(); err != nil || !closed {
		t.Fatalf("close: %v closed=%v", err, closed)
	}
	var ch, ctrl, val, key, vel uint8
	if !log.msgs[1].GetControlChange(&ch, &ctrl, &val) || ctrl != ccVolume || val != 63 {
		t.Fatalf("volume message = %v", log.msgs[1])
	}
	if len(log.msgs) != 3 || !log.msgs[2].GetNoteOff(&ch, &key, &vel) || key != 55 {
		t.Fatalf("held note not released: %v", log.msgs)
	}
	_ = m.PlayNote(playback.NoteEvent{Pitch: 55, Velocity: 1, Duration: time.Second})
	if len(log.msgs) != 3 {
		t.Fatalf("closed synth still sends")
	}
}

func sample(b []byte, i int) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
}

func TestMixerRendersAndRetiresVoices(t *testing.T) {
	m := NewMixer(8000)
	buf := make([]byte, 4*100)
	if n, _ := m.Read(buf); n != len(buf) || sample(buf, 50) != 0 {
		t.Fatalf("idle mixer should be silent")
	}
	_ = m.PlayNote(playback.NoteEvent{Pitch: 69, Velocity: 1, Duration: 10 * time.Millisecond})
	if m.Voices() != 1 {
		t.Fatalf("voices = %d", m.Voices())
	}
	peak := 0.0
	for i := 0; i < 8; i++ {
		_, _ = m.Read(buf)
		for j := 0; j < 100; j++ {
			peak = math.Max(peak, math.Abs(sample(buf, j)))
		}
	}
	if peak <= 0 || peak > headroom+1e-6 {
		t.Fatalf("peak = %v", peak)
	}
	// 10ms hold + 40ms release at 8kHz is 400 samples
	if m.Voices() != 0 {
		t.Fatalf("voice not retired, %d left", m.Voices())
	}
	m.SetVolume(0)
	_ = m.PlayNote(playback.NoteEvent{Pitch: 69, Velocity: 1, Duration: 10 * time.Millisecond})
	_, _ = m.Read(buf)
	for j := 0; j < 100; j++ {
		if sample(buf, j) != 0 {
			t.Fatalf("muted mixer produced sound")
		}
	}
}

func TestFrequency(t *testing.T) {
	if Frequency(69) != 440 || math.Abs(Frequency(60)-261.6256) > 1e-3 {
		t.Fatalf("Frequency(60) = %v", Frequency(60))
	}
}

func TestOpenNullAndUnknown(t *testing.T) {
	d, err := Open(config.SynthConfig{Driver: "none"})
	if err != nil {
		t.Fatalf("Open none: %v", err)
	}
	null := d.(*Null)
	_ = d.PlayNote(playback.NoteEvent{Pitch: 60})
	d.SetVolume(0.4)
	if len(null.Notes()) != 1 || null.Volume() != 0.4 {
		t.Fatalf("null synth did not record")
	}
	if _, err := Open(config.SynthConfig{Driver: "fm"}); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}
