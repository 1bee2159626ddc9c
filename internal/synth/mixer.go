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
	"sync"
	"time"

	"notegrid/internal/playback"
)

// DefaultSampleRate is used when none is configured.
const DefaultSampleRate = 44100

const (
	attack  = 5 * time.Millisecond
	release = 40 * time.Millisecond
	// headroom keeps a few overlapping voices below clipping
	headroom = 0.3
)

type voice struct {
	freq  float64
	amp   float64
	pos   int
	total int // samples including release
	hold  int
}

// Mixer is a mono sine synthesiser producing float32 little-endian samples. It implements
// io.Reader so an audio player can pull from it; silence is produced when no voice sounds.
type Mixer struct {
	mu     sync.Mutex
	rate   int
	volume float64
	voices []voice
}

func NewMixer(sampleRate int) *Mixer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Mixer{rate: sampleRate, volume: 1}
}

// Frequency is the equal-tempered frequency of a MIDI pitch.
func Frequency(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

func (m *Mixer) PlayNote(ev playback.NoteEvent) error {
	hold := int(ev.Duration.Seconds() * float64(m.rate))
	if hold < 1 {
		hold = 1
	}
	v := voice{
		freq:  Frequency(ev.Pitch),
		amp:   clamp01(ev.Velocity),
		hold:  hold,
		total: hold + int(release.Seconds()*float64(m.rate)),
	}
	m.mu.Lock()
	m.voices = append(m.voices, v)
	m.mu.Unlock()
	return nil
}

func (m *Mixer) SetVolume(v float64) {
	m.mu.Lock()
	m.volume = clamp01(v)
	m.mu.Unlock()
}

// Voices is the number of notes still sounding.
func (m *Mixer) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Read fills p with whole samples. It never blocks and never returns an error.
func (m *Mixer) Read(p []byte) (int, error) {
	n := len(p) / 4
	m.mu.Lock()
	defer m.mu.Unlock()
	attackN := float64(attack.Seconds() * float64(m.rate))
	releaseN := float64(release.Seconds() * float64(m.rate))
	for i := 0; i < n; i++ {
		var s float64
		for j := range m.voices {
			v := &m.voices[j]
			if v.pos >= v.total {
				continue
			}
			env := 1.0
			switch {
			case float64(v.pos) < attackN:
				env = float64(v.pos) / attackN
			case v.pos >= v.hold:
				env = 1 - float64(v.pos-v.hold)/releaseN
			}
			s += math.Sin(2*math.Pi*v.freq*float64(v.pos)/float64(m.rate)) * v.amp * env
			v.pos++
		}
		s *= m.volume * headroom
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(float32(s)))
	}
	live := m.voices[:0]
	for _, v := range m.voices {
		if v.pos < v.total {
			live = append(live, v)
		}
	}
	m.voices = live
	return n * 4, nil
}
