//go:build cgo

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
	"time"

	"github.com/ebitengine/oto/v3"
)

// Oto plays a Mixer through the default audio output.
type Oto struct {
	*Mixer
	player *oto.Player
}

// OpenOto opens the audio device at sampleRate and starts pulling from a fresh mixer.
func OpenOto(sampleRate int) (*Oto, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   20 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	mixer := NewMixer(sampleRate)
	p := ctx.NewPlayer(mixer)
	p.Play()
	return &Oto{Mixer: mixer, player: p}, nil
}

// Close stops the player. The oto context lives for the rest of the process.
func (o *Oto) Close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
