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
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // registers the driver
)

// ListOutPorts returns the names of the available MIDI outputs.
func ListOutPorts() ([]string, error) {
	var names []string
	for _, out := range midi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names, nil
}

// OpenMIDI opens the first output whose name starts with port (case-insensitive), or the first
// output when port is empty.
func OpenMIDI(port string, channel int) (*MIDI, error) {
	out, err := findOut(port)
	if err != nil {
		return nil, err
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", out, err)
	}
	m := NewMIDI(send, channel)
	m.closer = out.Close
	return m, nil
}

func findOut(port string) (drivers.Out, error) {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return nil, fmt.Errorf("no MIDI outputs found")
	}
	if port == "" {
		return outs[0], nil
	}
	want := strings.ToLower(port)
	for _, out := range outs {
		if strings.HasPrefix(strings.ToLower(out.String()), want) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output matching %q", port)
}
