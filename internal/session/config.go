/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"notegrid/internal/config"
	"notegrid/internal/playback"
)

// OptionsFromConfig maps the persisted configuration onto session options. Callers add the
// synth, progress and renderer hooks.
func OptionsFromConfig(cfg config.AppConfig, synth playback.Synth) Options {
	return Options{
		TimeSignature: cfg.Editor.Meter(),
		Tempo:         cfg.Playback.Tempo,
		HistoryDepth:  cfg.Editor.HistoryDepth,
		Coalesce:      cfg.Editor.Coalesce(),
		GridWidth:     cfg.Editor.GridWidth,
		Velocity:      cfg.Playback.Velocity,
		WrapPause:     cfg.Playback.WrapPause(),
		Synth:         synth,
	}
}
