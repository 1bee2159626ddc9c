/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tui

import "github.com/charmbracelet/bubbles/key"

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

type keyMap struct {
	Play    key.Binding
	Undo    key.Binding
	Redo    key.Binding
	Reset   key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Meter   key.Binding
	Dynamic key.Binding
	Export  key.Binding
	Choose  key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Play:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/stop")),
		Undo:    binding("undo", "ctrl+z"),
		Redo:    binding("redo", "ctrl+y", "ctrl+shift+z"),
		Reset:   binding("reset", "ctrl+r"),
		Faster:  binding("tempo up", "+", "="),
		Slower:  binding("tempo down", "-", "_"),
		Meter:   binding("3/4 ↔ 4/4", "t"),
		Dynamic: binding("dynamic", "d"),
		Export:  binding("export", "e"),
		Choose:  binding("duration", "1", "2", "3", "4"),
		Dismiss: binding("cancel", "esc"),
		Help:    binding("more", "?"),
		Quit:    binding("quit", "q", "ctrl+c"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Undo, k.Faster, k.Slower, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Faster, k.Slower, k.Meter, k.Dynamic},
		{k.Undo, k.Redo, k.Reset, k.Export},
		{k.Choose, k.Dismiss, k.Help, k.Quit},
	}
}
