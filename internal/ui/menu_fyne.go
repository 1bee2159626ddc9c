//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"notegrid/internal/domain"
	"notegrid/internal/grid"
)

// durationMenu lists the four durations; disabled entries carry their hint.
func durationMenu(c grid.DurationChoice, pick func(domain.Duration)) *fyne.Menu {
	items := make([]*fyne.MenuItem, 0, len(c.Options))
	for _, o := range c.Options {
		label := o.Label
		if !o.Enabled && o.Note != "" {
			label += " (" + o.Note + ")"
		}
		d := o.Duration
		it := fyne.NewMenuItem(label, func() { pick(d) })
		it.Disabled = !o.Enabled
		items = append(items, it)
	}
	return fyne.NewMenu("Duration", items...)
}

func showDurationMenu(c fyne.Canvas, at fyne.Position, choice grid.DurationChoice, pick func(domain.Duration)) {
	widget.ShowPopUpMenuAtPosition(durationMenu(choice, pick), c, at)
}

func declineText(reason string) string {
	switch reason {
	case domain.ReasonMeasureFull:
		return "Measure full"
	case domain.ReasonCrossesMeasureBoundary:
		return "Crosses measure"
	case domain.ReasonSpanOccupied:
		return "Inside another note"
	case domain.ReasonNone:
		return "Ready"
	}
	return reason
}
