//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"notegrid/internal/config"
	"notegrid/internal/crash"
	"notegrid/internal/domain"
	"notegrid/internal/export"
	"notegrid/internal/grid"
	applog "notegrid/internal/log"
	"notegrid/internal/notation"
	"notegrid/internal/playback"
	"notegrid/internal/session"
	"notegrid/internal/synth"
	"notegrid/internal/version"
)

// Run starts the Fyne-based grid editor, optionally preloaded with a phrase literal.
func Run(cfg config.AppConfig, phrase string) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	dev, err := synth.Open(cfg.Synth)
	if err != nil {
		l.Warn("synth unavailable, playing silently", slog.Any("err", err))
		dev = &synth.Null{}
	}
	defer func() { _ = dev.Close() }()

	fyneApp := app.NewWithID("notegrid")
	w := fyneApp.NewWindow("notegrid")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 560)
	if winW < 800 {
		winW = 800
	}
	if winH < 400 {
		winH = 400
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	staff := canvas.NewImageFromImage(nil)
	staff.FillMode = canvas.ImageFillContain
	staff.SetMinSize(fyne.NewSize(800, 150))

	var gc *GridCanvas
	var refresh func()

	opts := session.OptionsFromConfig(cfg, dev)
	opts.OnProgress = func(p playback.Progress) {
		fyne.Do(func() {
			gc.SetCursor(p.Column)
			if !p.Running {
				refresh()
			}
		})
	}
	opts.Renderer = notation.RendererFunc(func(sc notation.Score) error {
		img := export.Rasterize(sc, export.Options{Scale: 1.5})
		fyne.Do(func() {
			staff.Image = img
			staff.Refresh()
		})
		return nil
	})
	sess := session.New(opts)
	defer sess.Close()
	defer crash.Recover(sess)

	report := func(err error) {
		if err != nil {
			status.SetText(declineText(domain.Reason(err)))
			return
		}
		status.SetText("Ready")
		refresh()
	}

	gesture := sess.Gesture(nil, func(reason string) { status.SetText(declineText(reason)) })
	gc = NewGridCanvas(sess, gesture, cfg.Editor.EdgeFraction)
	gesture.OnChoice = func(c grid.DurationChoice) {
		showDurationMenu(w.Canvas(), gc.LastPress, c, func(d domain.Duration) {
			report(sess.RequestDurationChoice(c.Column, c.Row, d))
		})
	}

	// Toolbar
	// syncing suppresses widget callbacks while refresh copies session state into them.
	syncing := false
	playBtn := widget.NewButtonWithIcon("Play", theme.MediaPlayIcon(), func() {
		sess.TogglePlayback()
		refresh()
	})
	tempoLabel := widget.NewLabel("")
	tempo := widget.NewSlider(domain.MinTempo, domain.MaxTempo)
	tempo.Step = 1
	tempo.OnChanged = func(v float64) {
		if syncing {
			return
		}
		sess.ChangeTempo(int(v))
		refresh()
	}
	meter := widget.NewSelect([]string{string(domain.FourFour), string(domain.ThreeFour)}, func(s string) {
		if syncing {
			return
		}
		ts, err := domain.ParseTimeSignature(s)
		if err == nil {
			err = sess.ChangeTimeSignature(ts)
		}
		report(err)
	})
	dynNames := []string{"none"}
	for _, d := range domain.Dynamics {
		dynNames = append(dynNames, string(d))
	}
	dynamic := widget.NewSelect(dynNames, func(s string) {
		if syncing {
			return
		}
		if s == "none" {
			s = ""
		}
		report(sess.SetDynamicMarking(domain.Dynamic(s)))
	})
	undoBtn := widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { report(travel(sess.Undo)) })
	redoBtn := widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { report(travel(sess.Redo)) })
	scopes := make([]string, 0, len(session.ResetScopes))
	for _, sc := range session.ResetScopes {
		scopes = append(scopes, string(sc))
	}
	resetScope := widget.NewSelect(scopes, nil)
	resetScope.SetSelected(string(session.ResetAll))
	resetBtn := widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() {
		scope, err := session.ParseResetScope(resetScope.Selected)
		if err == nil {
			err = sess.Reset(scope)
		}
		report(err)
	})

	refresh = func() {
		v := sess.View()
		syncing = true
		defer func() { syncing = false }()
		if v.Playing {
			playBtn.SetText("Stop")
			playBtn.SetIcon(theme.MediaStopIcon())
		} else {
			playBtn.SetText("Play")
			playBtn.SetIcon(theme.MediaPlayIcon())
		}
		tempo.SetValue(float64(v.Tempo))
		tempoLabel.SetText(fmt.Sprintf("%d bpm %s", v.Tempo, domain.TempoTerm(v.Tempo)))
		meter.SetSelected(string(v.TimeSignature))
		if v.Dynamic == domain.NoDynamic {
			dynamic.SetSelected("none")
		} else {
			dynamic.SetSelected(string(v.Dynamic))
		}
		setEnabled(undoBtn, v.CanUndo)
		setEnabled(redoBtn, v.CanRedo)
		gc.Refresh()
	}
	gc.OnGestureEnd = refresh

	tempoBox := container.NewBorder(nil, nil, widget.NewLabel("Tempo"), tempoLabel, tempo)
	toolbar := container.NewBorder(nil, nil,
		container.NewHBox(playBtn, undoBtn, redoBtn, widget.NewSeparator(), meter, dynamic),
		container.NewHBox(resetScope, resetBtn),
		tempoBox,
	)

	// Menus
	exportItem := fyne.NewMenuItem("Export…", func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			f, err := export.ParseFormat(filepath.Ext(outPath))
			if err != nil {
				f, _ = export.ParseFormat(cfg.Export.Format)
				outPath += f.Ext()
			}
			opt := export.Options{Tempo: sess.Tempo()}
			if err := export.WriteFile(outPath, f, sess.Score(), opt); err != nil {
				l.Error("export failed", slog.String("path", outPath), slog.Any("err", err))
				dialog.ShowError(err, w)
				return
			}
			l.Info("exported", slog.String("path", outPath), slog.String("format", string(f)))
			status.SetText("Exported to " + outPath)
		}, w)
		save.SetFileName("phrase." + cfg.Export.Format)
		var exts []string
		for _, f := range export.Formats {
			exts = append(exts, f.Ext())
		}
		save.SetFilter(fstorage.NewExtensionFileFilter(exts))
		save.Show()
	})
	fileMenu := fyne.NewMenu("File", exportItem)

	undoItem := fyne.NewMenuItem("Undo", func() { report(travel(sess.Undo)) })
	redoItem := fyne.NewMenuItem("Redo", func() { report(travel(sess.Redo)) })
	resetItem := fyne.NewMenuItem("Reset All", func() { report(sess.Reset(session.ResetAll)) })
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}
	resetItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierControl}
	editMenu := fyne.NewMenu("Edit", undoItem, redoItem, fyne.NewMenuItemSeparator(), resetItem)

	aboutItem := fyne.NewMenuItem("About notegrid", func() {
		dialog.ShowInformation("About", "notegrid "+version.String(), w)
	})
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, fyne.NewMenu("Help", aboutItem)))

	// Keyboard shortcuts
	c := w.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { report(travel(sess.Undo)) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { report(travel(sess.Redo)) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift}, func(fyne.Shortcut) { report(travel(sess.Redo)) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { report(sess.Reset(session.ResetAll)) })
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeySpace {
			sess.TogglePlayback()
			refresh()
		}
	})

	w.SetContent(container.NewBorder(toolbar, container.NewVBox(staff, status), nil, nil, gc))

	// Persist preferences on close
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	if phrase != "" {
		if err := sess.LoadPhrase(phrase); err != nil {
			l.Error("load phrase failed", slog.Any("err", err))
			status.SetText("Could not load phrase: " + err.Error())
		}
	}
	refresh()
	sess.Regenerate()

	w.ShowAndRun()
	return nil
}

// travel hides the empty-history error; the buttons are disabled in that state anyway.
func travel(fn func() error) error {
	if err := fn(); err != nil && !errors.Is(err, domain.ErrEmptyHistory) {
		return err
	}
	return nil
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}
