/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"notegrid/internal/config"
	"notegrid/internal/crash"
	applog "notegrid/internal/log"
	"notegrid/internal/session"
	"notegrid/internal/ui"
	"notegrid/internal/version"
)

func usage() {
	fmt.Println("notegrid: 8-row step sequencer with staff notation")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  notegrid version|-v|--version                 Show version")
	fmt.Println("  notegrid tui [<phrase>]                       Edit in the terminal (mouse + keys)")
	fmt.Println("  notegrid ui [<phrase>]                        Launch desktop UI (build with -tags fyne)")
	fmt.Println("  notegrid play [flags] <phrase>                Play a phrase through the configured synth")
	fmt.Println("  notegrid export [flags] <phrase>              Write a phrase as PDF, PNG, SVG or LilyPond")
	fmt.Println("  notegrid describe [-json] <phrase>            Print the grid and staff tokens")
	fmt.Println("  notegrid devices                              List MIDI output ports")
	fmt.Println("  notegrid config [init]                        Show or create the config file")
	fmt.Println()
	fmt.Println("A phrase is a comma separated list of col:row:duration, e.g. 0:3:q,2:4:8,8:0:w")
	fmt.Println("(rows 0..7 top to bottom, durations 8 q h w).")
}

// current lets a crash report include the phrase being edited.
type current struct{ s *session.Session }

func (c *current) Describe() string {
	if c.s == nil {
		return ""
	}
	return c.s.Describe()
}

func logOptions(cfg config.AppConfig, console io.Writer) applog.Options {
	return applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   console,
	}
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	cur := &current{}
	defer crash.Recover(cur)

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	applog.Init(logOptions(cfg, nil))
	l = applog.WithComponent("cli")

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	cmd, rest := args[1], args[2:]
	switch cmd {
	case "version", "--version", "-v":
		fmt.Println("notegrid")
		fmt.Println(version.String())
		return
	case "tui":
		// log lines would tear the screen
		applog.Init(logOptions(cfg, io.Discard))
		err = runTUI(cfg, firstArg(rest), cur)
	case "ui":
		err = ui.Run(cfg, firstArg(rest))
	case "play":
		err = runPlay(cfg, rest, cur)
	case "export":
		var paths []string
		paths, err = runExport(cfg, rest, cur)
		for _, p := range paths {
			fmt.Println("Wrote", p)
		}
	case "describe":
		err = runDescribe(os.Stdout, rest, cur)
	case "devices":
		err = runDevices(os.Stdout)
	case "config":
		err = runConfig(os.Stdout, rest)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Printf("unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", cmd), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
