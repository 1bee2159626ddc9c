/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"notegrid/internal/notation"
)

// Format is an export file format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatLily Format = "ly"
)

// Formats lists every supported format.
var Formats = []Format{FormatPDF, FormatPNG, FormatSVG, FormatLily}

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	switch s {
	case "pdf", "png", "svg":
		return Format(s), nil
	case "ly", "lily", "lilypond":
		return FormatLily, nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// Ext is the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Write renders score in format f to w.
func Write(w io.Writer, f Format, score notation.Score, opt Options) error {
	switch f {
	case FormatPDF:
		return WritePDF(w, score, opt)
	case FormatPNG:
		return WritePNG(w, score, opt)
	case FormatSVG:
		return WriteSVG(w, score, opt)
	case FormatLily:
		return WriteLily(w, score, opt)
	}
	return fmt.Errorf("unknown format: %s", f)
}

// WriteFile renders score to path, creating the directory when needed. The format follows the
// extension unless f is set.
func WriteFile(path string, f Format, score notation.Score, opt Options) error {
	if f == "" {
		var err error
		if f, err = ParseFormat(filepath.Ext(path)); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f, err)
	}
	if err := Write(out, f, score, opt); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f, err)
	}
	return nil
}

// PresetName represents a named set of export formats.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls a batch export.
//
// Files are named <Base><ext> inside OutDir. Formats overrides the preset's defaults.
type BatchOptions struct {
	Preset  PresetName
	Formats []Format
	OutDir  string
	Base    string
	Options Options
}

// BatchExport writes score in every format of the preset and returns the written paths.
func BatchExport(score notation.Score, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := opt.Base
	if base == "" {
		base = "phrase"
	}
	dir := opt.OutDir
	if dir == "" {
		dir = "."
	}
	var written []string
	for _, f := range formats {
		path := filepath.Join(dir, base+f.Ext())
		if err := WriteFile(path, f, score, opt.Options); err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []Format {
	switch p {
	case PresetWeb:
		return []Format{FormatPNG, FormatSVG}
	case PresetPrint:
		return []Format{FormatPDF, FormatLily}
	default:
		return []Format{FormatPDF}
	}
}

// FileRenderer is a notation.Renderer that rewrites one file on every change.
type FileRenderer struct {
	Path    string
	Format  Format
	Options Options
}

var _ notation.Renderer = (*FileRenderer)(nil)

func (r *FileRenderer) Render(score notation.Score) error {
	return WriteFile(r.Path, r.Format, score, r.Options)
}
