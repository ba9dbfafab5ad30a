// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Panel colors.
var (
	BacklightOn  = color.NRGBA{0x9a, 0xcd, 0x32, 0xff}
	BacklightOff = color.NRGBA{0x2f, 0x3f, 0x2f, 0xff}
	Ink          = color.NRGBA{0x10, 0x20, 0x10, 0xff}
)

// TermOpts represents the options available for Terminal.
type TermOpts struct {
	// W is the destination. Defaults to stdout, with ANSI sequences
	// translated on Windows.
	W       io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// Terminal draws the emulated panel on a terminal using ANSI color codes.
type Terminal struct {
	w       io.Writer
	palette ansi256.Palette
	buf     bytes.Buffer
}

// NewTerminal returns a Terminal. A nil opts writes to stdout with the
// default palette.
func NewTerminal(opts *TermOpts) *Terminal {
	if opts == nil {
		opts = &TermOpts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Terminal{w: w, palette: *p}
}

// Render draws the panel of d: a frame in the backlight color around one line
// per row. The text is blanked while the display is off; the cursor cell is
// underlined when the cursor is on.
func (t *Terminal) Render(d *Dev) error {
	lines := d.Text()
	on := d.DisplayOn()
	underline, blink := d.Cursor()
	cCol, cRow, cOK := d.CursorPos()
	glow := BacklightOff
	if d.Backlight() {
		glow = BacklightOn
	}
	frame := t.palette.Block(glow)

	// This code is designed to minimize the amount of memory allocated per call.
	t.buf.Reset()
	border := func() {
		for range d.cols + 2 {
			_, _ = t.buf.WriteString(frame)
		}
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	border()
	for row, line := range lines {
		_, _ = t.buf.WriteString(frame)
		_, _ = t.buf.WriteString("\033[0m")
		for col, r := range []rune(line) {
			if !on {
				r = ' '
			}
			mark := on && cOK && col == cCol && row == cRow && (underline || blink)
			if mark {
				_, _ = t.buf.WriteString("\033[4m")
			}
			_, _ = t.buf.WriteRune(r)
			if mark {
				_, _ = t.buf.WriteString("\033[24m")
			}
		}
		_, _ = t.buf.WriteString(frame)
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	border()
	_, err := t.buf.WriteTo(t.w)
	return err
}
