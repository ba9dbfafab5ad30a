// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"image"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Cell geometry of the rendered panel, in pixels.
const (
	cellW   = 18
	cellH   = 28
	cellGap = 2
	margin  = 16
)

var (
	fontOnce sync.Once
	fontErr  error
	face     font.Face
)

func loadFace() (font.Face, error) {
	fontOnce.Do(func() {
		f, err := truetype.Parse(gomono.TTF)
		if err != nil {
			fontErr = err
			return
		}
		face = truetype.NewFace(f, &truetype.Options{Size: 22})
	})
	return face, fontErr
}

// Image renders the panel of d: the backlight colored glass, one darker cell
// per character position and the visible characters.
func Image(d *Dev) (image.Image, error) {
	fc, err := loadFace()
	if err != nil {
		return nil, err
	}
	lines := d.Text()
	on := d.DisplayOn()
	underline, blink := d.Cursor()
	cCol, cRow, cOK := d.CursorPos()
	glow := BacklightOff
	if d.Backlight() {
		glow = BacklightOn
	}

	w := 2*margin + d.cols*(cellW+cellGap) - cellGap
	h := 2*margin + d.rows*(cellH+cellGap) - cellGap
	dc := gg.NewContext(w, h)
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.Clear()
	dc.SetColor(glow)
	dc.DrawRoundedRectangle(2, 2, float64(w-4), float64(h-4), 8)
	dc.Fill()
	dc.SetFontFace(fc)

	for row, line := range lines {
		y := float64(margin + row*(cellH+cellGap))
		for col, r := range []rune(line) {
			x := float64(margin + col*(cellW+cellGap))
			dc.SetRGBA(0, 0, 0, 0.08)
			dc.DrawRectangle(x, y, cellW, cellH)
			dc.Fill()
			if !on {
				continue
			}
			dc.SetColor(Ink)
			if r != ' ' {
				dc.DrawStringAnchored(string(r), x+cellW/2, y+cellH/2, 0.5, 0.35)
			}
			if cOK && col == cCol && row == cRow {
				if blink {
					dc.SetRGBA(0.06, 0.12, 0.06, 0.6)
					dc.DrawRectangle(x, y, cellW, cellH)
					dc.Fill()
				}
				if underline {
					dc.SetColor(Ink)
					dc.DrawRectangle(x, y+cellH-3, cellW, 3)
					dc.Fill()
				}
			}
		}
	}
	return dc.Image(), nil
}

// WritePNG renders the panel of d as a PNG image.
func WritePNG(w io.Writer, d *Dev) error {
	img, err := Image(d)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(img).EncodePNG(w)
}
