// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/display"

	"github.com/GermanBionicSystems/i2clcd/hd44780"
	"github.com/GermanBionicSystems/i2clcd/lcdsim"
)

// demoStep is the pause between demo screens.
var demoStep = 2 * time.Second

func newDisplay(b *backend, c *Config) (*hd44780.Dev, error) {
	lcd, err := hd44780.NewPCF857xBackpack(b.bus, c.Address, c.Rows, c.Cols)
	if err != nil {
		return nil, err
	}
	log.Debugf("Initialized %s", lcd)
	return lcd, nil
}

// printLines prints each line on its own row, starting at the top. Extra
// lines are dropped.
func printLines(lcd *hd44780.Dev, lines []string) error {
	if len(lines) > lcd.Rows() {
		log.Warnf("Only %d of %d lines fit", lcd.Rows(), len(lines))
		lines = lines[:lcd.Rows()]
	}
	for i, l := range lines {
		if err := lcd.MoveTo(lcd.MinRow()+i, lcd.MinCol()); err != nil {
			return err
		}
		if err := lcd.Print(l); err != nil {
			return err
		}
	}
	return nil
}

var heart = [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}

func runDemo(lcd *hd44780.Dev, b *backend, stdout io.Writer) error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"hello", func() error {
			if err := lcd.CreateChar(0, heart); err != nil {
				return err
			}
			if err := printLines(lcd, []string{"Hello from", "periph"}); err != nil {
				return err
			}
			_, err := lcd.Write([]byte{' ', 0x00})
			return err
		}},
		{"cursor", func() error {
			if err := lcd.Clear(); err != nil {
				return err
			}
			if err := lcd.Print("Cursor:"); err != nil {
				return err
			}
			return lcd.Cursor(display.CursorBlink)
		}},
		{"rows", func() error {
			if err := lcd.Cursor(display.CursorOff); err != nil {
				return err
			}
			if err := lcd.Clear(); err != nil {
				return err
			}
			// SetCursor only addresses the first two rows.
			for row := range min(lcd.Rows(), 2) {
				if err := lcd.SetCursor(2*row, row); err != nil {
					return err
				}
				if err := lcd.Print("row"); err != nil {
					return err
				}
			}
			return nil
		}},
		{"backlight", func() error {
			return lcd.SetBacklight(false)
		}},
		{"done", func() error {
			if err := lcd.SetBacklight(true); err != nil {
				return err
			}
			if err := lcd.Clear(); err != nil {
				return err
			}
			return lcd.Print("Done!")
		}},
	}
	for _, s := range steps {
		log.Debugf("Demo step %s", s.name)
		if err := s.run(); err != nil {
			return err
		}
		if b.sim != nil {
			if err := newTerminal(stdout).Render(b.sim); err != nil {
				return err
			}
		}
		time.Sleep(demoStep)
	}
	return nil
}

// render draws the emulated display, if any.
func render(b *backend, c *Config, stdout io.Writer) error {
	if b.sim == nil {
		return nil
	}
	if err := newTerminal(stdout).Render(b.sim); err != nil {
		return err
	}
	if c.PNG == "" {
		return nil
	}
	f, err := os.Create(c.PNG)
	if err != nil {
		return err
	}
	if err := lcdsim.WritePNG(f, b.sim); err != nil {
		_ = f.Close()
		return err
	}
	log.Infof("Wrote %s", c.PNG)
	return f.Close()
}

func newTerminal(stdout io.Writer) *lcdsim.Terminal {
	return lcdsim.NewTerminal(&lcdsim.TermOpts{W: stdout})
}
