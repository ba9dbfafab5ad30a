// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// AutoScroll shifts the whole display on each write instead of moving the
// cursor.
func (d *Dev) AutoScroll(enabled bool) error {
	entry := d.entry &^ entryShift
	if enabled {
		entry |= entryShift
	}
	if err := d.SendCommand(cmdEntryMode | entry); err != nil {
		return err
	}
	d.entry = entry
	return nil
}

// Return the number of columns the display supports
func (d *Dev) Cols() int {
	return d.cols
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
//
// The HD44780 has an underline cursor and a blinking block. CursorBlock and
// CursorBlink both select the blinking block; CursorBlink keeps the underline
// too.
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	control := d.control & controlDisplay
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			control &^= controlCursor | controlBlink
		case display.CursorUnderline:
			control |= controlCursor
		case display.CursorBlock:
			control |= controlBlink
		case display.CursorBlink:
			control |= controlCursor | controlBlink
		default:
			return fmt.Errorf("hd44780: unexpected cursor: %d", mode)
		}
	}
	if err := d.SendCommand(cmdControl | control); err != nil {
		return err
	}
	d.control = control
	return nil
}

// Move the cursor home (MinRow(),MinCol()). This also undoes any display
// shift.
func (d *Dev) Home() error {
	if err := d.SendCommand(cmdHome); err != nil {
		return err
	}
	d.sleep(clearDelay)
	return nil
}

// Return the min column position.
func (d *Dev) MinCol() int {
	return 1
}

// Return the min row position.
func (d *Dev) MinRow() int {
	return 1
}

// Move the cursor forward or backward.
func (d *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Backward:
		return d.SendCommand(cmdShift)
	case display.Forward:
		return d.SendCommand(cmdShift | shiftRight)
	case display.Up, display.Down:
		return fmt.Errorf("hd44780: %w", display.ErrNotImplemented)
	}
	return fmt.Errorf("hd44780: unexpected direction: %d", dir)
}

// Move the cursor to arbitrary position. Rows and columns are 1 based.
func (d *Dev) MoveTo(row, col int) error {
	if row < d.MinRow() || row > d.rows || col < d.MinCol() || col > d.cols {
		return fmt.Errorf("hd44780: MoveTo(%d,%d) value out of range", row, col)
	}
	return d.SendCommand(cmdDDRAM | (d.rowOffset(row-1) + byte(col-1)))
}

// rowOffset returns the DDRAM address of the first column of row. Rows 2 and
// 3 of four line modules continue rows 0 and 1.
func (d *Dev) rowOffset(row int) byte {
	offset := byte(0)
	if row%2 == 1 {
		offset = 0x40
	}
	if row >= 2 {
		offset += byte(d.cols)
	}
	return offset
}

// Return the number of rows the display supports.
func (d *Dev) Rows() int {
	return d.rows
}

// Turn the display on / off. The contents are kept.
func (d *Dev) Display(on bool) error {
	control := d.control &^ controlDisplay
	if on {
		control |= controlDisplay
	}
	if err := d.SendCommand(cmdControl | control); err != nil {
		return err
	}
	d.control = control
	return nil
}

// Return info about the display.
func (d *Dev) String() string {
	return fmt.Sprintf("HD44780::%s - Rows: %d, Cols: %d", d.port, d.rows, d.cols)
}

// Write a set of bytes to the display. Unlike Print, NUL bytes are written
// too; they select custom character 0.
func (d *Dev) Write(p []byte) (n int, err error) {
	for _, b := range p {
		if err = d.SendData(b); err != nil {
			return
		}
		n++
	}
	return
}

// Write a string output to the display.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// CreateChar stores a 5x8 glyph in CGRAM slot location (0-7). Only the low 5
// bits of each row are used. The cursor is moved home afterwards because the
// address counter is left pointing into CGRAM.
func (d *Dev) CreateChar(location byte, glyph [8]byte) error {
	if err := d.SendCommand(cmdCGRAM | (location&0x07)<<3); err != nil {
		return err
	}
	for _, row := range glyph {
		if err := d.SendData(row & 0x1f); err != nil {
			return err
		}
	}
	return d.SendCommand(row0)
}

// Halt clears the display, turns the backlight off, and turns the display off.
func (d *Dev) Halt() error {
	return errors.Join(d.Clear(), d.SetBacklight(false), d.Display(false))
}

// Turn the display's backlight on or off. Any non-zero intensity is on.
func (d *Dev) Backlight(intensity display.Intensity) error {
	return d.SetBacklight(intensity > 0)
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
