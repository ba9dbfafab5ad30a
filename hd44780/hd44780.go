// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi LCD display chipset HD-44780 in 4 bit
// mode, wired behind an 8 bit I/O expander such as the PCF8574 found on
// LCD1602/LCD2004 I²C backpacks.
//
// Every expander write carries the whole interface in one byte:
//
//	bit 7..4  D7..D4
//	bit 3     backlight
//	bit 2     E (enable)
//	bit 1     R/W, always 0
//	bit 0     RS (0 = instruction, 1 = data)
//
// A nibble is latched by the display on the falling edge of E, so each nibble
// costs three expander writes: E low, E high, E low.
//
// The R/W line is never raised, so the busy flag cannot be read. All waits
// are fixed delays sized from the datasheet.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"time"
)

// Expander is the output port the display's data and control lines hang off.
// Each Out call must result in exactly one write on the wire.
type Expander interface {
	Out(value uint16) error
	String() string
}

// State is the interface state of the display controller.
type State int

const (
	// Uninitialized is the state after power on: the interface width is
	// unknown.
	Uninitialized State = iota
	// Transitional means at least one 8 bit function set has been sent.
	Transitional
	// Ready means the controller is in 4 bit mode and accepts commands.
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Transitional:
		return "8-bit"
	case Ready:
		return "4-bit"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Instructions.
const (
	cmdClear       byte = 0x01
	cmdHome        byte = 0x02
	cmdEntryMode   byte = 0x04
	entryIncrement byte = 0x02
	entryShift     byte = 0x01
	cmdControl     byte = 0x08
	controlDisplay byte = 0x04
	controlCursor  byte = 0x02
	controlBlink   byte = 0x01
	cmdShift       byte = 0x10
	shiftRight     byte = 0x04
	cmdFunction    byte = 0x20
	function2Line  byte = 0x08
	cmdCGRAM       byte = 0x40
	cmdDDRAM       byte = 0x80

	// Base DDRAM address commands of the first two rows.
	row0 byte = cmdDDRAM | 0x00
	row1 byte = cmdDDRAM | 0x40

	// High nibbles of the reset sequence.
	nibble8Bit byte = 0x03
	nibble4Bit byte = 0x02
)

// Delays. Each value meets the datasheet minimum noted next to it.
const (
	// Vcc rise to 4.5V: more than 40ms (15ms at 5V).
	powerOnDelay = 50 * time.Millisecond
	// After the first 8 bit function set: more than 4.1ms.
	resetDelayLong = 5 * time.Millisecond
	// After the second and third 8 bit function set: more than 100µs.
	resetDelayShort = 200 * time.Microsecond
	// E high level width: more than 450ns.
	enablePulse = 200 * time.Microsecond
	// Execution time of most instructions: 37µs.
	commandHold = 500 * time.Microsecond
	// Clear display and return home: 1.52ms.
	clearDelay = 2 * time.Millisecond
)

var (
	// ErrNotReady is returned when a command is sent before Init completed.
	ErrNotReady = errors.New("hd44780: display not initialized")
	// ErrGeometry is returned for unsupported row/column counts.
	ErrGeometry = errors.New("hd44780: unsupported geometry")
)

// Dev is an HD44780 display behind an I/O expander.
//
// Dev is not safe for concurrent use.
type Dev struct {
	port      Expander
	rows      int
	cols      int
	backlight byte
	state     State
	control   byte
	entry     byte
	sleep     func(time.Duration)
}

// New returns a Dev driving the display through port, and runs Init. The
// backlight starts on.
func New(port Expander, rows, cols int) (*Dev, error) {
	return newDev(port, rows, cols, time.Sleep)
}

func newDev(port Expander, rows, cols int, sleep func(time.Duration)) (*Dev, error) {
	if rows < 1 || rows > 4 || cols < 1 || cols > 40 || rows*cols > 80 {
		return nil, fmt.Errorf("%w: %dx%d", ErrGeometry, cols, rows)
	}
	d := &Dev{
		port:      port,
		rows:      rows,
		cols:      cols,
		backlight: bitBacklight,
		sleep:     sleep,
	}
	return d, d.Init()
}

// Init brings the controller from an unknown state into 4 bit mode: three 8
// bit function sets, the switch to 4 bit, then function set (2 lines, 5x8
// font), display on with no cursor, increment entry mode and a clear.
//
// The sequence is fixed by the datasheet and does not depend on the
// backlight state.
func (d *Dev) Init() error {
	d.state = Uninitialized
	d.sleep(powerOnDelay)

	if err := d.writeNibble(nibble8Bit, 0); err != nil {
		return err
	}
	d.state = Transitional
	d.sleep(resetDelayLong)
	if err := d.writeNibble(nibble8Bit, 0); err != nil {
		return err
	}
	d.sleep(resetDelayShort)
	if err := d.writeNibble(nibble8Bit, 0); err != nil {
		return err
	}
	d.sleep(resetDelayShort)
	if err := d.writeNibble(nibble4Bit, 0); err != nil {
		return err
	}
	d.state = Ready

	d.control = controlDisplay
	d.entry = entryIncrement
	for _, c := range []byte{
		cmdFunction | function2Line,
		cmdControl | d.control,
		cmdEntryMode | d.entry,
	} {
		if err := d.SendCommand(c); err != nil {
			return err
		}
	}
	return d.Clear()
}

// State returns the interface state of the controller.
func (d *Dev) State() State {
	return d.state
}

// SendCommand writes an instruction byte (RS low).
func (d *Dev) SendCommand(c byte) error {
	if d.state != Ready {
		return ErrNotReady
	}
	return d.writeByte(c, 0)
}

// SendData writes a byte to display RAM (RS high).
func (d *Dev) SendData(b byte) error {
	if d.state != Ready {
		return ErrNotReady
	}
	return d.writeByte(b, bitRS)
}

// Print writes s at the cursor, one data byte per character, stopping at the
// first NUL byte if there is one. Nothing is escaped and nothing wraps.
func (d *Dev) Print(s string) error {
	for i := 0; i < len(s) && s[i] != 0; i++ {
		if err := d.SendData(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetCursor moves the cursor to the zero based col on row 0, or on row 1 for
// any other row. col is not checked against the display width.
func (d *Dev) SetCursor(col, row int) error {
	base := row1
	if row == 0 {
		base = row0
	}
	return d.SendCommand(base + byte(col))
}

// Clear blanks the display and moves the cursor home.
func (d *Dev) Clear() error {
	if err := d.SendCommand(cmdClear); err != nil {
		return err
	}
	d.sleep(clearDelay)
	return nil
}

// SetBacklight turns the backlight on or off. The new state is latched into
// every following write; one write with only the backlight bit is sent right
// away so the line changes without touching the display contents.
func (d *Dev) SetBacklight(on bool) error {
	if on {
		d.backlight = bitBacklight
	} else {
		d.backlight = 0
	}
	return d.out(d.backlight)
}

// BacklightOn reports the last commanded backlight state.
func (d *Dev) BacklightOn() bool {
	return d.backlight != 0
}

// writeByte sends the high nibble, then the low nibble.
func (d *Dev) writeByte(v, rs byte) error {
	if err := d.writeNibble(v>>4, rs); err != nil {
		return err
	}
	return d.writeNibble(v&0x0f, rs)
}

// writeNibble presents the nibble with E low, raises E, then drops it so the
// controller latches on the falling edge.
func (d *Dev) writeNibble(n, rs byte) error {
	b := n<<4 | rs | d.backlight
	if err := d.out(b); err != nil {
		return err
	}
	if err := d.out(b | bitEnable); err != nil {
		return err
	}
	d.sleep(enablePulse)
	if err := d.out(b); err != nil {
		return err
	}
	d.sleep(commandHold)
	return nil
}

func (d *Dev) out(b byte) error {
	if err := d.port.Out(uint16(b)); err != nil {
		return fmt.Errorf("hd44780: %w", err)
	}
	return nil
}
