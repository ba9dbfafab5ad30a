// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim emulates an HD44780 character LCD on a PCF8574 I²C backpack.
//
// Dev implements i2c.Bus. Every byte written to the expander address is
// latched like the PCF8574 would, and each falling edge of the E bit hands
// the upper nibble to an emulated controller. The controller starts in 8 bit
// mode, switches to 4 bit mode on the usual function set and executes
// instructions and data writes into its display and character generator RAM.
//
// Useful to run the driver and tools without hardware, and to check what
// would have been shown. See Terminal and WritePNG for rendering.
package lcdsim

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Expander bits.
const (
	bitRS        byte = 0x01
	bitEnable    byte = 0x04
	bitBacklight byte = 0x08
)

// Mode is the interface width the emulated controller is in.
type Mode int

const (
	// PowerOn is the state before any instruction was latched. The
	// controller behaves as in 8 bit mode.
	PowerOn Mode = iota
	// EightBit follows an 8 bit function set.
	EightBit
	// FourBit follows a 4 bit function set.
	FourBit
)

func (m Mode) String() string {
	switch m {
	case PowerOn:
		return "power-on"
	case EightBit:
		return "8-bit"
	case FourBit:
		return "4-bit"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Nibble is one value latched on a falling edge of E.
type Nibble struct {
	Data  bool
	Value byte
}

// Transfer is one complete byte received in 4 bit mode.
type Transfer struct {
	Data  bool
	Value byte
}

// Opts describes the emulated module.
type Opts struct {
	Addr uint16
	Rows int
	Cols int
}

// DefaultOpts is a 16x2 module at the common backpack address.
var DefaultOpts = Opts{Addr: 0x27, Rows: 2, Cols: 16}

// Dev is an emulated backpack and display. It is safe for concurrent use.
type Dev struct {
	mu   sync.Mutex
	addr uint16
	rows int
	cols int

	latch     byte
	writes    []byte
	mode      Mode
	high      byte
	haveHigh  bool
	nibbles   []Nibble
	transfers []Transfer

	ddram     [0x80]byte
	cgram     [0x40]byte
	ac        byte
	cgMode    bool
	increment bool
	autoShift bool
	displayOn bool
	cursorOn  bool
	blinkOn   bool
	twoLine   bool
	shift     int
}

// New returns an emulated module. A nil opts uses DefaultOpts.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{addr: opts.Addr, rows: opts.Rows, cols: opts.Cols}
	d.powerOn()
	return d
}

// Tx implements i2c.Bus. Transfers to any other address fail like an
// unacknowledged address would. Reads return the latch.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if addr != d.addr {
		return fmt.Errorf("lcdsim: no device at 0x%x", addr)
	}
	for _, b := range w {
		d.write(b)
	}
	for i := range r {
		r[i] = d.latch
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (d *Dev) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (d *Dev) Close() error {
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("lcdsim(%dx%d@0x%x)", d.cols, d.rows, d.addr)
}

// Reset returns the controller to its power-on state and forgets the
// recorded history.
func (d *Dev) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.powerOn()
}

// Writes returns every byte latched by the expander.
func (d *Dev) Writes() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.writes...)
}

// Nibbles returns every nibble the controller latched, in any mode.
func (d *Dev) Nibbles() []Nibble {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Nibble(nil), d.nibbles...)
}

// Transfers returns the bytes assembled in 4 bit mode.
func (d *Dev) Transfers() []Transfer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Transfer(nil), d.transfers...)
}

// ClearHistory drops recorded writes, nibbles and transfers. The display
// state is kept.
func (d *Dev) ClearHistory() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = nil
	d.nibbles = nil
	d.transfers = nil
}

// Mode returns the interface width the controller is in.
func (d *Dev) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Backlight reports the level of the backlight line.
func (d *Dev) Backlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latch&bitBacklight != 0
}

// DisplayOn reports whether the display is enabled.
func (d *Dev) DisplayOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.displayOn
}

// Cursor reports the cursor and blink flags.
func (d *Dev) Cursor() (underline, blink bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursorOn, d.blinkOn
}

// Address returns the address counter. It points into CGRAM after a CGRAM
// address instruction, and into DDRAM otherwise.
func (d *Dev) Address() (addr byte, cgram bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ac, d.cgMode
}

// Glyph returns the 8 rows of custom character location.
func (d *Dev) Glyph(location byte) [8]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	var g [8]byte
	copy(g[:], d.cgram[int(location&7)*8:])
	return g
}

// Lines returns the raw character codes visible on each row, taking the
// display shift into account.
func (d *Dev) Lines() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	lines := make([][]byte, d.rows)
	for row := range d.rows {
		lines[row] = make([]byte, d.cols)
		for col := range d.cols {
			lines[row][col] = d.ddram[d.visible(row, col)]
		}
	}
	return lines
}

// Text returns Lines with the character codes mapped to runes.
func (d *Dev) Text() []string {
	lines := d.Lines()
	text := make([]string, len(lines))
	for i, l := range lines {
		r := make([]rune, len(l))
		for j, c := range l {
			r[j] = Rune(c)
		}
		text[i] = string(r)
	}
	return text
}

// CursorPos returns the zero based position of the address counter on the
// visible area, if it is visible.
func (d *Dev) CursorPos() (col, row int, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cgMode {
		return 0, 0, false
	}
	for r := range d.rows {
		for c := range d.cols {
			if d.visible(r, c) == int(d.ac) {
				return c, r, true
			}
		}
	}
	return 0, 0, false
}

// Rune maps a character code of the A00 (Japanese) character ROM to the
// closest rune. Codes 0x00-0x0f are the custom characters.
func Rune(c byte) rune {
	switch {
	case c < 0x10:
		return '▒'
	case c == 0x5c:
		return '¥'
	case c == 0x7e:
		return '→'
	case c == 0x7f:
		return '←'
	case c >= 0x20 && c < 0x7e:
		return rune(c)
	case c == 0xdf:
		return '°'
	case c == 0xff:
		return '█'
	}
	return '?'
}

func (d *Dev) powerOn() {
	d.latch = 0
	d.writes = nil
	d.mode = PowerOn
	d.haveHigh = false
	d.nibbles = nil
	d.transfers = nil
	for i := range d.ddram {
		d.ddram[i] = ' '
	}
	d.cgram = [0x40]byte{}
	d.ac = 0
	d.cgMode = false
	d.increment = true
	d.autoShift = false
	d.displayOn = false
	d.cursorOn = false
	d.blinkOn = false
	d.twoLine = false
	d.shift = 0
}

// write latches one expander byte.
func (d *Dev) write(b byte) {
	prev := d.latch
	d.latch = b
	d.writes = append(d.writes, b)
	if prev&bitEnable != 0 && b&bitEnable == 0 {
		// The controller samples D7..D4 and RS while E falls; hold time
		// means the values present with E high are the ones taken.
		d.strobe(prev>>4, prev&bitRS != 0)
	}
}

func (d *Dev) strobe(n byte, data bool) {
	d.nibbles = append(d.nibbles, Nibble{Data: data, Value: n})
	if d.mode != FourBit {
		// D3..D0 are not wired on the backpack and read as 0.
		d.execute(n<<4, data)
		return
	}
	if !d.haveHigh {
		d.high = n
		d.haveHigh = true
		return
	}
	d.haveHigh = false
	v := d.high<<4 | n
	d.transfers = append(d.transfers, Transfer{Data: data, Value: v})
	d.execute(v, data)
}

func (d *Dev) execute(v byte, data bool) {
	if data {
		d.writeRAM(v)
		return
	}
	switch {
	case v&0x80 != 0:
		d.ac = v & 0x7f
		d.cgMode = false
	case v&0x40 != 0:
		d.ac = v & 0x3f
		d.cgMode = true
	case v&0x20 != 0:
		if v&0x10 != 0 {
			d.mode = EightBit
		} else {
			d.mode = FourBit
		}
		d.haveHigh = false
		d.twoLine = v&0x08 != 0
	case v&0x10 != 0:
		right := v&0x04 != 0
		if v&0x08 != 0 {
			if right {
				d.shift--
			} else {
				d.shift++
			}
		} else {
			d.ac = d.step(d.ac, right)
		}
	case v&0x08 != 0:
		d.displayOn = v&0x04 != 0
		d.cursorOn = v&0x02 != 0
		d.blinkOn = v&0x01 != 0
	case v&0x04 != 0:
		d.increment = v&0x02 != 0
		d.autoShift = v&0x01 != 0
	case v&0x02 != 0:
		d.ac = 0
		d.shift = 0
		d.cgMode = false
	case v == 0x01:
		for i := range d.ddram {
			d.ddram[i] = ' '
		}
		d.ac = 0
		d.shift = 0
		d.cgMode = false
		d.increment = true
	}
}

func (d *Dev) writeRAM(v byte) {
	if d.cgMode {
		d.cgram[d.ac&0x3f] = v
		if d.increment {
			d.ac = (d.ac + 1) & 0x3f
		} else {
			d.ac = (d.ac - 1) & 0x3f
		}
		return
	}
	d.ddram[d.ac&0x7f] = v
	d.ac = d.step(d.ac, d.increment)
	if d.autoShift {
		if d.increment {
			d.shift++
		} else {
			d.shift--
		}
	}
}

// step moves a DDRAM address one position, wrapping the way the controller
// does: 0x00-0x4f on one line modules, 0x00-0x27 and 0x40-0x67 on two line
// ones.
func (d *Dev) step(ac byte, forward bool) byte {
	if !d.twoLine {
		if forward {
			return (ac + 1) % 0x50
		}
		if ac == 0 {
			return 0x4f
		}
		return ac - 1
	}
	if forward {
		switch ac {
		case 0x27:
			return 0x40
		case 0x67:
			return 0x00
		}
		return ac + 1
	}
	switch ac {
	case 0x00:
		return 0x67
	case 0x40:
		return 0x27
	}
	return ac - 1
}

// visible returns the DDRAM address shown at row, col.
func (d *Dev) visible(row, col int) int {
	width := 0x50
	base := 0
	if d.twoLine {
		width = 0x28
		base = (row % 2) * 0x40
	}
	offset := col + d.shift
	if row >= 2 {
		offset += d.cols
	}
	offset %= width
	if offset < 0 {
		offset += width
	}
	return base + offset
}

var _ i2c.BusCloser = &Dev{}
