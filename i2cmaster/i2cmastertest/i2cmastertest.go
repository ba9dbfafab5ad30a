// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cmastertest is meant to be used to test drivers over a simulated
// USCI_B register block.
package i2cmastertest

import (
	"sync"

	"github.com/GermanBionicSystems/i2clcd/i2cmaster"
)

// Write is one register store, in program order.
type Write struct {
	Reg   i2cmaster.Reg
	Value uint8
}

// Frame is one completed START ... STOP transfer.
type Frame struct {
	Addr uint16
	W    []byte
}

// Device simulates the register file of an I²C controller in master
// transmit mode. It implements i2cmaster.Registers.
//
// The transmit flag comes up as soon as START or a TXBUF load is issued,
// unless Stall is set. A requested STOP stays pending for StopPolls reads of
// CTL1 before it clears.
type Device struct {
	sync.Mutex
	// Stall keeps the transmit flag low, as with an absent target.
	Stall bool
	// StopPolls is the number of CTL1 reads that still see STOP pending.
	StopPolls int

	regs    map[i2cmaster.Reg]uint8
	writes  []Write
	frames  []Frame
	cur     *Frame
	pending int
}

// Read8 implements i2cmaster.Registers.
func (d *Device) Read8(r i2cmaster.Reg) uint8 {
	d.Lock()
	defer d.Unlock()
	v := d.get(r)
	if r == i2cmaster.RegCTL1 && v&i2cmaster.CTL1Stop != 0 {
		if d.pending <= 0 {
			d.set(r, v&^i2cmaster.CTL1Stop)
		} else {
			d.pending--
		}
	}
	return v
}

// Write8 implements i2cmaster.Registers.
func (d *Device) Write8(r i2cmaster.Reg, v uint8) {
	d.Lock()
	defer d.Unlock()
	d.writes = append(d.writes, Write{Reg: r, Value: v})
	switch r {
	case i2cmaster.RegCTL1:
		old := d.get(r)
		if v&i2cmaster.CTL1Start != 0 && old&i2cmaster.CTL1Start == 0 {
			addr := uint16(d.get(i2cmaster.RegI2CSA)) | uint16(d.get(i2cmaster.RegI2CSA+1))<<8
			d.cur = &Frame{Addr: addr}
			// START and the address byte go out immediately.
			v &^= i2cmaster.CTL1Start
			d.raiseTx()
		}
		if v&i2cmaster.CTL1Stop != 0 && old&i2cmaster.CTL1Stop == 0 {
			if d.cur != nil {
				d.frames = append(d.frames, *d.cur)
				d.cur = nil
			}
			d.pending = d.StopPolls
		}
		d.set(r, v)
	case i2cmaster.RegTXBUF:
		d.set(i2cmaster.RegIFG, d.get(i2cmaster.RegIFG)&^i2cmaster.IFGTx)
		if d.cur != nil {
			d.cur.W = append(d.cur.W, v)
		}
		d.set(r, v)
		d.raiseTx()
	default:
		d.set(r, v)
	}
}

// Peek returns the current value of a register without side effects.
func (d *Device) Peek(r i2cmaster.Reg) uint8 {
	d.Lock()
	defer d.Unlock()
	return d.get(r)
}

// Writes returns every register store seen so far.
func (d *Device) Writes() []Write {
	d.Lock()
	defer d.Unlock()
	return append([]Write(nil), d.writes...)
}

// Frames returns the transfers terminated by STOP so far.
func (d *Device) Frames() []Frame {
	d.Lock()
	defer d.Unlock()
	return append([]Frame(nil), d.frames...)
}

// Reset forgets the recorded writes and frames. Register values are kept.
func (d *Device) Reset() {
	d.Lock()
	defer d.Unlock()
	d.writes = nil
	d.frames = nil
}

func (d *Device) raiseTx() {
	if !d.Stall {
		d.set(i2cmaster.RegIFG, d.get(i2cmaster.RegIFG)|i2cmaster.IFGTx)
	}
}

func (d *Device) get(r i2cmaster.Reg) uint8 {
	return d.regs[r]
}

func (d *Device) set(r i2cmaster.Reg, v uint8) {
	if d.regs == nil {
		d.regs = make(map[i2cmaster.Reg]uint8)
	}
	d.regs[r] = v
}

var _ i2cmaster.Registers = &Device{}
