// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/i2c"

	"github.com/GermanBionicSystems/i2clcd/pcf857x"
)

// DefaultAddress is the usual address of PCF8574 backpacks with A0..A2 left
// open. PCF8574A based ones answer at 0x3f.
const DefaultAddress uint16 = 0x27

// Expander bit assignment of the PCF8574 backpack. The LCD pin is named, the
// value is the bit (P0..P7) of the expander driving it.
const (
	bitRS        byte = 1 << 0
	bitRW        byte = 1 << 1
	bitEnable    byte = 1 << 2
	bitBacklight byte = 1 << 3
	// D4..D7 are P4..P7, so a nibble shifted left by 4 lands on them.
)

// NewPCF857xBackpack returns a display configured to use the pcf8574 i2c
// backpacks.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// To use this, get an I2C bus, and call this function with the bus, i2c
// address, number of rows, and columns. The display is initialized before
// returning.
func NewPCF857xBackpack(bus i2c.Bus, address uint16, rows, cols int) (*Dev, error) {
	pcf, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, err
	}
	return New(pcf, rows, cols)
}
