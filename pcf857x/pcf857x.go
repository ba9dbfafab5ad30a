// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf857x provides a driver for the TI/NXP PCF857X I2C I/O Expander
// used as an output port. These devices latch 8 pins (PCF8574) or 16 pins
// (PCF8575) of "quasi-bidirectional" output. This device is commonly used in
// LCD backpacks, particularly those sold as LCD2004, LCD1602.
//
// The PCF8575 is functionally identical to the PCF8574. When communicating
// with the PCF8575 reads and writes are 2 bytes wide, while they're one byte
// wide with the PCF8574.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// A good description of the I2C LCD backpack usage can be found here:
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// # Notes
//
// This chip doesn't implement normal i2c register architectures. You write 8
// or 16 bits out, and that sets the corresponding pins, or you read 8/16 bits
// and get the state of the pins.
//
// Every call to Out is one bus transfer, even when the value is unchanged.
// Devices strobed through the expander, like an HD44780 Enable line, rely on
// that.
package pcf857x

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

// Variant represents the actual chip model.
type Variant string

const (
	PCF8574 Variant = "PCF8574"
	PCF8575 Variant = "PCF8575"

	DefaultAddress uint16 = 0x20
)

var (
	ErrVariant = errors.New("pcf857x: unknown variant")
	ErrAddress = errors.New("pcf857x: invalid 7-bit address")
)

// Dev is representation of a PCF857x device.
type Dev struct {
	chipType Variant
	width    int

	mu    sync.Mutex
	d     *i2c.Dev
	value uint16
}

// New creates a new PCF857x io expander and returns it. chip should be one of
// the Variant constants above.
//
// The device is not touched; the latch is assumed to hold its power-on value
// of all ones.
func New(bus i2c.Bus, address uint16, chip Variant) (*Dev, error) {
	dev := &Dev{d: &i2c.Dev{Bus: bus, Addr: address}, chipType: chip}
	switch chip {
	case PCF8574:
		dev.width = 8
	case PCF8575:
		dev.width = 16
	default:
		return nil, fmt.Errorf("%w: %q", ErrVariant, chip)
	}
	if address > 0x7f {
		return nil, fmt.Errorf("%w: 0x%x", ErrAddress, address)
	}
	dev.value = uint16(1<<dev.width - 1)
	return dev, nil
}

// Out writes value to the output latch in a single bus transfer.
func (dev *Dev) Out(value uint16) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	value &= uint16(1<<dev.width - 1)
	var w [2]byte
	w[0] = byte(value)
	w[1] = byte(value >> 8)
	if err := dev.d.Tx(w[:dev.width/8], nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.value = value
	return nil
}

// Value returns the last value written with Out.
func (dev *Dev) Value() uint16 {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// Read returns the level of the pins. Pins latched low always read low; pins
// latched high read whatever drives them.
func (dev *Dev) Read() (uint16, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	var r [2]byte
	if err := dev.d.Tx(nil, r[:dev.width/8]); err != nil {
		return 0, fmt.Errorf("pcf857x: %w", err)
	}
	return uint16(r[0]) | uint16(r[1])<<8, nil
}

// Width returns the number of pins.
func (dev *Dev) Width() int {
	return dev.width
}

// Halt implements conn.Resource. The latch keeps its last value.
func (dev *Dev) Halt() error {
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.chipType, dev.d.Addr)
}

var _ conn.Resource = &Dev{}
