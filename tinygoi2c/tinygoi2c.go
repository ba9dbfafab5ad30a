// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tinygoi2c exposes a TinyGo I²C bus as a periph i2c.Bus.
//
// On microcontrollers the bus is usually machine.I2C0 or machine.I2C1,
// configured by the caller before it is wrapped:
//
//	machine.I2C0.Configure(machine.I2CConfig{Frequency: 100 * machine.KHz})
//	bus := tinygoi2c.New(machine.I2C0, "I2C0")
//
// Any other type implementing drivers.I2C works too.
package tinygoi2c

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// ErrSpeedUnsupported is returned by SetSpeed when the wrapped bus cannot
// change its clock.
var ErrSpeedUnsupported = errors.New("tinygoi2c: bus speed cannot be changed")

// baudRater is implemented by machine.I2C on most targets.
type baudRater interface {
	SetBaudRate(br uint32) error
}

// Bus is an i2c.Bus backed by a TinyGo bus.
type Bus struct {
	mu   sync.Mutex
	b    drivers.I2C
	name string
}

// New returns a Bus forwarding to b. name is only used by String.
func New(b drivers.I2C, name string) *Bus {
	return &Bus{b: b, name: name}
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.b.Tx(addr, w, r); err != nil {
		return fmt.Errorf("tinygoi2c: %w", err)
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	if f < physic.Hertz || f/physic.Hertz > 0xffffffff {
		return fmt.Errorf("tinygoi2c: invalid speed %s", f)
	}
	s, ok := b.b.(baudRater)
	if !ok {
		return ErrSpeedUnsupported
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := s.SetBaudRate(uint32(f / physic.Hertz)); err != nil {
		return fmt.Errorf("tinygoi2c: %w", err)
	}
	return nil
}

// Close implements i2c.BusCloser. The TinyGo bus stays configured.
func (b *Bus) Close() error {
	return nil
}

func (b *Bus) String() string {
	return b.name
}

var _ i2c.BusCloser = &Bus{}
