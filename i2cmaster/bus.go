// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cmaster drives a memory mapped I²C controller in master transmit
// mode and exposes it as an i2c.Bus.
//
// The controller is reached through the Controller interface: start a
// transfer, poll for transmit ready, load a byte, stop, poll for stop
// completion. USCI implements it on top of a Registers block, which can be a
// physical mapping (see Map) or the simulated register file in i2cmastertest.
//
// # Blocking
//
// Every poll is a busy wait. With a zero Opts.Timeout, Tx never returns if the
// target stops responding, exactly like the bare metal loop it models. Set a
// timeout to get ErrTimeout instead.
//
// NACK and arbitration loss are not detected. A missing device is only
// noticed through the timeout.
package i2cmaster

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Controller is the capability set the bus needs from the hardware.
type Controller interface {
	// Start generates START followed by addr in transmit mode.
	Start(addr uint16)
	// TxReady reports whether the transmit buffer can be loaded.
	TxReady() bool
	// Transmit loads one byte into the transmit buffer.
	Transmit(b byte)
	// Stop requests a STOP condition.
	Stop()
	// Stopped reports whether the requested STOP has completed.
	Stopped() bool
}

var (
	// ErrTimeout is returned when a status flag did not come up within
	// Opts.Timeout.
	ErrTimeout = errors.New("i2cmaster: timeout")
	// ErrReadUnsupported is returned by Tx when a read buffer is supplied.
	ErrReadUnsupported = errors.New("i2cmaster: read not supported")
	// ErrAddress is returned for addresses that do not fit 7 bits.
	ErrAddress = errors.New("i2cmaster: invalid 7-bit address")
)

// Opts holds the bus options.
type Opts struct {
	// Name is returned by String.
	Name string
	// Timeout bounds every status poll. Zero blocks forever.
	Timeout time.Duration
}

// DefaultOpts blocks forever, like the polled loop on the microcontroller.
var DefaultOpts = Opts{Name: "USCI_B1"}

// Bus is a write-only i2c.Bus on top of a Controller.
type Bus struct {
	mu      sync.Mutex
	c       Controller
	name    string
	timeout time.Duration
}

// New returns a bus driving c. The controller must already be initialized.
func New(c Controller, opts *Opts) *Bus {
	if opts == nil {
		opts = &DefaultOpts
	}
	return &Bus{c: c, name: opts.Name, timeout: opts.Timeout}
}

// Tx writes w to the device at addr as one START ... STOP transfer.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if len(r) != 0 {
		return ErrReadUnsupported
	}
	if addr > 0x7f {
		return fmt.Errorf("%w: 0x%x", ErrAddress, addr)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.c.Start(addr)
	if err := b.wait(b.c.TxReady, "start"); err != nil {
		return b.abort(err)
	}
	for i, v := range w {
		b.c.Transmit(v)
		if err := b.wait(b.c.TxReady, "byte "+fmt.Sprint(i)); err != nil {
			return b.abort(err)
		}
	}
	b.c.Stop()
	return b.wait(b.c.Stopped, "stop")
}

// SetSpeed changes the SCL frequency when the controller supports it.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	s, ok := b.c.(interface {
		SetSpeed(f physic.Frequency) error
	})
	if !ok {
		return errors.New("i2cmaster: controller has a fixed clock")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return s.SetSpeed(f)
}

// Close implements i2c.BusCloser. The controller is left configured.
func (b *Bus) Close() error {
	return nil
}

func (b *Bus) String() string {
	return b.name
}

// wait polls cond until it reports true, or until the timeout elapses.
func (b *Bus) wait(cond func() bool, what string) error {
	if b.timeout <= 0 {
		for !cond() {
		}
		return nil
	}
	deadline := time.Now().Add(b.timeout)
	for !cond() {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s after %s", ErrTimeout, what, b.timeout)
		}
	}
	return nil
}

// abort releases the bus after a failed transfer. It only waits for STOP
// within the same timeout.
func (b *Bus) abort(err error) error {
	b.c.Stop()
	_ = b.wait(b.c.Stopped, "stop")
	return err
}

var _ i2c.BusCloser = &Bus{}
