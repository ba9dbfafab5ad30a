// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cmaster

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Config is the clocking and pin routing of the controller.
type Config struct {
	// SourceClock is the frequency of SMCLK. It is assumed to already be
	// running at this rate.
	SourceClock physic.Frequency
	// Speed is the SCL frequency.
	Speed physic.Frequency
	// Pins, when set, is applied before the controller is configured.
	Pins *PortSelect
}

// DefaultConfig is ~100kHz SCL derived from a 1MHz SMCLK.
var DefaultConfig = Config{
	SourceClock: physic.MegaHertz,
	Speed:       100 * physic.KiloHertz,
}

var errDivider = errors.New("i2cmaster: clock divider out of range")

// USCI drives a USCI_B module in I²C master transmit mode. It implements
// Controller.
type USCI struct {
	regs   Registers
	source physic.Frequency
}

// NewUSCI returns a controller over the register block regs. Call Init before
// handing it to New.
func NewUSCI(regs Registers) *USCI {
	return &USCI{regs: regs}
}

// Init routes the pins and configures the module as a synchronous I²C master
// clocked from SMCLK. The module is held in software reset while its
// configuration registers are written.
func (u *USCI) Init(cfg *Config) error {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	br, err := divider(cfg.SourceClock, cfg.Speed)
	if err != nil {
		return err
	}
	if cfg.Pins != nil {
		cfg.Pins.apply()
	}
	setBits(u.regs, RegCTL1, CTL1Reset)
	u.regs.Write8(RegCTL0, CTL0Master|CTL0ModeI2C|CTL0Sync)
	u.regs.Write8(RegCTL1, CTL1SelSMCLK|CTL1Reset)
	u.regs.Write8(RegBR0, uint8(br))
	u.regs.Write8(RegBR1, uint8(br>>8))
	clearBits(u.regs, RegCTL1, CTL1Reset)
	u.source = cfg.SourceClock
	return nil
}

// SetSpeed reprograms the SCL divider. The module is briefly held in reset.
func (u *USCI) SetSpeed(f physic.Frequency) error {
	br, err := divider(u.source, f)
	if err != nil {
		return err
	}
	setBits(u.regs, RegCTL1, CTL1Reset)
	u.regs.Write8(RegBR0, uint8(br))
	u.regs.Write8(RegBR1, uint8(br>>8))
	clearBits(u.regs, RegCTL1, CTL1Reset)
	return nil
}

// Start loads the target address and generates START in transmit mode.
func (u *USCI) Start(addr uint16) {
	u.regs.Write8(RegI2CSA, uint8(addr))
	u.regs.Write8(RegI2CSA+1, uint8(addr>>8))
	setBits(u.regs, RegCTL1, CTL1Transmit|CTL1Start)
}

// TxReady reports whether TXBUF can accept the next byte.
func (u *USCI) TxReady() bool {
	return u.regs.Read8(RegIFG)&IFGTx != 0
}

// Transmit loads b into TXBUF.
func (u *USCI) Transmit(b byte) {
	u.regs.Write8(RegTXBUF, b)
}

// Stop generates STOP and drops the pending transmit flag.
func (u *USCI) Stop() {
	setBits(u.regs, RegCTL1, CTL1Stop)
	clearBits(u.regs, RegIFG, IFGTx)
}

// Stopped reports whether the STOP condition has been sent.
func (u *USCI) Stopped() bool {
	return u.regs.Read8(RegCTL1)&CTL1Stop == 0
}

func divider(source, speed physic.Frequency) (uint16, error) {
	if source <= 0 || speed <= 0 {
		return 0, fmt.Errorf("%w: source %s, speed %s", errDivider, source, speed)
	}
	br := source / speed
	if br < 1 || br > 0xffff {
		return 0, fmt.Errorf("%w: %s / %s", errDivider, source, speed)
	}
	return uint16(br), nil
}

var _ Controller = &USCI{}
