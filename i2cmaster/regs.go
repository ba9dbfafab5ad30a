// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cmaster

// Reg is the byte offset of a register relative to the base of the
// controller's register block.
type Reg uint16

// Register offsets of a USCI_B module in I²C mode. The layout matches the
// MSP430F5xx family, where UCBxCTLW0 is stored little endian so CTL1 comes
// before CTL0.
const (
	RegCTL1  Reg = 0x00
	RegCTL0  Reg = 0x01
	RegBR0   Reg = 0x06
	RegBR1   Reg = 0x07
	RegSTAT  Reg = 0x0a
	RegRXBUF Reg = 0x0c
	RegTXBUF Reg = 0x0e
	RegI2COA Reg = 0x10
	RegI2CSA Reg = 0x12
	RegIE    Reg = 0x1c
	RegIFG   Reg = 0x1d
)

// CTL0 bits.
const (
	CTL0Master  uint8 = 0x08
	CTL0ModeI2C uint8 = 0x06
	CTL0Sync    uint8 = 0x01
)

// CTL1 bits.
const (
	CTL1SelSMCLK uint8 = 0x80
	CTL1Transmit uint8 = 0x10
	CTL1TxNack   uint8 = 0x08
	CTL1Stop     uint8 = 0x04
	CTL1Start    uint8 = 0x02
	CTL1Reset    uint8 = 0x01
)

// IFG bits.
const (
	IFGNack    uint8 = 0x20
	IFGArbLost uint8 = 0x10
	IFGStop    uint8 = 0x08
	IFGStart   uint8 = 0x04
	IFGTx      uint8 = 0x02
	IFGRx      uint8 = 0x01
)

// Registers is byte access to a block of peripheral registers.
//
// Implementations must not cache values: every Read8 has to observe the
// hardware, since the bus polls status flags in tight loops.
type Registers interface {
	Read8(r Reg) uint8
	Write8(r Reg, v uint8)
}

// PortSelect routes GPIO pins to their peripheral function by setting Mask in
// the port's function select register.
//
// On the MSP430F5529 the USCI_B1 pins are P4.1 (SDA) and P4.2 (SCL), so Sel
// is P4SEL and Mask is 0x06.
type PortSelect struct {
	Regs Registers
	Sel  Reg
	Mask uint8
}

func (p *PortSelect) apply() {
	p.Regs.Write8(p.Sel, p.Regs.Read8(p.Sel)|p.Mask)
}

func setBits(regs Registers, r Reg, mask uint8) {
	regs.Write8(r, regs.Read8(r)|mask)
}

func clearBits(regs Registers, r Reg, mask uint8) {
	regs.Write8(r, regs.Read8(r)&^mask)
}
