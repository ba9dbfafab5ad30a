// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cmaster

import (
	"fmt"

	"periph.io/x/host/v3/pmem"
)

// Mapped is a Registers block backed by physical memory.
type Mapped struct {
	view *pmem.View
	mem  []byte
}

// Map maps size bytes of physical memory at base. It requires access to
// /dev/mem, which normally means running as root.
func Map(base uint64, size int) (*Mapped, error) {
	v, err := pmem.Map(base, size)
	if err != nil {
		return nil, fmt.Errorf("i2cmaster: %w", err)
	}
	return &Mapped{view: v, mem: v.Bytes()}, nil
}

// Read8 implements Registers.
func (m *Mapped) Read8(r Reg) uint8 {
	return m.mem[r]
}

// Write8 implements Registers.
func (m *Mapped) Write8(r Reg, v uint8) {
	m.mem[r] = v
}

// Close unmaps the block.
func (m *Mapped) Close() error {
	m.mem = nil
	return m.view.Close()
}

var _ Registers = &Mapped{}
