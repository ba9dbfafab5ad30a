// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/i2clcd/i2cmaster"
	"github.com/GermanBionicSystems/i2clcd/lcdsim"
)

// backend is an opened bus. sim is set for the emulator only.
type backend struct {
	bus     i2c.Bus
	sim     *lcdsim.Dev
	closers []func() error
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

func openBackend(c *Config) (*backend, error) {
	switch c.Backend {
	case backendHost:
		return openHost(c)
	case backendUSCI:
		return openUSCI(c)
	case backendSim:
		sim := lcdsim.New(&lcdsim.Opts{Addr: c.Address, Rows: c.Rows, Cols: c.Cols})
		log.Debugf("Using %s", sim)
		return &backend{bus: sim, sim: sim}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", c.Backend)
}

func openHost(c *Config) (*backend, error) {
	state, err := host.Init()
	if err != nil {
		return nil, err
	}
	for _, d := range state.Loaded {
		log.Debugf("Loaded driver %s", d)
	}
	bus, err := i2creg.Open(c.Bus)
	if err != nil {
		return nil, err
	}
	log.Debugf("Using %s", bus)
	return &backend{bus: bus, closers: []func() error{bus.Close}}, nil
}

func openUSCI(c *Config) (*backend, error) {
	b := &backend{}
	regs, err := i2cmaster.Map(c.USCI.Base, registerFileSize)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, regs.Close)
	port, err := i2cmaster.Map(c.USCI.PortBase, registerFileSize)
	if err != nil {
		return nil, errors.Join(err, b.Close())
	}
	b.closers = append(b.closers, port.Close)

	usci := i2cmaster.NewUSCI(regs)
	cfg := &i2cmaster.Config{
		SourceClock: physic.Frequency(c.USCI.SourceClockHz) * physic.Hertz,
		Speed:       physic.Frequency(c.USCI.SpeedHz) * physic.Hertz,
		Pins:        &i2cmaster.PortSelect{Regs: port, Sel: i2cmaster.Reg(c.USCI.PortSel), Mask: c.USCI.PinMask},
	}
	if err := usci.Init(cfg); err != nil {
		return nil, errors.Join(err, b.Close())
	}
	bus := i2cmaster.New(usci, &i2cmaster.Opts{Name: i2cmaster.DefaultOpts.Name, Timeout: c.Timeout})
	log.Debugf("Using %s at 0x%x, %s from %s", bus, c.USCI.Base, cfg.Speed, cfg.SourceClock)
	b.bus = bus
	b.closers = append(b.closers, bus.Close)
	return b, nil
}
