// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	backendHost = "host"
	backendUSCI = "usci"
	backendSim  = "sim"

	defaultAddress = 0x27
	defaultRows    = 2
	defaultCols    = 16

	// USCI_B1 and port 4 of an MSP430F5529.
	defaultUSCIBase  = 0x0620
	defaultPortBase  = 0x0220
	defaultPortSel   = 0x0b
	defaultPinMask   = 0x06
	defaultClockHz   = 1000000
	defaultSpeedHz   = 100000
	registerFileSize = 0x20
)

// Config is the content of the optional YAML file. Command line flags
// override it.
type Config struct {
	Backend string        `yaml:"backend"`
	Bus     string        `yaml:"bus"`
	Address uint16        `yaml:"address"`
	Rows    int           `yaml:"rows"`
	Cols    int           `yaml:"cols"`
	Timeout time.Duration `yaml:"timeout"`
	PNG     string        `yaml:"png"`
	USCI    struct {
		Base          uint64 `yaml:"base"`
		PortBase      uint64 `yaml:"portBase"`
		PortSel       uint16 `yaml:"portSel"`
		PinMask       uint8  `yaml:"pinMask"`
		SourceClockHz int64  `yaml:"sourceClockHz"`
		SpeedHz       int64  `yaml:"speedHz"`
	} `yaml:"usci"`
}

func readConfig(path string) (*Config, error) {
	if path == "" {
		return parseConfig(nil)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(content)
}

func parseConfig(content []byte) (*Config, error) {
	c := &Config{}
	err := yaml.Unmarshal(content, c)
	if err != nil {
		return nil, err
	}
	c.defaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) defaults() {
	if c.Backend == "" {
		c.Backend = backendHost
	}
	if c.Address == 0 {
		c.Address = defaultAddress
	}
	if c.Rows == 0 {
		c.Rows = defaultRows
	}
	if c.Cols == 0 {
		c.Cols = defaultCols
	}
	if c.USCI.Base == 0 {
		c.USCI.Base = defaultUSCIBase
	}
	if c.USCI.PortBase == 0 {
		c.USCI.PortBase = defaultPortBase
	}
	if c.USCI.PortSel == 0 {
		c.USCI.PortSel = defaultPortSel
	}
	if c.USCI.PinMask == 0 {
		c.USCI.PinMask = defaultPinMask
	}
	if c.USCI.SourceClockHz == 0 {
		c.USCI.SourceClockHz = defaultClockHz
	}
	if c.USCI.SpeedHz == 0 {
		c.USCI.SpeedHz = defaultSpeedHz
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case backendHost, backendUSCI, backendSim:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Address > 0x7f {
		return fmt.Errorf("address 0x%x is not a 7 bit address", c.Address)
	}
	if c.Rows < 0 || c.Cols < 0 {
		return fmt.Errorf("invalid geometry %dx%d", c.Cols, c.Rows)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.USCI.SourceClockHz < 0 || c.USCI.SpeedHz < 0 {
		return fmt.Errorf("usci clocks must be positive")
	}
	if c.PNG != "" && c.Backend != backendSim {
		return fmt.Errorf("png output requires the %s backend", backendSim)
	}
	return nil
}
