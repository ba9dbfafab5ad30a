// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf857x

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestNew(t *testing.T) {
	bus := &i2ctest.Record{}
	dev, err := New(bus, 0x27, PCF8574)
	if err != nil {
		t.Fatal(err)
	}
	if s := dev.String(); s != "PCF8574_27" {
		t.Errorf("String()=%q", s)
	}
	if dev.Width() != 8 {
		t.Errorf("expected 8 pins, found %d", dev.Width())
	}
	if dev.Value() != 0xff {
		t.Errorf("expected power-on latch 0xff, found 0x%x", dev.Value())
	}
	if len(bus.Ops) != 0 {
		t.Errorf("New() touched the bus: %#v", bus.Ops)
	}

	if _, err = New(bus, 0x27, Variant("PCF8576")); !errors.Is(err, ErrVariant) {
		t.Errorf("expected ErrVariant, got %v", err)
	}
	if _, err = New(bus, 0x80, PCF8574); !errors.Is(err, ErrAddress) {
		t.Errorf("expected ErrAddress, got %v", err)
	}
}

// Repeated values must still reach the wire.
func TestOutRepeats(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: 0x27, W: []byte{0x38}},
		{Addr: 0x27, W: []byte{0x3c}},
		{Addr: 0x27, W: []byte{0x38}},
		{Addr: 0x27, W: []byte{0x38}},
	}}
	dev, err := New(bus, 0x27, PCF8574)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []uint16{0x38, 0x3c, 0x38, 0x38} {
		if err = dev.Out(v); err != nil {
			t.Fatal(err)
		}
	}
	if err = bus.Close(); err != nil {
		t.Error(err)
	}
	if dev.Value() != 0x38 {
		t.Errorf("Value()=0x%x", dev.Value())
	}
}

func TestWide(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultAddress, W: []byte{0x34, 0x12}},
		{Addr: DefaultAddress, R: []byte{0x30, 0x12}},
	}}
	dev, err := New(bus, DefaultAddress, PCF8575)
	if err != nil {
		t.Fatal(err)
	}
	if err = dev.Out(0x1234); err != nil {
		t.Fatal(err)
	}
	v, err := dev.Read()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x1230 {
		t.Errorf("Read()=0x%x, expected 0x1230", v)
	}
	if err = bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutError(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, 0x27, PCF8574)
	if err != nil {
		t.Fatal(err)
	}
	if err = dev.Out(0x08); err == nil {
		t.Fatal("expected an error from an empty playback")
	}
	if dev.Value() != 0xff {
		t.Errorf("failed write changed the latch to 0x%x", dev.Value())
	}
	if err = dev.Halt(); err != nil {
		t.Error(err)
	}
}
