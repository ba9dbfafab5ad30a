// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2clcd is a container for the packages driving HD44780 character
// LCDs through PCF8574 I²C backpacks.
//
// hd44780 is the display driver. It writes through pcf857x to any
// periph.io i2c.Bus: a host bus, the register level controller in
// i2cmaster, a TinyGo bus wrapped by tinygoi2c or the emulator in lcdsim.
package i2clcd
