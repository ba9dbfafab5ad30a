// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim_test

import (
	"fmt"
	"log"
	"os"

	"github.com/GermanBionicSystems/i2clcd/hd44780"
	"github.com/GermanBionicSystems/i2clcd/lcdsim"
)

func Example() {
	bus := lcdsim.New(nil)
	lcd, err := hd44780.NewPCF857xBackpack(bus, hd44780.DefaultAddress, 2, 16)
	if err != nil {
		log.Fatal(err)
	}
	if err := lcd.Print("Hello, world!"); err != nil {
		log.Fatal(err)
	}
	for _, line := range bus.Text() {
		fmt.Printf("|%s|\n", line)
	}
	// Output:
	// |Hello, world!   |
	// |                |
}

func ExampleTerminal() {
	bus := lcdsim.New(nil)
	lcd, err := hd44780.NewPCF857xBackpack(bus, hd44780.DefaultAddress, 2, 16)
	if err != nil {
		log.Fatal(err)
	}
	if err := lcd.SetCursor(0, 1); err != nil {
		log.Fatal(err)
	}
	if err := lcd.Print("second line"); err != nil {
		log.Fatal(err)
	}
	if err := lcdsim.NewTerminal(nil).Render(bus); err != nil {
		log.Fatal(err)
	}
	f, err := os.Create("lcd.png")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := lcdsim.WritePNG(f, bus); err != nil {
		log.Fatal(err)
	}
}
