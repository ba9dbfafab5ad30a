// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcdctl drives a character LCD on a PCF8574 I²C backpack.
//
// The bus is either a host bus opened through periph (-backend host), the
// memory mapped USCI controller (-backend usci) or an emulated display that
// is drawn on the terminal (-backend sim).
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

type options struct {
	config  *string
	backend *string
	bus     *string
	addr    *uint16
	rows    *int
	cols    *int
	timeout *time.Duration
	png     *string
	debug   *bool

	print     *kingpin.CmdClause
	text      *[]string
	clear     *kingpin.CmdClause
	backlight *kingpin.CmdClause
	light     *string
	demo      *kingpin.CmdClause
	version   *kingpin.CmdClause
}

func newApp() (*kingpin.Application, *options) {
	app := kingpin.New("lcdctl", "Character LCD on a PCF8574 I²C backpack")
	o := &options{
		config:  app.Flag("config", "YAML configuration file.").String(),
		backend: app.Flag("backend", "Bus backend.").Enum(backendHost, backendUSCI, backendSim),
		bus:     app.Flag("bus", "I²C bus name or number, for the host backend.").String(),
		addr:    app.Flag("addr", "Backpack I²C address.").Uint16(),
		rows:    app.Flag("rows", "Number of rows.").Int(),
		cols:    app.Flag("cols", "Number of columns.").Int(),
		timeout: app.Flag("timeout", "Per condition bus timeout for the usci backend, 0 waits forever.").Duration(),
		png:     app.Flag("png", "Also write the emulated display to this PNG file.").String(),
		debug:   app.Flag("debug", "Turn on debug logging.").Bool(),
	}
	o.print = app.Command("print", "Print one line of text per argument.")
	o.text = o.print.Arg("text", "Lines to print.").Required().Strings()
	o.clear = app.Command("clear", "Clear the display.")
	o.backlight = app.Command("backlight", "Turn the backlight on or off.")
	o.light = o.backlight.Arg("state", "on or off.").Required().Enum("on", "off")
	o.demo = app.Command("demo", "Show the capabilities of the display.")
	o.version = app.Command("version", "Prints the version.")
	return app, o
}

// load reads the configuration file and applies the flags given on the
// command line.
func (o *options) load() (*Config, error) {
	c, err := readConfig(*o.config)
	if err != nil {
		return nil, err
	}
	if *o.backend != "" {
		c.Backend = *o.backend
	}
	if *o.bus != "" {
		c.Bus = *o.bus
	}
	if *o.addr != 0 {
		c.Address = *o.addr
	}
	if *o.rows != 0 {
		c.Rows = *o.rows
	}
	if *o.cols != 0 {
		c.Cols = *o.cols
	}
	if *o.timeout != 0 {
		c.Timeout = *o.timeout
	}
	if *o.png != "" {
		c.PNG = *o.png
	}
	return c, c.validate()
}

// run executes the command line args. The emulated display is drawn on
// stdout, or on the process stdout if nil.
func run(args []string, stdout io.Writer) error {
	app, o := newApp()
	cmd, err := app.Parse(args)
	if err != nil {
		return err
	}
	if *o.debug {
		log.Info("Enabling debug output...")
		log.SetLevel(log.DebugLevel)
	}
	if cmd == o.version.FullCommand() {
		showVersion(stdout)
		return nil
	}

	c, err := o.load()
	if err != nil {
		return err
	}
	log.Debugf("Config: %+v", *c)

	b, err := openBackend(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn("Unable to close the bus: ", err)
		}
	}()

	lcd, err := newDisplay(b, c)
	if err != nil {
		return err
	}
	switch cmd {
	case o.print.FullCommand():
		err = printLines(lcd, *o.text)
	case o.clear.FullCommand():
		err = lcd.Clear()
	case o.backlight.FullCommand():
		err = lcd.SetBacklight(*o.light == "on")
	case o.demo.FullCommand():
		err = runDemo(lcd, b, stdout)
	default:
		err = fmt.Errorf("unrecognized command %q", cmd)
	}
	if err != nil {
		return err
	}
	return render(b, c, stdout)
}

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err := run(os.Args[1:], nil); err != nil {
		log.Fatal(err)
	}
}
