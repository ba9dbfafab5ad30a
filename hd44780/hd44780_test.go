// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/GermanBionicSystems/i2clcd/lcdsim"
	"github.com/GermanBionicSystems/i2clcd/pcf857x"
)

// recorder is an Expander keeping every byte written.
type recorder struct {
	out  []byte
	fail int // Fail the write with this 1 based index. 0 never fails.
}

var errWrite = errors.New("write failed")

func (r *recorder) Out(v uint16) error {
	if r.fail != 0 && len(r.out)+1 == r.fail {
		return errWrite
	}
	r.out = append(r.out, byte(v))
	return nil
}

func (r *recorder) String() string {
	return "recorder"
}

type nibble struct {
	rs        bool
	backlight bool
	value     byte
}

// decode checks the E low, high, low framing of each nibble and returns them.
func decode(t *testing.T, w []byte) []nibble {
	t.Helper()
	if len(w)%3 != 0 {
		t.Fatalf("%d writes is not a whole number of nibbles", len(w))
	}
	var out []nibble
	for i := 0; i < len(w); i += 3 {
		a, b, c := w[i], w[i+1], w[i+2]
		if a&bitEnable != 0 || c&bitEnable != 0 || b&bitEnable == 0 {
			t.Fatalf("nibble %d: bad E sequence 0x%02x 0x%02x 0x%02x", i/3, a, b, c)
		}
		if b != a|bitEnable || c != a {
			t.Fatalf("nibble %d: lines changed around E 0x%02x 0x%02x 0x%02x", i/3, a, b, c)
		}
		if a&bitRW != 0 {
			t.Fatalf("nibble %d: R/W raised", i/3)
		}
		out = append(out, nibble{rs: a&bitRS != 0, backlight: a&bitBacklight != 0, value: a >> 4})
	}
	return out
}

type transfer struct {
	rs    bool
	value byte
}

// decodeBytes pairs nibbles into bytes. Both halves must agree on RS.
func decodeBytes(t *testing.T, n []nibble) []transfer {
	t.Helper()
	if len(n)%2 != 0 {
		t.Fatalf("%d nibbles is not a whole number of bytes", len(n))
	}
	var out []transfer
	for i := 0; i < len(n); i += 2 {
		if n[i].rs != n[i+1].rs {
			t.Fatalf("byte %d: RS changed between nibbles", i/2)
		}
		out = append(out, transfer{rs: n[i].rs, value: n[i].value<<4 | n[i+1].value})
	}
	return out
}

func noSleep(time.Duration) {}

func newTest(t *testing.T) (*Dev, *recorder) {
	r := &recorder{}
	d, err := newDev(r, 2, 16, noSleep)
	if err != nil {
		t.Fatal(err)
	}
	r.out = nil
	return d, r
}

func TestInit(t *testing.T) {
	r := &recorder{}
	var sleeps []time.Duration
	d, err := newDev(r, 2, 16, func(d time.Duration) { sleeps = append(sleeps, d) })
	if err != nil {
		t.Fatal(err)
	}
	if d.State() != Ready {
		t.Fatalf("state %s", d.State())
	}
	n := decode(t, r.out)
	if len(n) != 4+2*4 {
		t.Fatalf("got %d nibbles", len(n))
	}
	want := []nibble{{value: 3}, {value: 3}, {value: 3}, {value: 2}}
	for i := range want {
		want[i].backlight = true
	}
	if diff := cmp.Diff(want, n[:4], cmp.AllowUnexported(nibble{})); diff != "" {
		t.Errorf("reset nibbles (-want +got):\n%s", diff)
	}
	wantB := []transfer{{value: 0x28}, {value: 0x0c}, {value: 0x06}, {value: 0x01}}
	if diff := cmp.Diff(wantB, decodeBytes(t, n[4:]), cmp.AllowUnexported(transfer{})); diff != "" {
		t.Errorf("setup commands (-want +got):\n%s", diff)
	}

	pulse := []time.Duration{enablePulse, commandHold}
	var wantS []time.Duration
	wantS = append(wantS, powerOnDelay)
	wantS = append(wantS, pulse...)
	wantS = append(wantS, resetDelayLong)
	wantS = append(wantS, pulse...)
	wantS = append(wantS, resetDelayShort)
	wantS = append(wantS, pulse...)
	wantS = append(wantS, resetDelayShort)
	wantS = append(wantS, pulse...)
	for range 8 {
		wantS = append(wantS, pulse...)
	}
	wantS = append(wantS, clearDelay)
	if diff := cmp.Diff(wantS, sleeps); diff != "" {
		t.Errorf("delays (-want +got):\n%s", diff)
	}
}

func TestInitBacklightOff(t *testing.T) {
	d, r := newTest(t)
	if err := d.SetBacklight(false); err != nil {
		t.Fatal(err)
	}
	r.out = nil
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	n := decode(t, r.out)
	var values []byte
	for _, x := range n {
		if x.backlight {
			t.Fatal("backlight bit set while off")
		}
		values = append(values, x.value)
	}
	want := []byte{3, 3, 3, 2, 2, 8, 0, 0xc, 0, 6, 0, 1}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("nibbles (-want +got):\n%s", diff)
	}
}

func TestInitError(t *testing.T) {
	r := &recorder{fail: 4}
	d, err := newDev(r, 2, 16, noSleep)
	if !errors.Is(err, errWrite) {
		t.Fatalf("expected errWrite, got %v", err)
	}
	if d.State() != Transitional {
		t.Errorf("state %s", d.State())
	}
	if err := d.SendCommand(cmdClear); err != ErrNotReady {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestBacklight(t *testing.T) {
	d, r := newTest(t)
	if !d.BacklightOn() {
		t.Fatal("backlight should start on")
	}
	if err := d.SetBacklight(false); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x00}, r.out); diff != "" {
		t.Errorf("backlight off write (-want +got):\n%s", diff)
	}
	r.out = nil
	if err := d.Print("xyz"); err != nil {
		t.Fatal(err)
	}
	for _, b := range r.out {
		if b&bitBacklight != 0 {
			t.Fatalf("0x%02x has the backlight bit", b)
		}
	}
	if err := d.Backlight(255); err != nil {
		t.Fatal(err)
	}
	r.out = nil
	if err := d.SendCommand(cmdHome); err != nil {
		t.Fatal(err)
	}
	for _, b := range r.out {
		if b&bitBacklight == 0 {
			t.Fatalf("0x%02x lacks the backlight bit", b)
		}
	}
	if err := d.Backlight(0); err != nil || d.BacklightOn() {
		t.Errorf("Backlight(0): %v, on=%t", err, d.BacklightOn())
	}
}

func TestSend(t *testing.T) {
	d, r := newTest(t)
	if err := d.SendCommand(0xa5); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xa8, 0xac, 0xa8, 0x58, 0x5c, 0x58}
	if diff := cmp.Diff(want, r.out); diff != "" {
		t.Errorf("command (-want +got):\n%s", diff)
	}
	r.out = nil
	if err := d.SendData(0xa5); err != nil {
		t.Fatal(err)
	}
	want = []byte{0xa9, 0xad, 0xa9, 0x59, 0x5d, 0x59}
	if diff := cmp.Diff(want, r.out); diff != "" {
		t.Errorf("data (-want +got):\n%s", diff)
	}
}

func TestSetCursor(t *testing.T) {
	tests := []struct {
		col, row int
		want     byte
	}{
		{0, 0, 0x80},
		{5, 0, 0x85},
		{0, 1, 0xc0},
		{15, 1, 0xcf},
		{3, 2, 0xc3},
	}
	for _, tc := range tests {
		d, r := newTest(t)
		if err := d.SetCursor(tc.col, tc.row); err != nil {
			t.Fatal(err)
		}
		got := decodeBytes(t, decode(t, r.out))
		if diff := cmp.Diff([]transfer{{value: tc.want}}, got, cmp.AllowUnexported(transfer{})); diff != "" {
			t.Errorf("SetCursor(%d,%d) (-want +got):\n%s", tc.col, tc.row, diff)
		}
	}
}

func TestPrint(t *testing.T) {
	d, r := newTest(t)
	if err := d.Print("AB"); err != nil {
		t.Fatal(err)
	}
	var values []byte
	for _, n := range decode(t, r.out) {
		if !n.rs {
			t.Fatal("RS low while printing")
		}
		values = append(values, n.value)
	}
	if diff := cmp.Diff([]byte{4, 1, 4, 2}, values); diff != "" {
		t.Errorf("nibbles (-want +got):\n%s", diff)
	}

	r.out = nil
	if err := d.Print("A\x00B"); err != nil {
		t.Fatal(err)
	}
	if got := decodeBytes(t, decode(t, r.out)); len(got) != 1 || got[0].value != 'A' {
		t.Errorf("Print did not stop at NUL: %v", got)
	}

	r.out = nil
	if n, err := d.WriteString("A\x00B"); n != 3 || err != nil {
		t.Errorf("WriteString() = %d, %v", n, err)
	}
	if got := decodeBytes(t, decode(t, r.out)); len(got) != 3 {
		t.Errorf("WriteString wrote %d bytes", len(got))
	}
}

func TestClear(t *testing.T) {
	d, r := newTest(t)
	if err := d.Clear(); err != nil {
		t.Fatal(err)
	}
	got := decodeBytes(t, decode(t, r.out))
	if diff := cmp.Diff([]transfer{{value: 0x01}}, got, cmp.AllowUnexported(transfer{})); diff != "" {
		t.Errorf("clear (-want +got):\n%s", diff)
	}
}

func TestNotReady(t *testing.T) {
	r := &recorder{}
	d := &Dev{port: r, rows: 2, cols: 16, sleep: noSleep}
	if err := d.SendCommand(cmdClear); err != ErrNotReady {
		t.Errorf("SendCommand: %v", err)
	}
	if err := d.SendData('A'); err != ErrNotReady {
		t.Errorf("SendData: %v", err)
	}
	if err := d.Print("A"); err != ErrNotReady {
		t.Errorf("Print: %v", err)
	}
	if len(r.out) != 0 {
		t.Errorf("wrote %v", r.out)
	}
}

func TestGeometry(t *testing.T) {
	for _, g := range [][2]int{{0, 16}, {5, 16}, {2, 0}, {1, 41}, {4, 40}} {
		if _, err := newDev(&recorder{}, g[0], g[1], noSleep); !errors.Is(err, ErrGeometry) {
			t.Errorf("%dx%d: expected ErrGeometry, got %v", g[1], g[0], err)
		}
	}
	for _, g := range [][2]int{{1, 8}, {2, 16}, {2, 40}, {4, 20}} {
		if _, err := newDev(&recorder{}, g[0], g[1], noSleep); err != nil {
			t.Errorf("%dx%d: %v", g[1], g[0], err)
		}
	}
}

func TestMoveTo(t *testing.T) {
	r := &recorder{}
	d, err := newDev(r, 4, 20, noSleep)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		row, col int
		want     byte
	}{
		{1, 1, 0x80},
		{2, 1, 0xc0},
		{3, 1, 0x94},
		{4, 20, 0xe7},
	}
	for _, tc := range tests {
		r.out = nil
		if err := d.MoveTo(tc.row, tc.col); err != nil {
			t.Fatal(err)
		}
		if got := decodeBytes(t, decode(t, r.out)); got[0].value != tc.want {
			t.Errorf("MoveTo(%d,%d) = 0x%02x, expected 0x%02x", tc.row, tc.col, got[0].value, tc.want)
		}
	}
	if err := d.MoveTo(5, 1); err == nil {
		t.Error("expected an error")
	}
}

func TestCreateChar(t *testing.T) {
	d, r := newTest(t)
	glyph := [8]byte{0xff, 0x11, 0x11, 0x11, 0x11, 0x11, 0x1f, 0}
	if err := d.CreateChar(9, glyph); err != nil {
		t.Fatal(err)
	}
	want := []transfer{{value: 0x48}}
	for _, row := range glyph {
		want = append(want, transfer{rs: true, value: row & 0x1f})
	}
	want = append(want, transfer{value: 0x80})
	if diff := cmp.Diff(want, decodeBytes(t, decode(t, r.out)), cmp.AllowUnexported(transfer{})); diff != "" {
		t.Errorf("CreateChar (-want +got):\n%s", diff)
	}
}

func TestCursor(t *testing.T) {
	d, r := newTest(t)
	tests := []struct {
		modes []display.CursorMode
		want  byte
	}{
		{[]display.CursorMode{display.CursorUnderline}, 0x0e},
		{[]display.CursorMode{display.CursorBlock}, 0x0d},
		{[]display.CursorMode{display.CursorBlink}, 0x0f},
		{[]display.CursorMode{display.CursorBlink, display.CursorOff}, 0x0c},
	}
	for _, tc := range tests {
		r.out = nil
		if err := d.Cursor(tc.modes...); err != nil {
			t.Fatal(err)
		}
		if got := decodeBytes(t, decode(t, r.out)); got[0].value != tc.want {
			t.Errorf("Cursor(%v) = 0x%02x, expected 0x%02x", tc.modes, got[0].value, tc.want)
		}
	}
	if err := d.Cursor(display.CursorBlink + 1); err == nil {
		t.Error("expected an error")
	}
	if err := d.Move(display.Up); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("Move(Up): %v", err)
	}
}

func TestHalt(t *testing.T) {
	d, r := newTest(t)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	// Clear (2 nibbles), the backlight write, then display off with the
	// backlight bit cleared.
	if len(r.out) != 6+1+6 {
		t.Fatalf("got %d writes", len(r.out))
	}
	if r.out[6] != 0 {
		t.Errorf("backlight write 0x%02x", r.out[6])
	}
	got := decodeBytes(t, decode(t, r.out[7:]))
	if got[0].value != 0x08 {
		t.Errorf("display control 0x%02x", got[0].value)
	}
}

func TestRecord(t *testing.T) {
	bus := &i2ctest.Record{}
	d, err := NewPCF857xBackpack(bus, DefaultAddress, 2, 16)
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "HD44780::PCF8574_27 - Rows: 2, Cols: 16" {
		t.Errorf("String() = %q", d.String())
	}
	var w []byte
	for _, op := range bus.Ops {
		if op.Addr != DefaultAddress || len(op.W) != 1 || len(op.R) != 0 {
			t.Fatalf("unexpected op %#v", op)
		}
		w = append(w, op.W[0])
	}
	if got := len(decode(t, w)); got != 12 {
		t.Errorf("got %d nibbles", got)
	}
}

func TestTextDisplay(t *testing.T) {
	bus := lcdsim.New(nil)
	pcf, err := pcf857x.New(bus, DefaultAddress, pcf857x.PCF8574)
	if err != nil {
		t.Fatal(err)
	}
	d, err := newDev(pcf, 2, 16, noSleep)
	if err != nil {
		t.Fatal(err)
	}
	for _, err := range displaytest.TestTextDisplay(d, false) {
		if !errors.Is(err, display.ErrNotImplemented) {
			t.Error(err)
		}
	}
	if got := bus.Text()[0]; got != "Set dev on      " {
		t.Errorf("line 0 = %q", got)
	}
}

func TestEmulated(t *testing.T) {
	bus := lcdsim.New(&lcdsim.Opts{Addr: DefaultAddress, Rows: 4, Cols: 20})
	pcf, err := pcf857x.New(bus, DefaultAddress, pcf857x.PCF8574)
	if err != nil {
		t.Fatal(err)
	}
	d, err := newDev(pcf, 4, 20, noSleep)
	if err != nil {
		t.Fatal(err)
	}
	for row, s := range []string{"one", "two", "three", "four"} {
		if err := d.MoveTo(row+1, row+1); err != nil {
			t.Fatal(err)
		}
		if err := d.Print(s); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{
		"one                 ",
		" two                ",
		"  three             ",
		"   four             ",
	}
	if diff := cmp.Diff(want, bus.Text()); diff != "" {
		t.Errorf("screen (-want +got):\n%s", diff)
	}
	if err := d.SetCursor(0, 1); err != nil {
		t.Fatal(err)
	}
	if col, row, ok := bus.CursorPos(); !ok || col != 0 || row != 1 {
		t.Errorf("cursor at (%d,%d,%t)", col, row, ok)
	}
}
