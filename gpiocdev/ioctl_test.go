package gpiocdev

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"periph.io/x/conn/v3/gpio"
)

func TestStructSizes(t *testing.T) {
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"gpiochip_info", unsafe.Sizeof(gpiochip_info{}), 68},
		{"gpioline_info", unsafe.Sizeof(gpioline_info{}), 72},
		{"gpiohandle_request", unsafe.Sizeof(gpiohandle_request{}), 364},
		{"gpioevent_request", unsafe.Sizeof(gpioevent_request{}), 48},
		{"gpiohandle_data", unsafe.Sizeof(gpiohandle_data{}), 64},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("sizeof(%s) = %d, expected %d", test.name, test.got, test.want)
		}
	}
}

func TestIoctlNumbers(t *testing.T) {
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"GPIO_GET_CHIPINFO_IOCTL", _GPIO_GET_CHIPINFO_IOCTL, 0x8044b401},
		{"GPIO_GET_LINEINFO_IOCTL", _GPIO_GET_LINEINFO_IOCTL, 0xc048b402},
		{"GPIO_GET_LINEHANDLE_IOCTL", _GPIO_GET_LINEHANDLE_IOCTL, 0xc16cb403},
		{"GPIO_GET_LINEEVENT_IOCTL", _GPIO_GET_LINEEVENT_IOCTL, 0xc030b404},
		{"GPIOHANDLE_GET_LINE_VALUES_IOCTL", _GPIOHANDLE_GET_LINE_VALUES_IOCTL, 0xc040b408},
		{"GPIOHANDLE_SET_LINE_VALUES_IOCTL", _GPIOHANDLE_SET_LINE_VALUES_IOCTL, 0xc040b409},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("%s = %#x, expected %#x", test.name, test.got, test.want)
		}
	}
}

func TestCString(t *testing.T) {
	if s := cString([]byte{'a', 'b', 0, 'c'}); s != "ab" {
		t.Errorf("cString() returned %q", s)
	}
	if s := cString([]byte("abc")); s != "abc" {
		t.Errorf("cString() without terminator returned %q", s)
	}
	if s := cString(make([]byte, 4)); s != "" {
		t.Errorf("cString() of zeroes returned %q", s)
	}

	dst := []byte("xxxxxxxx")
	putCString(dst, "hi")
	if s := cString(dst); s != "hi" {
		t.Errorf("putCString() stored %q", s)
	}
	for ix, b := range dst[2:] {
		if b != 0 {
			t.Errorf("putCString() left byte %d at %#x", ix+2, b)
		}
	}
	dst = make([]byte, 4)
	putCString(dst, "truncated")
	if s := cString(dst); s != "tru" {
		t.Errorf("putCString() truncated to %q, expected \"tru\"", s)
	}
	if dst[3] != 0 {
		t.Error("putCString() didn't terminate a truncated string")
	}
}

func TestDecodeEvent(t *testing.T) {
	record := make([]byte, eventRecordSize)
	binary.NativeEndian.PutUint64(record, 1234567890)
	binary.NativeEndian.PutUint32(record[8:], _GPIOEVENT_EVENT_RISING_EDGE)
	ts, edge, err := decodeEvent(record)
	if err != nil || ts != 1234567890 || edge != gpio.RisingEdge {
		t.Errorf("decodeEvent() returned %d, %s, %v", ts, edge, err)
	}
	binary.NativeEndian.PutUint32(record[8:], _GPIOEVENT_EVENT_FALLING_EDGE)
	if _, edge, err = decodeEvent(record); err != nil || edge != gpio.FallingEdge {
		t.Errorf("decodeEvent() returned %s, %v for a falling edge", edge, err)
	}
	binary.NativeEndian.PutUint32(record[8:], 3)
	if _, _, err = decodeEvent(record); err == nil {
		t.Error("decodeEvent() accepted an unknown event id")
	}
	if _, _, err = decodeEvent(record[:8]); err == nil {
		t.Error("decodeEvent() accepted a short record")
	}
}

func TestEventFlags(t *testing.T) {
	if f := eventFlags(gpio.RisingEdge); f != _GPIOEVENT_REQUEST_RISING_EDGE {
		t.Errorf("RisingEdge: %d", f)
	}
	if f := eventFlags(gpio.FallingEdge); f != _GPIOEVENT_REQUEST_FALLING_EDGE {
		t.Errorf("FallingEdge: %d", f)
	}
	for _, edge := range []gpio.Edge{gpio.NoEdge, gpio.BothEdges} {
		if f := eventFlags(edge); f != _GPIOEVENT_REQUEST_BOTH_EDGES {
			t.Errorf("%s: %d", edge, f)
		}
	}
}
