package gpiocdev

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// This file contains definitions for the v1 GPIO character device ioctl calls.
//
// Documentation for the ioctl() API is at:
//
// https://docs.kernel.org/userspace-api/gpio/chardev_v1.html

import (
	"bytes"
	"unsafe"
)

// From the linux /usr/include/asm-generic/ioctl.h file.
const (
	_IOC_NONE  = 0
	_IOC_WRITE = 1
	_IOC_READ  = 2

	_IOC_NRBITS   = 8
	_IOC_TYPEBITS = 8
	_IOC_SIZEBITS = 14

	_IOC_NRSHIFT   = 0
	_IOC_TYPESHIFT = _IOC_NRSHIFT + _IOC_NRBITS
	_IOC_SIZESHIFT = _IOC_TYPESHIFT + _IOC_TYPEBITS
	_IOC_DIRSHIFT  = _IOC_SIZESHIFT + _IOC_SIZEBITS
)

func _IOC(dir, typ, nr, size uintptr) uintptr {
	return dir<<_IOC_DIRSHIFT |
		typ<<_IOC_TYPESHIFT |
		nr<<_IOC_NRSHIFT |
		size<<_IOC_SIZESHIFT
}

func _IOR(typ, nr, size uintptr) uintptr {
	return _IOC(_IOC_READ, typ, nr, size)
}

func _IOWR(typ, nr, size uintptr) uintptr {
	return _IOC(_IOC_READ|_IOC_WRITE, typ, nr, size)
}

// From the /usr/include/linux/gpio.h header file.
const (
	_GPIO_MAX_NAME_SIZE = 32
	_GPIOHANDLES_MAX    = 64

	_GPIOLINE_FLAG_KERNEL       uint32 = 1 << 0
	_GPIOLINE_FLAG_IS_OUT       uint32 = 1 << 1
	_GPIOLINE_FLAG_ACTIVE_LOW   uint32 = 1 << 2
	_GPIOLINE_FLAG_OPEN_DRAIN   uint32 = 1 << 3
	_GPIOLINE_FLAG_OPEN_SOURCE  uint32 = 1 << 4
	_GPIOLINE_FLAG_BIAS_PULL_UP uint32 = 1 << 5
	_GPIOLINE_FLAG_BIAS_PULL_DN uint32 = 1 << 6
	_GPIOLINE_FLAG_BIAS_DISABLE uint32 = 1 << 7

	_GPIOHANDLE_REQUEST_INPUT        uint32 = 1 << 0
	_GPIOHANDLE_REQUEST_OUTPUT       uint32 = 1 << 1
	_GPIOHANDLE_REQUEST_ACTIVE_LOW   uint32 = 1 << 2
	_GPIOHANDLE_REQUEST_OPEN_DRAIN   uint32 = 1 << 3
	_GPIOHANDLE_REQUEST_OPEN_SOURCE  uint32 = 1 << 4
	_GPIOHANDLE_REQUEST_BIAS_PULL_UP uint32 = 1 << 5
	_GPIOHANDLE_REQUEST_BIAS_PULL_DN uint32 = 1 << 6
	_GPIOHANDLE_REQUEST_BIAS_DISABLE uint32 = 1 << 7

	_GPIOEVENT_REQUEST_RISING_EDGE  uint32 = 1 << 0
	_GPIOEVENT_REQUEST_FALLING_EDGE uint32 = 1 << 1
	_GPIOEVENT_REQUEST_BOTH_EDGES   uint32 = _GPIOEVENT_REQUEST_RISING_EDGE | _GPIOEVENT_REQUEST_FALLING_EDGE

	_GPIOEVENT_EVENT_RISING_EDGE  uint32 = 1
	_GPIOEVENT_EVENT_FALLING_EDGE uint32 = 2
)

type gpiochip_info struct {
	name  [_GPIO_MAX_NAME_SIZE]byte
	label [_GPIO_MAX_NAME_SIZE]byte
	lines uint32
}

type gpioline_info struct {
	line_offset uint32
	flags       uint32
	name        [_GPIO_MAX_NAME_SIZE]byte
	consumer    [_GPIO_MAX_NAME_SIZE]byte
}

type gpiohandle_request struct {
	lineoffsets    [_GPIOHANDLES_MAX]uint32
	flags          uint32
	default_values [_GPIOHANDLES_MAX]uint8
	consumer_label [_GPIO_MAX_NAME_SIZE]byte
	lines          uint32
	fd             int32
}

// setLineNumber works around the false positive in gosec for using copy
func (hr *gpiohandle_request) setLineNumber(element int, number uint32) {
	hr.lineoffsets[element] = number
}

type gpiohandle_data struct {
	values [_GPIOHANDLES_MAX]uint8
}

type gpioevent_request struct {
	lineoffset     uint32
	handleflags    uint32
	eventflags     uint32
	consumer_label [_GPIO_MAX_NAME_SIZE]byte
	fd             int32
}

var (
	_GPIO_GET_CHIPINFO_IOCTL          = _IOR(0xb4, 0x01, unsafe.Sizeof(gpiochip_info{}))
	_GPIO_GET_LINEINFO_IOCTL          = _IOWR(0xb4, 0x02, unsafe.Sizeof(gpioline_info{}))
	_GPIO_GET_LINEHANDLE_IOCTL        = _IOWR(0xb4, 0x03, unsafe.Sizeof(gpiohandle_request{}))
	_GPIO_GET_LINEEVENT_IOCTL         = _IOWR(0xb4, 0x04, unsafe.Sizeof(gpioevent_request{}))
	_GPIOHANDLE_GET_LINE_VALUES_IOCTL = _IOWR(0xb4, 0x08, unsafe.Sizeof(gpiohandle_data{}))
	_GPIOHANDLE_SET_LINE_VALUES_IOCTL = _IOWR(0xb4, 0x09, unsafe.Sizeof(gpiohandle_data{}))
)

func ioctl_gpiochip_info(fd int, data *gpiochip_info) error {
	return sys.ioctl(fd, _GPIO_GET_CHIPINFO_IOCTL, unsafe.Pointer(data))
}

func ioctl_gpioline_info(fd int, data *gpioline_info) error {
	return sys.ioctl(fd, _GPIO_GET_LINEINFO_IOCTL, unsafe.Pointer(data))
}

func ioctl_gpiohandle_request(fd int, data *gpiohandle_request) error {
	return sys.ioctl(fd, _GPIO_GET_LINEHANDLE_IOCTL, unsafe.Pointer(data))
}

func ioctl_gpioevent_request(fd int, data *gpioevent_request) error {
	return sys.ioctl(fd, _GPIO_GET_LINEEVENT_IOCTL, unsafe.Pointer(data))
}

func ioctl_get_gpiohandle_data(fd int, data *gpiohandle_data) error {
	return sys.ioctl(fd, _GPIOHANDLE_GET_LINE_VALUES_IOCTL, unsafe.Pointer(data))
}

func ioctl_set_gpiohandle_data(fd int, data *gpiohandle_data) error {
	return sys.ioctl(fd, _GPIOHANDLE_SET_LINE_VALUES_IOCTL, unsafe.Pointer(data))
}

// cString returns the NUL terminated string held in b.
func cString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		return string(b[:n])
	}
	return string(b)
}

// putCString copies s into dst, truncating it so that a terminating NUL
// always fits.
func putCString(dst []byte, s string) {
	if len(s) >= len(dst) {
		s = s[:len(dst)-1]
	}
	n := copy(dst, s)
	for ; n < len(dst); n++ {
		dst[n] = 0
	}
}
