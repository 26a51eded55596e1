package gpiocdev

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"periph.io/x/conn/v3/gpio"
)

// Lines is implemented by the resources that own kernel lines: Handle and
// Watcher.
type Lines[T comparable] interface {
	io.Closer
	// Buffer allocates a Buffer for the lines, all at gpio.Low.
	Buffer() *Buffer[T]
	// Tags returns the tags of the lines, in request order.
	Tags() []T
}

// LineReader reads the level of every line into a Buffer.
type LineReader[T comparable] interface {
	Lines[T]
	Read(buf *Buffer[T]) error
}

// LineWriter drives every line to the level held in a Buffer.
type LineWriter[T comparable] interface {
	Lines[T]
	Write(buf *Buffer[T]) error
}

// LineOptions configures one line of a Handle.
type LineOptions[T comparable] struct {
	// Tag addresses the line in Buffers. When nil, the line offset is used,
	// which requires T to hold it. See Opt.
	Tag *T
	// InitialState is the level an output line is driven to when it is
	// requested. When nil, the line starts at gpio.Low.
	InitialState *gpio.Level
}

// HandleOptions configures every line of a Handle. The kernel applies the
// same flags to all lines of one request.
type HandleOptions struct {
	Direction LineDir
	ActiveLow bool
	// OpenDrain and OpenSource only apply to outputs, and are mutually
	// exclusive.
	OpenDrain  bool
	OpenSource bool
	// Pull sets the line bias. gpio.Float disables it, and the zero value
	// gpio.PullNoChange leaves it as it is.
	Pull gpio.Pull
	// Consumer labels the lines in the kernel. It defaults to program@pid.
	Consumer string
}

// Opt returns a pointer to v, for filling optional fields such as
// LineOptions.Tag.
func Opt[V any](v V) *V {
	return &v
}

// getFlags accepts a set of GPIO configuration values and returns the
// matching uint32 handle request flags.
func getFlags(dir LineDir, activeLow, openDrain, openSource bool, pull gpio.Pull) uint32 {
	var flags uint32
	if dir == LineInput {
		flags |= _GPIOHANDLE_REQUEST_INPUT
	} else if dir == LineOutput {
		flags |= _GPIOHANDLE_REQUEST_OUTPUT
	}
	if activeLow {
		flags |= _GPIOHANDLE_REQUEST_ACTIVE_LOW
	}
	if openDrain {
		flags |= _GPIOHANDLE_REQUEST_OPEN_DRAIN
	}
	if openSource {
		flags |= _GPIOHANDLE_REQUEST_OPEN_SOURCE
	}
	if pull == gpio.PullUp {
		flags |= _GPIOHANDLE_REQUEST_BIAS_PULL_UP
	} else if pull == gpio.PullDown {
		flags |= _GPIOHANDLE_REQUEST_BIAS_PULL_DN
	} else if pull == gpio.Float {
		flags |= _GPIOHANDLE_REQUEST_BIAS_DISABLE
	}
	return flags
}

func consumerOrDefault(consumer string) string {
	if consumer == "" {
		return defaultConsumer
	}
	return consumer
}

// Handle is a set of lines requested with a single line handle. Using a
// Handle, you can read or write all of its lines with one ioctl. According
// to the Linux kernel docs, the kernel performs these operations "as
// atomically as possible"; whether the lines really switch together is up
// to the driver.
type Handle[T comparable] struct {
	reg  *registry[T]
	opts HandleOptions
	// The anonymous file descriptor for this set of lines.
	fd     int
	closed bool
}

// RequestHandle requests the lines keyed by offset in lines with a single
// line handle. Lines are requested in ascending offset order, which is the
// order of Tags() and Offsets().
func RequestHandle[T comparable](d *Device, lines map[uint32]LineOptions[T], opts HandleOptions) (*Handle[T], error) {
	op := "request handle on " + d.path
	if d.closed {
		return nil, newError(ErrHandleRequest, op, os.ErrClosed)
	}
	offsets := sortedOffsets(lines)
	reg, err := newRegistry(op, offsets, func(offset uint32) *T { return lines[offset].Tag }, ErrHandleRequest)
	if err != nil {
		return nil, err
	}
	if opts.OpenDrain && opts.OpenSource {
		return nil, newErrorf(ErrHandleRequest, op, "a line can't be both open drain and open source")
	}

	var req gpiohandle_request
	for ix, offset := range reg.offsets {
		req.setLineNumber(ix, offset)
		if state := lines[offset].InitialState; state != nil && bool(*state) {
			req.default_values[ix] = 1
		}
	}
	req.flags = getFlags(opts.Direction, opts.ActiveLow, opts.OpenDrain, opts.OpenSource, opts.Pull)
	putCString(req.consumer_label[:], consumerOrDefault(opts.Consumer))
	req.lines = uint32(reg.len())

	if err := ioctl_gpiohandle_request(d.fd, &req); err != nil {
		return nil, newError(ErrHandleRequest, op, err)
	}
	logger.WithField("lines", reg.offsets).Debugf("requested handle fd %d on %s", req.fd, d.path)
	return &Handle[T]{reg: reg, opts: opts, fd: int(req.fd)}, nil
}

// Close releases the lines.
func (h *Handle[T]) Close() error {
	if h.closed {
		return newError(ErrClose, "close handle", os.ErrClosed)
	}
	h.closed = true
	if err := sys.close(h.fd); err != nil {
		return newError(ErrClose, "close handle", err)
	}
	return nil
}

// Buffer allocates a Buffer for the lines of this Handle.
func (h *Handle[T]) Buffer() *Buffer[T] {
	return newBuffer(h.reg)
}

// Tags returns the tags of the lines, in request order.
func (h *Handle[T]) Tags() []T {
	return append([]T(nil), h.reg.tags...)
}

// Offsets returns the kernel offsets of the lines, in request order.
func (h *Handle[T]) Offsets() []uint32 {
	return append([]uint32(nil), h.reg.offsets...)
}

// Read reads every line into buf with a single ioctl. buf is left untouched
// when the read fails.
func (h *Handle[T]) Read(buf *Buffer[T]) error {
	if err := buf.check("handle read", h.reg); err != nil {
		return err
	}
	if h.closed {
		return newError(ErrIO, "handle read", os.ErrClosed)
	}
	var data gpiohandle_data
	if err := ioctl_get_gpiohandle_data(h.fd, &data); err != nil {
		return newError(ErrIO, "handle read", err)
	}
	for ix := range buf.levels {
		buf.levels[ix] = data.values[ix] != 0
	}
	return nil
}

// Write drives every line to the level held in buf with a single ioctl.
func (h *Handle[T]) Write(buf *Buffer[T]) error {
	if err := buf.check("handle write", h.reg); err != nil {
		return err
	}
	if h.closed {
		return newError(ErrIO, "handle write", os.ErrClosed)
	}
	var data gpiohandle_data
	for ix, level := range buf.levels {
		if level {
			data.values[ix] = 1
		}
	}
	if err := ioctl_set_gpiohandle_data(h.fd, &data); err != nil {
		return newError(ErrIO, "handle write", err)
	}
	return nil
}

func (h *Handle[T]) MarshalJSON() ([]byte, error) {
	type line struct {
		Offset uint32 `json:"Offset"`
		Tag    string `json:"Tag"`
	}
	lines := make([]line, h.reg.len())
	for ix := range lines {
		lines[ix] = line{Offset: h.reg.offsets[ix], Tag: fmt.Sprint(h.reg.tags[ix])}
	}
	return json.Marshal(struct {
		Lines     []line `json:"Lines"`
		Direction Label  `json:"Direction"`
		ActiveLow bool   `json:"ActiveLow"`
		Pull      string `json:"Pull"`
		Consumer  string `json:"Consumer"`
	}{
		Lines:     lines,
		Direction: Label(h.opts.Direction.String()),
		ActiveLow: h.opts.ActiveLow,
		Pull:      h.opts.Pull.String(),
		Consumer:  consumerOrDefault(h.opts.Consumer)})
}

// String returns the Handle information in JSON.
func (h *Handle[T]) String() string {
	json, _ := json.MarshalIndent(h, "", "    ")
	return string(json)
}

// Ensure that Interfaces for these types are implemented fully.
var _ LineReader[string] = &Handle[string]{}
var _ LineWriter[string] = &Handle[string]{}
