// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
)

// EdgeWaiter waits for edges on a set of lines.
type EdgeWaiter[T comparable] interface {
	Lines[T]
	Poll(buf *Buffer[T], tag T) (gpio.Level, error)
	Wait(timeout time.Duration) (Event[T], bool, error)
}

// WatchOptions configures one line of a Watcher.
type WatchOptions[T comparable] struct {
	// Tag addresses the line in Buffers and Events. When nil, the line
	// offset is used, which requires T to hold it.
	Tag *T
	// Direction is LineInput or LineDirNotSet; the kernel refuses to watch
	// outputs.
	Direction  LineDir
	ActiveLow  bool
	OpenDrain  bool
	OpenSource bool
	// Pull sets the line bias, as in HandleOptions.
	Pull gpio.Pull
	// Edge selects the edges reported. gpio.NoEdge, the zero value, reports
	// both.
	Edge gpio.Edge
	// Consumer labels the line in the kernel. It defaults to program@pid.
	Consumer string
}

// waitContextInterval bounds each wait done by WaitContext, and so how long
// it takes to notice a cancelled context.
const waitContextInterval = 50 * time.Millisecond

// Watcher watches a set of lines for edges. It owns one kernel event
// descriptor per line and an epoll descriptor waiting on all of them.
type Watcher[T comparable] struct {
	reg *registry[T]
	// Event descriptors, by slot.
	fds    []int
	epfd   int
	closed bool
	record [eventRecordSize]byte
}

// RequestWatcher requests edge detection on the lines keyed by offset in
// lines. Lines are requested one at a time in ascending offset order. Either
// every line is requested and registered, or none is: when a step fails, the
// descriptors created so far are closed before the error is returned.
func RequestWatcher[T comparable](d *Device, lines map[uint32]WatchOptions[T]) (*Watcher[T], error) {
	op := "request watcher on " + d.path
	if d.closed {
		return nil, newError(ErrEventRequest, op, os.ErrClosed)
	}
	offsets := sortedOffsets(lines)
	reg, err := newRegistry(op, offsets, func(offset uint32) *T { return lines[offset].Tag }, ErrEventRequest)
	if err != nil {
		return nil, err
	}

	// opened lists every descriptor to close if a later step fails.
	var opened []int
	rollback := func(cause error) error {
		var errs error
		for _, fd := range opened {
			errs = multierr.Append(errs, sys.close(fd))
		}
		entry := logger.WithField("descriptors", len(opened))
		if errs != nil {
			entry = entry.WithField("close_errors", errs.Error())
		}
		entry.WithError(cause).Debug("watcher request rolled back")
		return cause
	}

	fds := make([]int, 0, reg.len())
	kernelOffsets := make([]uint32, 0, reg.len())
	for _, offset := range reg.offsets {
		opts := lines[offset]
		req := gpioevent_request{
			lineoffset:  offset,
			handleflags: getFlags(opts.Direction, opts.ActiveLow, opts.OpenDrain, opts.OpenSource, opts.Pull),
			eventflags:  eventFlags(opts.Edge),
		}
		putCString(req.consumer_label[:], consumerOrDefault(opts.Consumer))
		if err := ioctl_gpioevent_request(d.fd, &req); err != nil {
			return nil, rollback(newError(ErrEventRequest, fmt.Sprintf("%s: line %d", op, offset), err))
		}
		opened = append(opened, int(req.fd))
		fds = append(fds, int(req.fd))
		// The kernel copies the request back; its offset is authoritative.
		kernelOffsets = append(kernelOffsets, req.lineoffset)
	}

	epfd, err := sys.epollCreate()
	if err != nil {
		return nil, rollback(newError(ErrEventRequest, op+": epoll", err))
	}
	opened = append(opened, epfd)
	for ix, fd := range fds {
		if err := sys.epollAdd(epfd, fd, kernelOffsets[ix]); err != nil {
			return nil, rollback(newError(ErrEventRequest, fmt.Sprintf("%s: epoll add line %d", op, kernelOffsets[ix]), err))
		}
	}
	logger.WithField("lines", reg.offsets).Debugf("requested watcher on %s", d.path)
	return &Watcher[T]{reg: reg, fds: fds, epfd: epfd}, nil
}

// Close releases every line and the epoll descriptor. It attempts every
// close even when one fails, and reports all failures.
func (w *Watcher[T]) Close() error {
	if w.closed {
		return newError(ErrClose, "close watcher", os.ErrClosed)
	}
	w.closed = true
	var err error
	for _, fd := range w.fds {
		err = multierr.Append(err, sys.close(fd))
	}
	err = multierr.Append(err, sys.close(w.epfd))
	if err != nil {
		return newError(ErrClose, "close watcher", err)
	}
	return nil
}

// Buffer allocates a Buffer for the lines of this Watcher.
func (w *Watcher[T]) Buffer() *Buffer[T] {
	return newBuffer(w.reg)
}

// Tags returns the tags of the lines, in request order.
func (w *Watcher[T]) Tags() []T {
	return append([]T(nil), w.reg.tags...)
}

// Offsets returns the kernel offsets of the lines, in request order.
func (w *Watcher[T]) Offsets() []uint32 {
	return append([]uint32(nil), w.reg.offsets...)
}

// Poll reads the current level of the line tagged tag, without waiting,
// stores it in buf and returns it.
func (w *Watcher[T]) Poll(buf *Buffer[T], tag T) (gpio.Level, error) {
	if err := buf.check("watcher poll", w.reg); err != nil {
		return gpio.Low, err
	}
	ix, err := w.reg.slot("watcher poll", tag)
	if err != nil {
		return gpio.Low, err
	}
	if w.closed {
		return gpio.Low, newError(ErrIO, "watcher poll", os.ErrClosed)
	}
	var data gpiohandle_data
	if err := ioctl_get_gpiohandle_data(w.fds[ix], &data); err != nil {
		return gpio.Low, newError(ErrIO, fmt.Sprintf("watcher poll %v", tag), err)
	}
	level := gpio.Level(data.values[0] != 0)
	buf.levels[ix] = level
	return level, nil
}

// Wait waits for an edge on any line of the Watcher.
//
// A negative timeout waits forever and zero checks for a pending edge
// without blocking. A positive timeout is rounded up to the millisecond and
// capped at math.MaxInt32 milliseconds, about 24.8 days. ok is false when the
// timeout expires first.
//
// Each call consumes exactly one event, even when several lines are ready;
// the next call returns the next one.
func (w *Watcher[T]) Wait(timeout time.Duration) (ev Event[T], ok bool, err error) {
	if w.closed {
		return ev, false, newError(ErrIO, "watcher wait", os.ErrClosed)
	}
	msec := timeoutMillis(timeout)
	var ready [1]readiness
	n, err := sys.epollWait(w.epfd, ready[:], msec)
	if err != nil {
		return ev, false, newError(ErrIO, "watcher wait", err)
	}
	if n == 0 {
		return ev, false, nil
	}

	r := ready[0]
	op := fmt.Sprintf("watcher wait: line %d", r.offset)
	nr, err := sys.read(r.fd, w.record[:])
	if err != nil {
		return ev, false, newError(ErrIO, op, err)
	}
	if nr != len(w.record) {
		return ev, false, newError(ErrIO, op, io.ErrUnexpectedEOF)
	}
	timestamp, edge, err := decodeEvent(w.record[:])
	if err != nil {
		return ev, false, newError(ErrIO, op, err)
	}
	tag, found := w.reg.tagOf(r.offset)
	if !found {
		return ev, false, newErrorf(ErrIO, op, "no line with this offset")
	}
	return Event[T]{Edge: edge, Timestamp: time.Duration(timestamp), Tag: tag}, true, nil
}

// Event waits forever for the next edge.
func (w *Watcher[T]) Event() (Event[T], error) {
	for {
		ev, ok, err := w.Wait(-1)
		if err != nil || ok {
			return ev, err
		}
	}
}

// WaitContext waits for the next edge until ctx is done, in which case it
// returns ctx.Err().
func (w *Watcher[T]) WaitContext(ctx context.Context) (Event[T], error) {
	for {
		if err := ctx.Err(); err != nil {
			return Event[T]{}, err
		}
		ev, ok, err := w.Wait(waitContextInterval)
		if err != nil || ok {
			return ev, err
		}
	}
}

// Ensure that Interfaces for these types are implemented fully.
var _ EdgeWaiter[string] = &Watcher[string]{}
