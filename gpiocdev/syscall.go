// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// This file declares the system calls the package is built on. The Linux
// implementation is in syscall_linux.go; tests replace sys with a fake.

package gpiocdev

import (
	"errors"
	"math"
	"time"
	"unsafe"
)

// ErrNotSupported is returned by every system call on operating systems
// without GPIO character devices.
var ErrNotSupported = errors.New("gpiocdev: GPIO character devices are only supported on Linux")

// readiness is one descriptor reported ready by epollWait, along with the
// line offset it was registered with.
type readiness struct {
	fd     int
	offset uint32
}

type kernel interface {
	open(path string) (int, error)
	close(fd int) error
	ioctl(fd int, req uintptr, arg unsafe.Pointer) error
	read(fd int, p []byte) (int, error)
	epollCreate() (int, error)
	// epollAdd registers fd for readability, tagging it with offset.
	epollAdd(epfd, fd int, offset uint32) error
	// epollWait blocks for at most msec milliseconds, forever if msec is
	// negative, and fills ready. It returns 0 on timeout.
	epollWait(epfd int, ready []readiness, msec int) (int, error)
}

var sys kernel = osKernel{}

// timeoutMillis converts timeout into an epoll_wait timeout: -1 when
// negative, otherwise rounded up to the millisecond and capped at
// math.MaxInt32.
func timeoutMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	if timeout > math.MaxInt32*time.Millisecond {
		return math.MaxInt32
	}
	msec := timeout / time.Millisecond
	if timeout%time.Millisecond != 0 {
		msec++
	}
	return int(msec)
}
