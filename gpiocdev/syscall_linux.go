//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

type osKernel struct{}

func (osKernel) open(path string) (int, error) {
	for {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != unix.EINTR {
			return fd, err
		}
	}
}

func (osKernel) close(fd int) error {
	return unix.Close(fd)
}

func (osKernel) ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, ep := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if ep != 0 {
		return ep
	}
	return nil
}

func (osKernel) read(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err != unix.EINTR {
			return n, err
		}
	}
}

func (osKernel) epollCreate() (int, error) {
	return unix.EpollCreate1(unix.EPOLL_CLOEXEC)
}

func (osKernel) epollAdd(epfd, fd int, offset uint32) error {
	// The event data is a 64 bit union; Fd holds the low half and Pad the
	// high half.
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLPRI,
		Fd:     int32(fd),
		Pad:    int32(offset),
	}
	return unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (osKernel) epollWait(epfd int, ready []readiness, msec int) (int, error) {
	events := make([]unix.EpollEvent, len(ready))
	var deadline time.Time
	if msec > 0 {
		deadline = time.Now().Add(time.Duration(msec) * time.Millisecond)
	}
	for {
		n, err := unix.EpollWait(epfd, events, msec)
		if err == unix.EINTR {
			if msec > 0 {
				remaining := time.Until(deadline)
				if remaining <= 0 {
					return 0, nil
				}
				msec = timeoutMillis(remaining)
			}
			continue
		}
		if err != nil {
			return 0, err
		}
		for i := 0; i < n; i++ {
			ready[i] = readiness{fd: int(events[i].Fd), offset: uint32(events[i].Pad)}
		}
		return n, nil
	}
}
