package gpiocdev

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// fakeKernel stands in for the GPIO character device so that requests,
// rollbacks and descriptor leaks can be checked without hardware.

import (
	"encoding/binary"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"testing"
	"unsafe"
)

type fakeFile struct {
	kind    string // chip, other, handle, event or epoll
	offsets []uint32
	output  bool
	// Registered descriptors, for epoll files.
	registered []readiness
}

type fakeKernel struct {
	nextFD int
	files  map[int]*fakeFile

	chipName  string
	chipLabel string
	lineCount uint32
	lineNames map[uint32]string
	levels    map[uint32]uint8
	// used maps requested lines to their consumer.
	used map[uint32]string

	queued map[int][][]byte

	lastHandle gpiohandle_request
	lastEvents []gpioevent_request

	eventRequests    int
	failEventRequest int // 1-based, 0 never fails
	epollAdds        int
	failEpollAdd     int // 1-based, 0 never fails
	failEpollCreate  bool
	failIoctl        map[uintptr]error
	closeErr         map[int]error
	// waits records the timeout of every epollWait.
	waits []int

	syscalls int
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		nextFD:    3,
		files:     make(map[int]*fakeFile),
		chipName:  "gpiochip0",
		chipLabel: "pinctrl-fake",
		lineCount: 32,
		lineNames: map[uint32]string{5: "GPIO5", 13: "GPIO13", 17: "LED", 27: "BUTTON"},
		levels:    make(map[uint32]uint8),
		used:      make(map[uint32]string),
		queued:    make(map[int][][]byte),
		failIoctl: make(map[uintptr]error),
		closeErr:  make(map[int]error),
	}
}

// installFakeKernel replaces sys with a fake for the duration of the test.
func installFakeKernel(t *testing.T) *fakeKernel {
	t.Helper()
	f := newFakeKernel()
	prev := sys
	sys = f
	t.Cleanup(func() { sys = prev })
	return f
}

// openFake opens the fake chip.
func openFake(t *testing.T) (*fakeKernel, *Device) {
	t.Helper()
	f := installFakeKernel(t)
	d, err := Open("/dev/gpiochip0")
	if err != nil {
		t.Fatalf("Open() returned %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return f, d
}

func (f *fakeKernel) newFD(file *fakeFile) int {
	fd := f.nextFD
	f.nextFD++
	f.files[fd] = file
	return fd
}

// openCount returns the number of open descriptors of kind.
func (f *fakeKernel) openCount(kinds ...string) int {
	n := 0
	for _, file := range f.files {
		for _, kind := range kinds {
			if file.kind == kind {
				n++
			}
		}
	}
	return n
}

// eventFD returns the event descriptor watching offset.
func (f *fakeKernel) eventFD(offset uint32) int {
	for fd, file := range f.files {
		if file.kind == "event" && file.offsets[0] == offset {
			return fd
		}
	}
	return -1
}

// trigger drives offset to level and queues the matching edge event.
func (f *fakeKernel) trigger(offset uint32, level uint8, timestamp uint64) {
	id := _GPIOEVENT_EVENT_FALLING_EDGE
	if level != 0 {
		id = _GPIOEVENT_EVENT_RISING_EDGE
	}
	f.levels[offset] = level
	f.queueRecord(offset, timestamp, id)
}

func (f *fakeKernel) queueRecord(offset uint32, timestamp uint64, id uint32) {
	record := make([]byte, eventRecordSize)
	binary.NativeEndian.PutUint64(record[0:8], timestamp)
	binary.NativeEndian.PutUint32(record[8:12], id)
	fd := f.eventFD(offset)
	f.queued[fd] = append(f.queued[fd], record)
}

func (f *fakeKernel) open(path string) (int, error) {
	f.syscalls++
	switch {
	case strings.HasPrefix(filepath.Base(path), "gpiochip"):
		return f.newFD(&fakeFile{kind: "chip"}), nil
	case path == "/dev/null":
		return f.newFD(&fakeFile{kind: "other"}), nil
	}
	return -1, syscall.ENOENT
}

func (f *fakeKernel) close(fd int) error {
	f.syscalls++
	file, ok := f.files[fd]
	if !ok {
		return syscall.EBADF
	}
	delete(f.files, fd)
	delete(f.queued, fd)
	if file.kind == "handle" || file.kind == "event" {
		for _, offset := range file.offsets {
			delete(f.used, offset)
		}
	}
	return f.closeErr[fd]
}

func (f *fakeKernel) ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	f.syscalls++
	file, ok := f.files[fd]
	if !ok {
		return syscall.EBADF
	}
	if err := f.failIoctl[req]; err != nil {
		return err
	}
	switch req {
	case _GPIO_GET_CHIPINFO_IOCTL:
		if file.kind != "chip" {
			return syscall.ENOTTY
		}
		info := (*gpiochip_info)(arg)
		putCString(info.name[:], f.chipName)
		putCString(info.label[:], f.chipLabel)
		info.lines = f.lineCount
	case _GPIO_GET_LINEINFO_IOCTL:
		info := (*gpioline_info)(arg)
		if info.line_offset >= f.lineCount {
			return syscall.EINVAL
		}
		info.flags = 0
		if consumer, used := f.used[info.line_offset]; used {
			info.flags |= _GPIOLINE_FLAG_KERNEL
			putCString(info.consumer[:], consumer)
		} else {
			putCString(info.consumer[:], "")
		}
		putCString(info.name[:], f.lineNames[info.line_offset])
	case _GPIO_GET_LINEHANDLE_IOCTL:
		hr := (*gpiohandle_request)(arg)
		if hr.lines == 0 || hr.lines > _GPIOHANDLES_MAX {
			return syscall.EINVAL
		}
		for _, offset := range hr.lineoffsets[:hr.lines] {
			if offset >= f.lineCount {
				return syscall.EINVAL
			}
			if _, used := f.used[offset]; used {
				return syscall.EBUSY
			}
		}
		output := hr.flags&_GPIOHANDLE_REQUEST_OUTPUT != 0
		offsets := append([]uint32(nil), hr.lineoffsets[:hr.lines]...)
		for ix, offset := range offsets {
			f.used[offset] = cString(hr.consumer_label[:])
			if output {
				f.levels[offset] = hr.default_values[ix]
			}
		}
		hr.fd = int32(f.newFD(&fakeFile{kind: "handle", offsets: offsets, output: output}))
		f.lastHandle = *hr
	case _GPIO_GET_LINEEVENT_IOCTL:
		f.eventRequests++
		if f.eventRequests == f.failEventRequest {
			return syscall.EBUSY
		}
		er := (*gpioevent_request)(arg)
		if er.lineoffset >= f.lineCount || er.handleflags&_GPIOHANDLE_REQUEST_OUTPUT != 0 {
			return syscall.EINVAL
		}
		if _, used := f.used[er.lineoffset]; used {
			return syscall.EBUSY
		}
		f.used[er.lineoffset] = cString(er.consumer_label[:])
		er.fd = int32(f.newFD(&fakeFile{kind: "event", offsets: []uint32{er.lineoffset}}))
		f.lastEvents = append(f.lastEvents, *er)
	case _GPIOHANDLE_GET_LINE_VALUES_IOCTL:
		if file.kind != "handle" && file.kind != "event" {
			return syscall.ENOTTY
		}
		data := (*gpiohandle_data)(arg)
		for ix, offset := range file.offsets {
			data.values[ix] = f.levels[offset]
		}
	case _GPIOHANDLE_SET_LINE_VALUES_IOCTL:
		if file.kind != "handle" || !file.output {
			return syscall.EPERM
		}
		data := (*gpiohandle_data)(arg)
		for ix, offset := range file.offsets {
			f.levels[offset] = data.values[ix]
		}
	default:
		return syscall.ENOTTY
	}
	return nil
}

func (f *fakeKernel) read(fd int, p []byte) (int, error) {
	f.syscalls++
	file, ok := f.files[fd]
	if !ok {
		return 0, syscall.EBADF
	}
	if file.kind != "event" {
		return 0, syscall.EINVAL
	}
	records := f.queued[fd]
	if len(records) == 0 {
		return 0, syscall.EAGAIN
	}
	f.queued[fd] = records[1:]
	return copy(p, records[0]), nil
}

func (f *fakeKernel) epollCreate() (int, error) {
	f.syscalls++
	if f.failEpollCreate {
		return -1, syscall.EMFILE
	}
	return f.newFD(&fakeFile{kind: "epoll"}), nil
}

func (f *fakeKernel) epollAdd(epfd, fd int, offset uint32) error {
	f.syscalls++
	f.epollAdds++
	if f.epollAdds == f.failEpollAdd {
		return syscall.ENOMEM
	}
	ep, ok := f.files[epfd]
	if !ok || ep.kind != "epoll" {
		return syscall.EBADF
	}
	if _, ok := f.files[fd]; !ok {
		return syscall.EBADF
	}
	ep.registered = append(ep.registered, readiness{fd: fd, offset: offset})
	return nil
}

// epollWait never sleeps: with nothing queued it reports a timeout whatever
// msec is. Ready descriptors are reported oldest pending event first.
func (f *fakeKernel) epollWait(epfd int, ready []readiness, msec int) (int, error) {
	f.syscalls++
	f.waits = append(f.waits, msec)
	ep, ok := f.files[epfd]
	if !ok || ep.kind != "epoll" {
		return 0, syscall.EBADF
	}
	var pending []readiness
	for _, r := range ep.registered {
		if len(f.queued[r.fd]) > 0 {
			pending = append(pending, r)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return f.headTimestamp(pending[i].fd) < f.headTimestamp(pending[j].fd)
	})
	return copy(ready, pending), nil
}

func (f *fakeKernel) headTimestamp(fd int) uint64 {
	return binary.NativeEndian.Uint64(f.queued[fd][0][0:8])
}
