package gpiocdev

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"periph.io/x/conn/v3/gpio"
)

// LineDir is the direction of a GPIO line.
type LineDir uint32

const (
	LineDirNotSet LineDir = 0
	LineInput     LineDir = 1
	LineOutput    LineDir = 2
)

type Label string

var DirectionLabels = []Label{"NotSet", "Input", "Output"}

func (d LineDir) String() string {
	if int(d) < len(DirectionLabels) {
		return string(DirectionLabels[d])
	}
	return fmt.Sprintf("LineDir(%d)", uint32(d))
}

// MaxLineNumber is the largest line number accepted by DescribeLine and by
// line requests.
const MaxLineNumber = _GPIOHANDLES_MAX

// The consumer label used when a request doesn't supply one. Initialized in
// init().
var defaultConsumer string

// ChipDescription is a snapshot of the information the kernel reports for a
// GPIO chip. Empty Label and Name mean the kernel did not report one.
type ChipDescription struct {
	LineCount uint32
	Label     string
	Name      string
}

// String returns the description in JSON format.
func (cd ChipDescription) String() string {
	json, _ := json.MarshalIndent(cd, "", "    ")
	return string(json)
}

// LineDescription is a snapshot of the information the kernel reports for a
// single line. Empty Consumer and Name mean the kernel did not report one.
type LineDescription struct {
	LineNumber uint32
	ActiveLow  bool
	Direction  LineDir
	OpenDrain  bool
	OpenSource bool
	// Used is set when the line is requested, by the kernel or by any
	// process.
	Used     bool
	Pull     gpio.Pull
	Consumer string
	Name     string
}

func (ld LineDescription) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line       uint32 `json:"Line"`
		Name       string `json:"Name"`
		Consumer   string `json:"Consumer"`
		Used       bool   `json:"Used"`
		Direction  Label  `json:"Direction"`
		ActiveLow  bool   `json:"ActiveLow"`
		OpenDrain  bool   `json:"OpenDrain"`
		OpenSource bool   `json:"OpenSource"`
		Pull       string `json:"Pull"`
	}{
		Line:       ld.LineNumber,
		Name:       ld.Name,
		Consumer:   ld.Consumer,
		Used:       ld.Used,
		Direction:  Label(ld.Direction.String()),
		ActiveLow:  ld.ActiveLow,
		OpenDrain:  ld.OpenDrain,
		OpenSource: ld.OpenSource,
		Pull:       ld.Pull.String()})
}

// String returns information about the line in valid JSON format.
func (ld LineDescription) String() string {
	json, _ := json.MarshalIndent(ld, "", "    ")
	return string(json)
}

// A Device is an open GPIO chip. Closing a Device doesn't affect the Handles
// and Watchers requested from it.
type Device struct {
	// Path represents the path to the /dev/gpiochip* character
	// device used for ioctl() calls.
	path   string
	fd     int
	closed bool
}

// Open opens the GPIO chip character device at path. The descriptor is
// opened read only, which is enough to request output lines.
func Open(path string) (*Device, error) {
	fd, err := sys.open(path)
	if err != nil {
		return nil, newError(ErrDeviceOpen, "open "+path, err)
	}
	// Make sure this is a GPIO chip and not some other file.
	var info gpiochip_info
	if err := ioctl_gpiochip_info(fd, &info); err != nil {
		_ = sys.close(fd)
		return nil, newError(ErrDeviceOpen, "open "+path, err)
	}
	return &Device{path: path, fd: fd}, nil
}

// OpenChip opens /dev/gpiochip<number>.
func OpenChip(number int) (*Device, error) {
	return Open(fmt.Sprintf("/dev/gpiochip%d", number))
}

// Path returns the path the Device was opened with.
func (d *Device) Path() string {
	return d.path
}

// Close releases the chip descriptor. Closing twice fails with ErrClose.
func (d *Device) Close() error {
	if d.closed {
		return newError(ErrClose, "close "+d.path, os.ErrClosed)
	}
	d.closed = true
	if err := sys.close(d.fd); err != nil {
		return newError(ErrClose, "close "+d.path, err)
	}
	return nil
}

// DescribeChip queries the kernel for the chip's information.
func (d *Device) DescribeChip() (ChipDescription, error) {
	if d.closed {
		return ChipDescription{}, newError(ErrQuery, "describe chip "+d.path, os.ErrClosed)
	}
	var info gpiochip_info
	if err := ioctl_gpiochip_info(d.fd, &info); err != nil {
		return ChipDescription{}, newError(ErrQuery, "describe chip "+d.path, err)
	}
	return ChipDescription{
		LineCount: info.lines,
		Label:     cString(info.label[:]),
		Name:      cString(info.name[:]),
	}, nil
}

// DescribeLine queries the kernel for the information of one line. Line
// numbers above MaxLineNumber fail without a system call; numbers beyond the
// chip's line count are rejected by the kernel.
func (d *Device) DescribeLine(lineNumber uint32) (LineDescription, error) {
	op := fmt.Sprintf("describe line %d", lineNumber)
	if lineNumber > MaxLineNumber {
		return LineDescription{}, newErrorf(ErrInvalidLineNumber, op, "must be in [0, %d]", MaxLineNumber)
	}
	if d.closed {
		return LineDescription{}, newError(ErrQuery, op, os.ErrClosed)
	}
	info := gpioline_info{line_offset: lineNumber}
	if err := ioctl_gpioline_info(d.fd, &info); err != nil {
		return LineDescription{}, newError(ErrQuery, op, err)
	}
	return newLineDescription(&info), nil
}

// DescribeLines returns the description of every line of the chip, up to
// MaxLineNumber.
func (d *Device) DescribeLines() ([]LineDescription, error) {
	chip, err := d.DescribeChip()
	if err != nil {
		return nil, err
	}
	count := chip.LineCount
	if count > MaxLineNumber+1 {
		count = MaxLineNumber + 1
	}
	lines := make([]LineDescription, 0, count)
	for n := uint32(0); n < count; n++ {
		ld, err := d.DescribeLine(n)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ld)
	}
	return lines, nil
}

func newLineDescription(info *gpioline_info) LineDescription {
	ld := LineDescription{
		LineNumber: info.line_offset,
		Used:       info.flags&_GPIOLINE_FLAG_KERNEL != 0,
		ActiveLow:  info.flags&_GPIOLINE_FLAG_ACTIVE_LOW != 0,
		OpenDrain:  info.flags&_GPIOLINE_FLAG_OPEN_DRAIN != 0,
		OpenSource: info.flags&_GPIOLINE_FLAG_OPEN_SOURCE != 0,
		Direction:  LineInput,
		Pull:       gpio.PullNoChange,
		Consumer:   cString(info.consumer[:]),
		Name:       cString(info.name[:]),
	}
	if info.flags&_GPIOLINE_FLAG_IS_OUT != 0 {
		ld.Direction = LineOutput
	}
	switch {
	case info.flags&_GPIOLINE_FLAG_BIAS_PULL_UP != 0:
		ld.Pull = gpio.PullUp
	case info.flags&_GPIOLINE_FLAG_BIAS_PULL_DN != 0:
		ld.Pull = gpio.PullDown
	case info.flags&_GPIOLINE_FLAG_BIAS_DISABLE != 0:
		ld.Pull = gpio.Float
	}
	return ld
}

func init() {
	// Init our consumer name. It's used when a line is requested, and
	// allows utility programs like gpioinfo to find out who has a line
	// open.
	s := fmt.Sprintf("%s@%d", path.Base(os.Args[0]), os.Getpid())
	if len(s) >= _GPIO_MAX_NAME_SIZE {
		s = s[:_GPIO_MAX_NAME_SIZE-1]
	}
	defaultConsumer = s
}
