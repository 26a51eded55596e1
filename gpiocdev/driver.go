package gpiocdev

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"periph.io/x/conn/v3/driver/driverreg"
)

// ChipInfo is a GPIO chip found on the running device, along with the
// description of its lines at discovery time.
type ChipInfo struct {
	// Path represents the path to the /dev/gpiochip* character device.
	Path string
	ChipDescription
	Lines []LineDescription
}

func (ci *ChipInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name      string            `json:"Name"`
		Path      string            `json:"Path"`
		Label     string            `json:"Label"`
		LineCount uint32            `json:"LineCount"`
		Lines     []LineDescription `json:"Lines"`
	}{
		Name:      ci.Name,
		Path:      ci.Path,
		Label:     ci.Label,
		LineCount: ci.LineCount,
		Lines:     ci.Lines})
}

// String returns the chip information, and line information in JSON format.
func (ci *ChipInfo) String() string {
	json, _ := json.MarshalIndent(ci, "", "    ")
	return string(json)
}

// The set of GPIO Chips found on the running device. Filled by
// driverreg.Init().
var Chips []*ChipInfo

// FindLine returns the chip path and the offset of the line named name.
func FindLine(name string) (path string, offset uint32, ok bool) {
	for _, chip := range Chips {
		for _, line := range chip.Lines {
			if line.Name == name {
				return chip.Path, line.LineNumber, true
			}
		}
	}
	return "", 0, false
}

// DescribePath opens the chip at path and returns its description along
// with the description of its lines.
func DescribePath(path string) (*ChipInfo, error) {
	d, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	chip, err := d.DescribeChip()
	if err != nil {
		return nil, err
	}
	lines, err := d.DescribeLines()
	if err != nil {
		return nil, err
	}
	return &ChipInfo{Path: path, ChipDescription: chip, Lines: lines}, nil
}

// sortChips sorts the chips so that those labeled with pinctrl- ( a Pi
// kernel standard) come first. Otherwise, sort them by label. This _should_
// protect us from any random changes in chip naming/ordering.
func sortChips(chips []*ChipInfo) {
	sort.Slice(chips, func(i, j int) bool {
		I := chips[i]
		J := chips[j]
		if strings.HasPrefix(I.Label, "pinctrl-") {
			if strings.HasPrefix(J.Label, "pinctrl-") {
				return I.Label < J.Label
			}
			return true
		} else if strings.HasPrefix(J.Label, "pinctrl-") {
			return false
		}
		return I.Label < J.Label
	})
}

// driverGPIO implements periph.Driver.
type driverGPIO struct {
	// glob lists the chip character devices.
	glob string
}

func (d *driverGPIO) String() string {
	return "gpiocdev"
}

func (d *driverGPIO) Prerequisites() []string {
	return nil
}

func (d *driverGPIO) After() []string {
	return nil
}

// Init discovers the GPIO chips of the running device and fills Chips.
//
// # Uses the Linux GPIO character device v1 ioctls as described at
//
// https://docs.kernel.org/userspace-api/gpio/chardev_v1.html
func (d *driverGPIO) Init() (bool, error) {
	if runtime.GOOS != "linux" {
		return false, nil
	}
	items, err := filepath.Glob(d.glob)
	if err != nil {
		return true, fmt.Errorf("gpiocdev: %w", err)
	}
	if len(items) == 0 {
		return false, errors.New("no GPIO chips found")
	}
	var chips []*ChipInfo
	for _, item := range items {
		chip, err := DescribePath(item)
		if err != nil {
			logger.WithError(err).Warnf("skipping chip %s", item)
			continue
		}
		chips = append(chips, chip)
	}
	sortChips(chips)

	// On a pi, gpiochip0 is also symlinked to gpiochip4, checking the names
	// ensures we don't duplicate the chip.
	mName := make(map[string]struct{})
	Chips = Chips[:0]
	for _, chip := range chips {
		if _, found := mName[chip.Name]; found {
			continue
		}
		mName[chip.Name] = struct{}{}
		Chips = append(Chips, chip)
	}
	return len(Chips) > 0, nil
}

var drvGPIO = driverGPIO{glob: "/dev/gpiochip*"}

func init() {
	driverreg.MustRegister(&drvGPIO)
}
