// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dvlopt/linux-gpio/gpiocdev"
	"periph.io/x/conn/v3/gpio"
)

func parseOffset(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid line offset %q", s)
	}
	if n > gpiocdev.MaxLineNumber {
		return 0, fmt.Errorf("line offset %d out of range [0, %d]", n, gpiocdev.MaxLineNumber)
	}
	return uint32(n), nil
}

// parseOffsets parses line offsets, rejecting repeats.
func parseOffsets(args []string) ([]uint32, error) {
	seen := make(map[uint32]bool)
	offsets := make([]uint32, 0, len(args))
	for _, arg := range args {
		offset, err := parseOffset(arg)
		if err != nil {
			return nil, err
		}
		if seen[offset] {
			return nil, fmt.Errorf("line %d given twice", offset)
		}
		seen[offset] = true
		offsets = append(offsets, offset)
	}
	return offsets, nil
}

// parseAssignments parses offset=level arguments, where level is 0, 1,
// low or high.
func parseAssignments(args []string) (map[uint32]gpio.Level, error) {
	levels := make(map[uint32]gpio.Level, len(args))
	for _, arg := range args {
		off, val, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("expected offset=level, got %q", arg)
		}
		offset, err := parseOffset(off)
		if err != nil {
			return nil, err
		}
		if _, dup := levels[offset]; dup {
			return nil, fmt.Errorf("line %d given twice", offset)
		}
		switch strings.ToLower(val) {
		case "0", "low":
			levels[offset] = gpio.Low
		case "1", "high":
			levels[offset] = gpio.High
		default:
			return nil, fmt.Errorf("invalid level %q for line %d", val, offset)
		}
	}
	return levels, nil
}

func parseEdge(s string) (gpio.Edge, error) {
	switch strings.ToLower(s) {
	case "rising":
		return gpio.RisingEdge, nil
	case "falling":
		return gpio.FallingEdge, nil
	case "both", "":
		return gpio.BothEdges, nil
	}
	return gpio.NoEdge, fmt.Errorf("invalid edge %q, expected rising, falling or both", s)
}

func parsePull(s string) (gpio.Pull, error) {
	switch strings.ToLower(s) {
	case "", "none", "nochange":
		return gpio.PullNoChange, nil
	case "up":
		return gpio.PullUp, nil
	case "down":
		return gpio.PullDown, nil
	case "float":
		return gpio.Float, nil
	}
	return gpio.PullNoChange, fmt.Errorf("invalid pull %q, expected up, down, float or none", s)
}

func levelString(l gpio.Level) string {
	if l {
		return "1"
	}
	return "0"
}
