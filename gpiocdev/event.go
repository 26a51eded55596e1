// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Event is an edge detected on a line of a Watcher.
type Event[T comparable] struct {
	// Edge is gpio.RisingEdge or gpio.FallingEdge.
	Edge gpio.Edge
	// Timestamp is when the kernel detected the edge, on the monotonic
	// clock (CLOCK_MONOTONIC, time since boot).
	Timestamp time.Duration
	Tag       T
}

// decodeEvent decodes a gpioevent_data record:
//
//	struct gpioevent_data {
//		__u64 timestamp;
//		__u32 id;
//	};
//
// The record is padded to 16 bytes everywhere but on 386.
func decodeEvent(record []byte) (timestamp uint64, edge gpio.Edge, err error) {
	if len(record) != eventRecordSize {
		return 0, gpio.NoEdge, fmt.Errorf("short event record: %d bytes, expected %d", len(record), eventRecordSize)
	}
	timestamp = binary.NativeEndian.Uint64(record[0:8])
	switch id := binary.NativeEndian.Uint32(record[8:12]); id {
	case _GPIOEVENT_EVENT_RISING_EDGE:
		edge = gpio.RisingEdge
	case _GPIOEVENT_EVENT_FALLING_EDGE:
		edge = gpio.FallingEdge
	default:
		return 0, gpio.NoEdge, fmt.Errorf("unknown event id %d", id)
	}
	return timestamp, edge, nil
}

// eventFlags returns the gpioevent_request flags for edge. gpio.NoEdge
// requests both edges.
func eventFlags(edge gpio.Edge) uint32 {
	switch edge {
	case gpio.RisingEdge:
		return _GPIOEVENT_REQUEST_RISING_EDGE
	case gpio.FallingEdge:
		return _GPIOEVENT_REQUEST_FALLING_EDGE
	default:
		return _GPIOEVENT_REQUEST_BOTH_EDGES
	}
}
