package gpiocdev

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tagsFrom[T comparable](tags map[uint32]T) func(uint32) *T {
	return func(offset uint32) *T {
		if tag, ok := tags[offset]; ok {
			return &tag
		}
		return nil
	}
}

func TestSortedOffsets(t *testing.T) {
	lines := map[uint32]LineOptions[string]{9: {}, 2: {}, 40: {}, 0: {}}
	got := sortedOffsets(lines)
	if diff := cmp.Diff([]uint32{0, 2, 9, 40}, got); diff != "" {
		t.Errorf("sortedOffsets() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryMapping(t *testing.T) {
	reg, err := newRegistry("test", []uint32{4, 7, 12}, tagsFrom(map[uint32]string{4: "a", 7: "b", 12: "c"}), ErrHandleRequest)
	if err != nil {
		t.Fatal(err)
	}
	if reg.len() != 3 {
		t.Errorf("Expected 3 lines, found %d", reg.len())
	}
	for ix, tag := range []string{"a", "b", "c"} {
		slot, err := reg.slot("test", tag)
		if err != nil || slot != ix {
			t.Errorf("slot(%q) returned %d, %v. Expected %d", tag, slot, err, ix)
		}
		got, ok := reg.tagOf(reg.offsets[ix])
		if !ok || got != tag {
			t.Errorf("tagOf(%d) returned %q, %t. Expected %q", reg.offsets[ix], got, ok, tag)
		}
	}
	if _, err := reg.slot("test", "d"); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("slot() of an unknown tag returned %v", err)
	}
	if _, ok := reg.tagOf(5); ok {
		t.Error("tagOf() found a tag for an offset that isn't registered")
	}
}

func TestRegistryValidation(t *testing.T) {
	many := make([]uint32, MaxLineNumber+1)
	for ix := range many {
		many[ix] = uint32(ix)
	}
	tests := []struct {
		name    string
		offsets []uint32
		tags    map[uint32]string
		want    error
	}{
		{name: "duplicate", offsets: []uint32{1, 2}, tags: map[uint32]string{1: "x", 2: "x"}, want: ErrDuplicateTag},
		{name: "line 65", offsets: []uint32{65}, tags: map[uint32]string{65: "x"}, want: ErrInvalidLineNumber},
		{name: "no lines", offsets: nil, want: ErrEventRequest},
		{name: "65 lines", offsets: many, want: ErrEventRequest},
		{name: "untagged string", offsets: []uint32{3}, want: ErrUnknownTag},
	}
	for _, test := range tests {
		_, err := newRegistry("test", test.offsets, tagsFrom(test.tags), ErrEventRequest)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: expected %v, received %v", test.name, test.want, err)
		}
	}
}

func TestRegistryLine64(t *testing.T) {
	reg, err := newRegistry("test", []uint32{MaxLineNumber}, tagsFrom(map[uint32]string{}), ErrHandleRequest)
	if err == nil || !errors.Is(err, ErrUnknownTag) {
		t.Errorf("Expected ErrUnknownTag for an untagged string line, received %v", err)
	}
	if reg != nil {
		t.Error("registry returned along with an error")
	}
	regInt, err := newRegistry("test", []uint32{MaxLineNumber}, tagsFrom(map[uint32]int{}), ErrHandleRequest)
	if err != nil {
		t.Fatalf("line %d rejected: %v", MaxLineNumber, err)
	}
	if regInt.tags[0] != MaxLineNumber {
		t.Errorf("Expected default tag %d, received %d", MaxLineNumber, regInt.tags[0])
	}
}

func TestDefaultTag(t *testing.T) {
	if tag, ok := defaultTag[uint32](17); !ok || tag != 17 {
		t.Errorf("uint32: %d, %t", tag, ok)
	}
	if tag, ok := defaultTag[int](17); !ok || tag != 17 {
		t.Errorf("int: %d, %t", tag, ok)
	}
	if tag, ok := defaultTag[uint8](64); !ok || tag != 64 {
		t.Errorf("uint8: %d, %t", tag, ok)
	}
	if tag, ok := defaultTag[any](17); !ok || tag != uint32(17) {
		t.Errorf("any: %v, %t", tag, ok)
	}
	type pin int16
	if tag, ok := defaultTag[pin](17); !ok || tag != 17 {
		t.Errorf("named int16: %d, %t", tag, ok)
	}
	if _, ok := defaultTag[string](17); ok {
		t.Error("string tag accepted")
	}
	if _, ok := defaultTag[bool](1); ok {
		t.Error("bool tag accepted")
	}
}
