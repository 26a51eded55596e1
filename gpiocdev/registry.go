// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"fmt"
	"reflect"
	"sort"
)

// registry is the bijection between the tags of a Handle or Watcher and the
// kernel offsets of its lines. Slot i holds offsets[i] and tags[i], in
// request order.
type registry[T comparable] struct {
	offsets  []uint32
	tags     []T
	slots    map[T]int
	byOffset map[uint32]T
}

// sortedOffsets returns the keys of lines in ascending order, which is the
// order lines are requested in.
func sortedOffsets[O any](lines map[uint32]O) []uint32 {
	offsets := make([]uint32, 0, len(lines))
	for offset := range lines {
		offsets = append(offsets, offset)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}

// newRegistry builds the registry for offsets, taking tags from tagOf. It
// issues no system calls. tooMany is the error kind reported when more than
// _GPIOHANDLES_MAX lines are given.
func newRegistry[T comparable](op string, offsets []uint32, tagOf func(offset uint32) *T, tooMany error) (*registry[T], error) {
	if len(offsets) == 0 {
		return nil, newErrorf(tooMany, op, "no lines")
	}
	if len(offsets) > _GPIOHANDLES_MAX {
		return nil, newErrorf(tooMany, op, "%d lines requested, at most %d are allowed", len(offsets), _GPIOHANDLES_MAX)
	}
	r := &registry[T]{
		offsets:  make([]uint32, 0, len(offsets)),
		tags:     make([]T, 0, len(offsets)),
		slots:    make(map[T]int, len(offsets)),
		byOffset: make(map[uint32]T, len(offsets)),
	}
	for _, offset := range offsets {
		if offset > MaxLineNumber {
			return nil, newErrorf(ErrInvalidLineNumber, op, "line %d: must be in [0, %d]", offset, MaxLineNumber)
		}
		var tag T
		if t := tagOf(offset); t != nil {
			tag = *t
		} else {
			var ok bool
			if tag, ok = defaultTag[T](offset); !ok {
				return nil, newErrorf(ErrUnknownTag, op, "line %d has no tag and its offset is not a %s", offset, reflect.TypeFor[T]())
			}
		}
		if prev, dup := r.slots[tag]; dup {
			return nil, newErrorf(ErrDuplicateTag, op, "lines %d and %d are both tagged %v", r.offsets[prev], offset, tag)
		}
		r.slots[tag] = len(r.tags)
		r.byOffset[offset] = tag
		r.offsets = append(r.offsets, offset)
		r.tags = append(r.tags, tag)
	}
	return r, nil
}

// defaultTag converts a line offset into a tag of type T. It works when T is
// an interface satisfied by uint32, or an integer type able to hold offsets
// up to MaxLineNumber.
func defaultTag[T comparable](offset uint32) (T, bool) {
	var tag T
	if t, ok := any(offset).(T); ok {
		return t, true
	}
	v := reflect.ValueOf(&tag).Elem()
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.OverflowInt(int64(offset)) {
			return tag, false
		}
		v.SetInt(int64(offset))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v.OverflowUint(uint64(offset)) {
			return tag, false
		}
		v.SetUint(uint64(offset))
	default:
		return tag, false
	}
	return tag, true
}

func (r *registry[T]) len() int {
	return len(r.tags)
}

// slot returns the index of tag, or an ErrUnknownTag error.
func (r *registry[T]) slot(op string, tag T) (int, error) {
	i, ok := r.slots[tag]
	if !ok {
		return 0, newError(ErrUnknownTag, op, fmt.Errorf("%v", tag))
	}
	return i, nil
}

// tagOf returns the tag of the line at offset.
func (r *registry[T]) tagOf(offset uint32) (T, bool) {
	tag, ok := r.byOffset[offset]
	return tag, ok
}
