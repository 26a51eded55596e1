// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"sort"

	"periph.io/x/conn/v3/gpio"
)

// Buffer holds one level per line of the Handle or Watcher that allocated
// it, indexed by tag. A Buffer never performs I/O; it is filled by
// Handle.Read and Watcher.Poll, and consumed by Handle.Write. A Buffer can
// only be used with the Handle or Watcher that allocated it.
type Buffer[T comparable] struct {
	reg    *registry[T]
	levels []gpio.Level
}

func newBuffer[T comparable](reg *registry[T]) *Buffer[T] {
	return &Buffer[T]{reg: reg, levels: make([]gpio.Level, reg.len())}
}

// Tags returns the tags known to the buffer, in request order.
func (b *Buffer[T]) Tags() []T {
	return append([]T(nil), b.reg.tags...)
}

// Clear sets every line to gpio.Low and returns the buffer.
func (b *Buffer[T]) Clear() *Buffer[T] {
	for i := range b.levels {
		b.levels[i] = gpio.Low
	}
	return b
}

// Get returns the level stored for tag.
func (b *Buffer[T]) Get(tag T) (gpio.Level, error) {
	i, err := b.reg.slot("buffer get", tag)
	if err != nil {
		return gpio.Low, err
	}
	return b.levels[i], nil
}

// GetAll returns the level of every line, keyed by tag.
func (b *Buffer[T]) GetAll() map[T]gpio.Level {
	m := make(map[T]gpio.Level, len(b.levels))
	for i, tag := range b.reg.tags {
		m[tag] = b.levels[i]
	}
	return m
}

// GetSubset returns the levels of the given lines, keyed by tag.
func (b *Buffer[T]) GetSubset(tags ...T) (map[T]gpio.Level, error) {
	m := make(map[T]gpio.Level, len(tags))
	for _, tag := range tags {
		i, err := b.reg.slot("buffer get", tag)
		if err != nil {
			return nil, err
		}
		m[tag] = b.levels[i]
	}
	return m, nil
}

// Set stores level for tag.
func (b *Buffer[T]) Set(tag T, level gpio.Level) error {
	i, err := b.reg.slot("buffer set", tag)
	if err != nil {
		return err
	}
	b.levels[i] = level
	return nil
}

// SetAll stores every level of levels, one tag at a time in request order.
// If levels holds tags the buffer doesn't know, SetAll still stores the level
// of every known tag in levels, whatever the map iteration order, and then
// fails with ErrUnknownTag. The stored levels are not rolled back.
func (b *Buffer[T]) SetAll(levels map[T]gpio.Level) error {
	for _, tag := range b.orderTags(levels) {
		if err := b.Set(tag, levels[tag]); err != nil {
			return err
		}
	}
	return nil
}

// Toggle inverts the level stored for tag.
func (b *Buffer[T]) Toggle(tag T) error {
	i, err := b.reg.slot("buffer toggle", tag)
	if err != nil {
		return err
	}
	b.levels[i] = !b.levels[i]
	return nil
}

// ToggleAll inverts the levels of the given lines, or of every line when
// called without tags. It stops at the first unknown tag, and lines already
// toggled stay toggled.
func (b *Buffer[T]) ToggleAll(tags ...T) error {
	if len(tags) == 0 {
		for i := range b.levels {
			b.levels[i] = !b.levels[i]
		}
		return nil
	}
	for _, tag := range tags {
		if err := b.Toggle(tag); err != nil {
			return err
		}
	}
	return nil
}

// orderTags returns the keys of levels, known tags first in slot order.
func (b *Buffer[T]) orderTags(levels map[T]gpio.Level) []T {
	tags := make([]T, 0, len(levels))
	for tag := range levels {
		tags = append(tags, tag)
	}
	rank := func(tag T) int {
		if i, ok := b.reg.slots[tag]; ok {
			return i
		}
		return len(b.levels)
	}
	sort.SliceStable(tags, func(i, j int) bool { return rank(tags[i]) < rank(tags[j]) })
	return tags
}

// check fails when b wasn't allocated by the owner of reg.
func (b *Buffer[T]) check(op string, reg *registry[T]) error {
	if b == nil || b.reg != reg {
		return newErrorf(ErrUnknownTag, op, "buffer was allocated by another handle or watcher")
	}
	return nil
}
