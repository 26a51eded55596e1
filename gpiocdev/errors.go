// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of
// them, and use errors.Is to test for a kind.
var (
	ErrDeviceOpen        = errors.New("device open failed")
	ErrQuery             = errors.New("query failed")
	ErrInvalidLineNumber = errors.New("invalid line number")
	ErrHandleRequest     = errors.New("handle request failed")
	ErrEventRequest      = errors.New("event request failed")
	ErrIO                = errors.New("i/o failed")
	ErrUnknownTag        = errors.New("unknown tag")
	ErrDuplicateTag      = errors.New("duplicate tag")
	ErrClose             = errors.New("close failed")
)

// Error is the error type returned by this package. Kind is one of the Err*
// values above and Err, when not nil, is the underlying cause, usually a
// unix.Errno.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gpiocdev: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("gpiocdev: %s: %s: %s", e.Op, e.Kind, e.Err)
}

// Unwrap makes both the kind and the cause visible to errors.Is and
// errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func newErrorf(kind error, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}
