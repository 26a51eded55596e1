//go:build !linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import "unsafe"

// osKernel fails every call; the package builds everywhere but only talks
// to GPIO chips on Linux.
type osKernel struct{}

func (osKernel) open(string) (int, error) { return -1, ErrNotSupported }
func (osKernel) close(int) error { return ErrNotSupported }
func (osKernel) ioctl(int, uintptr, unsafe.Pointer) error { return ErrNotSupported }
func (osKernel) read(int, []byte) (int, error) { return 0, ErrNotSupported }
func (osKernel) epollCreate() (int, error) { return -1, ErrNotSupported }
func (osKernel) epollAdd(int, int, uint32) error { return ErrNotSupported }
func (osKernel) epollWait(int, []readiness, int) (int, error) { return 0, ErrNotSupported }
