// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Package gpiocdev provides access to Linux GPIO lines through the GPIO
// character device (/dev/gpiochipN) and its v1 ioctl interface.
//
// https://docs.kernel.org/userspace-api/gpio/chardev_v1.html
//
// A Device is opened on a chip and used to describe the chip and its lines,
// or to request a Handle or a Watcher. Lines of a Handle or Watcher are
// addressed by application chosen tags of any comparable type instead of
// kernel line offsets. Values move between the kernel and the application
// through a Buffer allocated by the Handle or Watcher that will use it.
//
// A Handle reads or writes up to 64 lines with a single ioctl. A Watcher
// owns one event descriptor per line and waits on all of them at once.
//
// Handles, Watchers and Buffers are not safe for concurrent use. Each one
// must be owned by a single goroutine, or guarded by the caller.
package gpiocdev
