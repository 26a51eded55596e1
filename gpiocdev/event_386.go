// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

// 386 aligns uint64 to 4 bytes, so gpioevent_data has no trailing pad.
const eventRecordSize = 12
