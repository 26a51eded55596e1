// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpiocdev inspects and drives GPIO lines through the Linux GPIO character
// device.
package main

import "github.com/dvlopt/linux-gpio/cmd/gpiocdev/cmd"

func main() {
	cmd.Execute()
}
