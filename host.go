// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package linuxgpio loads the GPIO character device driver.
package linuxgpio

import (
	"github.com/dvlopt/linux-gpio/gpiocdev"
	"periph.io/x/conn/v3/driver/driverreg"
)

// Init calls driverreg.Init() and returns the chips gpiocdev discovered
// along with the driver state.
//
// The only difference is that by calling linuxgpio.Init(), you are
// guaranteed to have the gpiocdev driver implicitly loaded.
func Init() ([]*gpiocdev.ChipInfo, *driverreg.State, error) {
	state, err := driverreg.Init()
	if err != nil {
		return nil, state, err
	}
	return gpiocdev.Chips, state, nil
}
