// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import "github.com/sirupsen/logrus"

var logger = defaultLogger()

func defaultLogger() *logrus.Entry {
	return logrus.StandardLogger().WithField("prefix", "gpiocdev")
}

// SetLogger replaces the logger used by the package. Passing nil restores
// the default, which logs through the logrus standard logger.
func SetLogger(l *logrus.Entry) {
	if l == nil {
		l = defaultLogger()
	}
	logger = l
}
