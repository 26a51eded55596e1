// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"

	"github.com/dvlopt/linux-gpio/cmd/gpiocdev/config"
	"github.com/dvlopt/linux-gpio/gpiocdev"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	loglevel int
	chipPath string
	consumer string

	log *logrus.Entry
)

var rootCmd = &cobra.Command{
	Use:   "gpiocdev",
	Short: "Linux GPIO character device tool",
	Long: `Inspect, read, drive and watch GPIO lines through /dev/gpiochipN.

Examples:
  gpiocdev info                                # Describe every chip
  gpiocdev get --chip /dev/gpiochip0 5 13      # Read lines 5 and 13
  gpiocdev set 17=1 27=0 --hold 2s             # Drive two lines for 2 seconds
  gpiocdev watch --edge rising 27              # Print rising edges on line 27
  gpiocdev smoke --config smoke.yaml           # Check a jumpered pair of lines`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if loglevel < int(logrus.PanicLevel) || loglevel > int(logrus.TraceLevel) {
			return fmt.Errorf("--loglevel must be in [%d, %d]", logrus.PanicLevel, logrus.TraceLevel)
		}
		log = config.GetLogger(logrus.Level(loglevel))
		gpiocdev.SetLogger(log.WithField("prefix", "gpiocdev"))
		log = log.WithField("prefix", cmd.Name())
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&loglevel, "loglevel", int(logrus.InfoLevel),
		"The loglevel to use. Valid values are from 0 to 6. Higher values output more information")
	rootCmd.PersistentFlags().StringVarP(&chipPath, "chip", "c", "/dev/gpiochip0",
		"GPIO chip character device")
	rootCmd.PersistentFlags().StringVar(&consumer, "consumer", "",
		"consumer label for requested lines (default program@pid)")
}
