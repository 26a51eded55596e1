// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"strings"

	"github.com/dvlopt/linux-gpio/gpiocdev"
	"github.com/spf13/cobra"
)

var (
	activeLow bool
	pullName  string
)

var getCmd = &cobra.Command{
	Use:   "get offset...",
	Short: "Read input lines",
	Long: `Request the lines as inputs with one handle, read them with a single
ioctl and print offset=level for each, in ascending offset order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVarP(&activeLow, "active-low", "l", false,
		"treat the lines as active low")
	getCmd.Flags().StringVarP(&pullName, "pull", "p", "",
		"line bias: up, down, float or none")
}

func runGet(cmd *cobra.Command, args []string) error {
	offsets, err := parseOffsets(args)
	if err != nil {
		return err
	}
	pull, err := parsePull(pullName)
	if err != nil {
		return err
	}
	d, err := gpiocdev.Open(chipPath)
	if err != nil {
		return err
	}
	defer d.Close()

	lines := make(map[uint32]gpiocdev.LineOptions[uint32], len(offsets))
	for _, offset := range offsets {
		lines[offset] = gpiocdev.LineOptions[uint32]{}
	}
	h, err := gpiocdev.RequestHandle(d, lines, gpiocdev.HandleOptions{
		Direction: gpiocdev.LineInput,
		ActiveLow: activeLow,
		Pull:      pull,
		Consumer:  consumer,
	})
	if err != nil {
		return err
	}
	defer h.Close()

	buf := h.Buffer()
	if err := h.Read(buf); err != nil {
		return err
	}
	levels := buf.GetAll()
	out := make([]string, 0, len(levels))
	for _, offset := range h.Tags() {
		out = append(out, fmt.Sprintf("%d=%s", offset, levelString(levels[offset])))
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, " "))
	return nil
}
