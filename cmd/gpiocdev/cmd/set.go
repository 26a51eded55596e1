// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvlopt/linux-gpio/gpiocdev"
	"github.com/spf13/cobra"
)

var (
	hold       time.Duration
	openDrain  bool
	openSource bool
)

var setCmd = &cobra.Command{
	Use:   "set offset=level...",
	Short: "Drive output lines",
	Long: `Request the lines as outputs with one handle, starting at the given
levels, and keep them driven for --hold or until interrupted. The kernel may
return the lines to their previous state once released.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().DurationVar(&hold, "hold", 0,
		"how long to keep driving the lines, 0 releases them at once and a negative value waits for an interrupt")
	setCmd.Flags().BoolVarP(&activeLow, "active-low", "l", false,
		"treat the lines as active low")
	setCmd.Flags().BoolVar(&openDrain, "open-drain", false, "drive the lines open drain")
	setCmd.Flags().BoolVar(&openSource, "open-source", false, "drive the lines open source")
}

func runSet(cmd *cobra.Command, args []string) error {
	levels, err := parseAssignments(args)
	if err != nil {
		return err
	}
	d, err := gpiocdev.Open(chipPath)
	if err != nil {
		return err
	}
	defer d.Close()

	lines := make(map[uint32]gpiocdev.LineOptions[uint32], len(levels))
	for offset, level := range levels {
		lines[offset] = gpiocdev.LineOptions[uint32]{InitialState: gpiocdev.Opt(level)}
	}
	h, err := gpiocdev.RequestHandle(d, lines, gpiocdev.HandleOptions{
		Direction:  gpiocdev.LineOutput,
		ActiveLow:  activeLow,
		OpenDrain:  openDrain,
		OpenSource: openSource,
		Consumer:   consumer,
	})
	if err != nil {
		return err
	}
	defer h.Close()

	buf := h.Buffer()
	if err := buf.SetAll(levels); err != nil {
		return err
	}
	if err := h.Write(buf); err != nil {
		return err
	}
	log.WithField("lines", h.Offsets()).Debug("lines driven")

	if hold == 0 {
		return nil
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if hold > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, hold)
		defer cancel()
	}
	<-ctx.Done()
	return nil
}
