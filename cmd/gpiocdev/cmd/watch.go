// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvlopt/linux-gpio/gpiocdev"
	"github.com/spf13/cobra"
)

var (
	edgeName   string
	timeout    time.Duration
	eventCount int
)

var watchCmd = &cobra.Command{
	Use:   "watch offset...",
	Short: "Print edges on input lines",
	Long: `Watch the lines for edges and print one line per event:

  <kernel timestamp> <offset> <edge>

until --timeout expires, --count events were printed, or the command is
interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&edgeName, "edge", "e", "both",
		"edges to report: rising, falling or both")
	watchCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0,
		"stop after this long, 0 waits forever")
	watchCmd.Flags().IntVarP(&eventCount, "count", "n", 0,
		"stop after this many events, 0 doesn't stop")
	watchCmd.Flags().BoolVarP(&activeLow, "active-low", "l", false,
		"treat the lines as active low")
	watchCmd.Flags().StringVarP(&pullName, "pull", "p", "",
		"line bias: up, down, float or none")
}

func runWatch(cmd *cobra.Command, args []string) error {
	offsets, err := parseOffsets(args)
	if err != nil {
		return err
	}
	edge, err := parseEdge(edgeName)
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

	lines := make(map[uint32]gpiocdev.WatchOptions[uint32], len(offsets))
	for _, offset := range offsets {
		lines[offset] = gpiocdev.WatchOptions[uint32]{
			Direction: gpiocdev.LineInput,
			ActiveLow: activeLow,
			Pull:      pull,
			Edge:      edge,
			Consumer:  consumer,
		}
	}
	w, err := gpiocdev.RequestWatcher(d, lines)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.WithField("lines", w.Offsets()).Infof("watching for %s", edge)
	out := cmd.OutOrStdout()
	for n := 0; eventCount == 0 || n < eventCount; n++ {
		ev, err := w.WaitContext(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d %d %s\n", ev.Timestamp.Nanoseconds(), ev.Tag, ev.Edge)
	}
	return nil
}
