// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"time"

	"github.com/dvlopt/linux-gpio/cmd/gpiocdev/config"
	"github.com/dvlopt/linux-gpio/gpiocdev"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/gpio"
)

var configPath string

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Check a jumpered pair of lines",
	Long: `Run two checks on an output line wired to an input line of the same
chip, as described by a YAML scenario:

  1. drive the output high then low, reading each level back through the
     input with a handle;
  2. watch the input for edges while toggling the output, checking each edge
     and that kernel timestamps increase.`,
	Args: cobra.NoArgs,
	RunE: runSmoke,
}

func init() {
	rootCmd.AddCommand(smokeCmd)
	smokeCmd.Flags().StringVar(&configPath, "config", "", "scenario YAML file")
	_ = smokeCmd.MarkFlagRequired("config")
}

func runSmoke(cmd *cobra.Command, args []string) error {
	sc, err := config.LoadSmoke(configPath)
	if err != nil {
		return err
	}
	if sc.Consumer == "" {
		sc.Consumer = consumer
	}
	d, err := gpiocdev.Open(sc.Chip)
	if err != nil {
		return err
	}
	defer d.Close()

	out, err := gpiocdev.RequestHandle(d, map[uint32]gpiocdev.LineOptions[string]{
		sc.Output: {Tag: gpiocdev.Opt("out")},
	}, gpiocdev.HandleOptions{Direction: gpiocdev.LineOutput, Consumer: sc.Consumer})
	if err != nil {
		return err
	}
	defer out.Close()

	if err := smokeReadBack(d, sc, out); err != nil {
		return err
	}
	log.Infof("line %d reads back line %d", sc.Input, sc.Output)
	if err := smokeEdges(d, sc, out); err != nil {
		return err
	}
	log.Infof("line %d reported %d edges", sc.Input, sc.Toggles)
	fmt.Fprintln(cmd.OutOrStdout(), "PASS")
	return nil
}

// smokeReadBack drives the output high then low and reads each level back.
func smokeReadBack(d *gpiocdev.Device, sc *config.Smoke, out *gpiocdev.Handle[string]) error {
	in, err := gpiocdev.RequestHandle(d, map[uint32]gpiocdev.LineOptions[string]{
		sc.Input: {Tag: gpiocdev.Opt("in")},
	}, gpiocdev.HandleOptions{Direction: gpiocdev.LineInput, Consumer: sc.Consumer})
	if err != nil {
		return err
	}
	defer in.Close()

	wbuf := out.Buffer()
	rbuf := in.Buffer()
	for _, level := range []gpio.Level{gpio.High, gpio.Low} {
		_ = wbuf.Set("out", level)
		if err := out.Write(wbuf); err != nil {
			return err
		}
		time.Sleep(time.Millisecond)
		if err := in.Read(rbuf); err != nil {
			return err
		}
		if got, _ := rbuf.Get("in"); got != level {
			return fmt.Errorf("wrote %s to line %d, read %s from line %d", level, sc.Output, got, sc.Input)
		}
	}
	return nil
}

// smokeEdges toggles the output and waits for the matching edge on the
// input each time.
func smokeEdges(d *gpiocdev.Device, sc *config.Smoke, out *gpiocdev.Handle[string]) error {
	w, err := gpiocdev.RequestWatcher(d, map[uint32]gpiocdev.WatchOptions[string]{
		sc.Input: {Tag: gpiocdev.Opt("in"), Direction: gpiocdev.LineInput, Consumer: sc.Consumer},
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if _, ok, err := w.Wait(0); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("line %d reported an edge before any was driven", sc.Input)
	}

	buf := out.Buffer()
	var last time.Duration
	for i := 0; i < sc.Toggles; i++ {
		if err := buf.Toggle("out"); err != nil {
			return err
		}
		if err := out.Write(buf); err != nil {
			return err
		}
		ev, ok, err := w.Wait(sc.Timeout)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no edge on line %d within %s", sc.Input, sc.Timeout)
		}
		level, _ := buf.Get("out")
		want := gpio.FallingEdge
		if level {
			want = gpio.RisingEdge
		}
		if ev.Edge != want {
			return fmt.Errorf("toggle %d: expected %s, got %s", i, want, ev.Edge)
		}
		if ev.Timestamp <= last {
			return fmt.Errorf("toggle %d: timestamp %s not after %s", i, ev.Timestamp, last)
		}
		last = ev.Timestamp
		log.WithField("timestamp", ev.Timestamp).Debugf("edge %s", ev.Edge)
	}
	return nil
}
