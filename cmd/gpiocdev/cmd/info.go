// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"

	linuxgpio "github.com/dvlopt/linux-gpio"
	"github.com/dvlopt/linux-gpio/gpiocdev"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/gpio"
)

var outputJSON bool

var infoCmd = &cobra.Command{
	Use:   "info [chip...]",
	Short: "Describe GPIO chips and their lines",
	Long: `Describe the given chip devices, or every /dev/gpiochip* found when
none is given. Chips aliased under two names are listed once.`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&outputJSON, "json", false,
		"output as JSON (for programmatic access)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	var chips []*gpiocdev.ChipInfo
	if len(args) == 0 {
		found, state, err := linuxgpio.Init()
		if err != nil {
			return err
		}
		for _, failure := range state.Failed {
			log.WithError(failure.Err).Warnf("driver %s failed", failure.D)
		}
		chips = found
		if len(chips) == 0 {
			return fmt.Errorf("no GPIO chips found")
		}
	}
	for _, path := range args {
		chip, err := gpiocdev.DescribePath(path)
		if err != nil {
			return err
		}
		chips = append(chips, chip)
	}

	out := cmd.OutOrStdout()
	for _, chip := range chips {
		if outputJSON {
			fmt.Fprintln(out, chip.String())
			continue
		}
		printChip(out, chip)
	}
	return nil
}

func printChip(w io.Writer, chip *gpiocdev.ChipInfo) {
	fmt.Fprintf(w, "%s [%s] %s - %d lines\n", chip.Name, chip.Label, chip.Path, chip.LineCount)
	for _, line := range chip.Lines {
		name := line.Name
		if name == "" {
			name = "unnamed"
		}
		consumer := "unused"
		if line.Used {
			consumer = fmt.Sprintf("%q", line.Consumer)
		}
		fmt.Fprintf(w, "\tline %3d: %-16s %-20s %-6s", line.LineNumber, name, consumer, line.Direction)
		if line.ActiveLow {
			fmt.Fprint(w, " active-low")
		}
		if line.OpenDrain {
			fmt.Fprint(w, " open-drain")
		}
		if line.OpenSource {
			fmt.Fprint(w, " open-source")
		}
		if line.Pull != gpio.PullNoChange {
			fmt.Fprintf(w, " %s", line.Pull)
		}
		fmt.Fprintln(w)
	}
}
