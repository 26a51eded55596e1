// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the smoke test scenario run by the gpiocdev command.
//
// A scenario names a chip and two lines joined by a jumper:
//
//	chip: /dev/gpiochip0
//	output: 5
//	input: 13
//	toggles: 10
//	timeout: 1s
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Smoke describes a jumpered pair of lines on one chip.
type Smoke struct {
	Chip   string `yaml:"chip"`
	Output uint32 `yaml:"output"`
	Input  uint32 `yaml:"input"`
	// Toggles is the number of edges driven while the input is watched.
	Toggles int `yaml:"toggles"`
	// Timeout bounds the wait for each edge.
	Timeout time.Duration `yaml:"timeout"`
	// Consumer labels the requested lines.
	Consumer string `yaml:"consumer"`
}

// Defaults applied to fields left out of a scenario.
const (
	DefaultChip    = "/dev/gpiochip0"
	DefaultToggles = 10
	DefaultTimeout = time.Second
)

// LoadError reports a scenario that can't be read or is invalid.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	s := e.Message
	if e.File != "" {
		s = e.File + ": " + s
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseSmoke parses a scenario from YAML bytes and fills in the defaults.
func ParseSmoke(data []byte) (*Smoke, error) {
	var s Smoke
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if s.Chip == "" {
		s.Chip = DefaultChip
	}
	if s.Toggles == 0 {
		s.Toggles = DefaultToggles
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSmoke loads a scenario from a file.
func LoadSmoke(path string) (*Smoke, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	s, err := ParseSmoke(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
		}
		return nil, err
	}
	return s, nil
}

// Validate checks the scenario can run.
func (s *Smoke) Validate() error {
	if s.Output == s.Input {
		return &LoadError{Message: fmt.Sprintf("output and input are both line %d", s.Output)}
	}
	if s.Toggles < 0 {
		return &LoadError{Message: fmt.Sprintf("toggles must be positive, got %d", s.Toggles)}
	}
	if s.Timeout < 0 {
		return &LoadError{Message: fmt.Sprintf("timeout must be positive, got %s", s.Timeout)}
	}
	return nil
}
