// Copyright 2023 the clockctl Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

var coreRe = regexp.MustCompile(`^cpu[0-9]+$`)

// Load returns DefaultConfig overlaid with the TOML file at path. An empty
// path returns a copy of the defaults unchanged.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := *DefaultConfig
	if path == "" {
		return &cfg, nil
	}

	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	var raw Config
	md, err := toml.Decode(string(b), &raw)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse config %s: unknown key %q", path, undecoded[0].String())
	}

	overlay(&cfg, &raw)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func overlay(dst, src *Config) {
	if src.Gpu.DevfreqDir != "" {
		dst.Gpu.DevfreqDir = src.Gpu.DevfreqDir
	}
	if src.Gpu.TargetHz != 0 {
		dst.Gpu.TargetHz = src.Gpu.TargetHz
	}
	if src.Cpu.BaseDir != "" {
		dst.Cpu.BaseDir = src.Cpu.BaseDir
	}
	if src.Cpu.Core != "" {
		dst.Cpu.Core = src.Cpu.Core
	}
	if src.Cpu.TargetHz != 0 {
		dst.Cpu.TargetHz = src.Cpu.TargetHz
	}
	if src.Diagnostic.Command != "" {
		dst.Diagnostic.Command = src.Diagnostic.Command
	}
	if src.MetricsFile != "" {
		dst.MetricsFile = src.MetricsFile
	}
}

// Validate rejects configurations that would make the run touch paths
// outside the devfreq and cpufreq trees.
func (c *Config) Validate() error {
	if c.Gpu.DevfreqDir == "" {
		return fmt.Errorf("gpu.devfreq_dir must not be empty")
	}
	if c.Cpu.BaseDir == "" {
		return fmt.Errorf("cpu.base_dir must not be empty")
	}
	if !coreRe.MatchString(c.Cpu.Core) {
		return fmt.Errorf("cpu.core %q does not name a core (cpuN)", c.Cpu.Core)
	}
	if c.Gpu.TargetHz == 0 {
		return fmt.Errorf("gpu.target_hz must not be zero")
	}
	if c.Cpu.TargetHz == 0 {
		return fmt.Errorf("cpu.target_hz must not be zero")
	}
	return nil
}
