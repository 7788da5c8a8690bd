// Copyright 2023 the clockctl Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

// Gpu names the devfreq device whose limits are read and overridden.
type Gpu struct {
	DevfreqDir string `toml:"devfreq_dir"`
	TargetHz   uint64 `toml:"target_hz"`
}

// Cpu names the cpufreq core whose scaling range is overridden.
type Cpu struct {
	BaseDir  string `toml:"base_dir"`
	Core     string `toml:"core"`
	TargetHz uint64 `toml:"target_hz"`
}

// Diagnostic is the vendor clock-status command run at the end of the
// sequence.
type Diagnostic struct {
	Command string `toml:"command"`
}

type Config struct {
	Gpu        Gpu        `toml:"gpu"`
	Cpu        Cpu        `toml:"cpu"`
	Diagnostic Diagnostic `toml:"diagnostic"`

	// MetricsFile, when set, receives the run's metrics in Prometheus
	// textfile format.
	MetricsFile string `toml:"metrics_file"`
}

var DefaultConfig = &Config{
	// The ga10b is the integrated GPU on the Orin family of SoCs. The
	// device name appears twice in the path because the kernel nests the
	// devfreq node under its parent platform device.
	Gpu: Gpu{
		DevfreqDir: "/sys/devices/17000000.ga10b/devfreq/17000000.ga10b",
		TargetHz:   1020750000,
	},

	// cpu1 runs the camera inference pipeline. Pinning min == max takes
	// the governor out of the picture for that core, which keeps the
	// frame latency flat.
	Cpu: Cpu{
		BaseDir:  "/sys/devices/system/cpu",
		Core:     "cpu1",
		TargetHz: 2265600,
	},

	Diagnostic: Diagnostic{
		Command: "jetson_clocks",
	},
}
