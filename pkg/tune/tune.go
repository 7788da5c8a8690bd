// Copyright 2023 the clockctl Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tune runs the fixed clock-override sequence.
package tune

import (
	"context"
	"fmt"
	"io"

	"github.com/edgecam/clockctl/config"
	"github.com/edgecam/clockctl/pkg/hardware/clock"
	"github.com/edgecam/clockctl/pkg/service/logger"
	"github.com/edgecam/clockctl/pkg/service/metric"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

var log = logger.LogContainer.GetSimpleLogger()

var (
	stepOk = metric.Counter(metric.MetricOpts{
		Namespace: "clockctl",
		Subsystem: "run",
		Name:      "steps_ok",
	}, nil)
	stepFailed = metric.Counter(metric.MetricOpts{
		Namespace: "clockctl",
		Subsystem: "run",
		Name:      "steps_failed",
	}, nil)
)

// Diagnostic is the vendor clock-status command run as the last step.
type Diagnostic interface {
	Show(ctx context.Context, stdout, stderr io.Writer) error
}

// Run executes the tuning sequence: report the GPU limits, pin the CPU core,
// pin the GPU, then show the vendor diagnostic. Every step runs even when an
// earlier one failed. The returned error aggregates all failures and is nil
// only on a fully clean run. A nil Diagnostic skips the last step.
func Run(ctx context.Context, cfg *config.Config, fs afero.Fs, d Diagnostic, out, errOut io.Writer) error {
	sys := clock.New(fs, cfg.Gpu.DevfreqDir, cfg.Cpu.BaseDir)
	var result *multierror.Error

	lim, err := sys.GpuLimits()
	if err == nil {
		log.Infof("GPU frequency: min %d Hz, max %d Hz, cur %d Hz", lim.Min, lim.Max, lim.Cur)
		fmt.Fprintf(out, "%d\n%d\n%d\n", lim.Min, lim.Max, lim.Cur)
	}
	result = multierror.Append(result, step("report GPU limits", err))

	result = multierror.Append(result, step(
		fmt.Sprintf("pin %s to %d Hz", cfg.Cpu.Core, cfg.Cpu.TargetHz),
		sys.SetCpuFrequency(cfg.Cpu.Core, cfg.Cpu.TargetHz)))

	result = multierror.Append(result, step(
		fmt.Sprintf("pin GPU to %d Hz", cfg.Gpu.TargetHz),
		sys.SetGpuFrequency(cfg.Gpu.TargetHz)))

	if d != nil {
		result = multierror.Append(result, step("show diagnostic", d.Show(ctx, out, errOut)))
	}

	// Metrics are best effort like everything else, but they are about the
	// run itself and must come out even when steps failed.
	if cfg.MetricsFile != "" {
		if err := metric.WriteTextfile(fs, cfg.MetricsFile); err != nil {
			log.Warnf("Failed to write metrics textfile %s: %v", cfg.MetricsFile, err)
		}
	}

	return result.ErrorOrNil()
}

func step(name string, err error) error {
	if err != nil {
		stepFailed.Inc()
		log.Errorf("Failed to %s: %v", name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	stepOk.Inc()
	log.Infof("Done: %s", name)
	return nil
}
