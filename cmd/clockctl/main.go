// Copyright 2023 the clockctl Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command clockctl pins the camera SoC's CPU and GPU clocks for flat
// inference latency, then shows the vendor clock summary.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/edgecam/clockctl/config"
	"github.com/edgecam/clockctl/pkg/diag"
	"github.com/edgecam/clockctl/pkg/service/logger"
	"github.com/edgecam/clockctl/pkg/tune"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

var log = logger.LogContainer.GetSimpleLogger()

var (
	configPath  = flag.String("config", "", "Optional TOML file overriding the built-in device constants.")
	metricsFile = flag.String("metrics-file", "", "Write run metrics in Prometheus textfile format to this path.")
	skipDiag    = flag.Bool("skip-diag", false, "Do not run the vendor diagnostic after tuning.")
)

func main() {
	flag.Parse()

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, *configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *metricsFile != "" {
		cfg.MetricsFile = *metricsFile
	}

	if unix.Geteuid() != 0 {
		log.Warnf("Not running as root, frequency writes will likely be denied")
	}

	var d tune.Diagnostic
	if !*skipDiag {
		d = &diag.Tool{Command: cfg.Diagnostic.Command}
	}

	if err := tune.Run(context.Background(), cfg, fs, d, os.Stdout, os.Stderr); err != nil {
		log.Errorf("Tuning finished with errors: %v", err)
		os.Exit(1)
	}
}
