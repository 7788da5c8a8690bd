// Copyright 2023 the clockctl Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"bytes"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/afero"
)

// MetricOpts contains naming pieces of the exposed metric
type MetricOpts struct {
	Namespace string
	Subsystem string
	Name      string
}

// Counter creates and returns a metrics.Counter
func Counter(opts MetricOpts, labels []string) *metrics.Counter {
	return metrics.GetOrCreateCounter(optsToString(opts) + labelsToString(labels))
}

// Gauge creates and returns a metrics.Gauge
func Gauge(opts MetricOpts, labels []string, f func() float64) *metrics.Gauge {
	return metrics.GetOrCreateGauge(optsToString(opts)+labelsToString(labels), f)
}

// WriteTextfile renders every registered metric in Prometheus exposition
// format and drops it where the node_exporter textfile collector picks it
// up. A one-shot tool has no scrape endpoint, this is its replacement. The
// write goes through a temporary file and a rename so the collector never
// sees a partial file.
func WriteTextfile(fs afero.Fs, path string) error {
	var b bytes.Buffer
	metrics.WritePrometheus(&b, false)
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, b.Bytes(), 0644); err != nil {
		return err
	}
	return fs.Rename(tmp, path)
}

func optsToString(opts MetricOpts) string {
	if opts.Name == "" {
		return ""
	}
	switch {
	case opts.Namespace != "" && opts.Subsystem != "":
		return strings.Join([]string{opts.Namespace, opts.Subsystem, opts.Name}, "_")
	case opts.Namespace != "":
		return strings.Join([]string{opts.Namespace, opts.Name}, "_")
	case opts.Subsystem != "":
		return strings.Join([]string{opts.Subsystem, opts.Name}, "_")
	}
	return opts.Name
}

func labelsToString(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	s := "{"
	for _, label := range labels {
		s = s + label + ", "
	}
	return strings.TrimRight(s, ", ") + "}"
}
