// Copyright 2023 the clockctl Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clock

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

const (
	gpuDir  = "/sys/devices/17000000.ga10b/devfreq/17000000.ga10b"
	cpuBase = "/sys/devices/system/cpu"
)

func newMemSystem(t *testing.T) (*System, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for p, v := range map[string]string{
		gpuDir + "/min_freq": "306000000\n",
		gpuDir + "/max_freq": "1300500000\n",
		gpuDir + "/cur_freq": "1020750000\n",
		cpuBase + "/cpu1/cpufreq/scaling_min_freq": "729600\n",
		cpuBase + "/cpu1/cpufreq/scaling_max_freq": "2201600\n",
	} {
		if err := afero.WriteFile(fs, p, []byte(v), 0644); err != nil {
			t.Fatalf("Failed to seed %s: %v", p, err)
		}
	}
	return New(fs, gpuDir, cpuBase), fs
}

func mustRead(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("Failed to read back %s: %v", path, err)
	}
	return string(b)
}

func TestGpuLimits(t *testing.T) {
	s, _ := newMemSystem(t)
	lim, err := s.GpuLimits()
	if err != nil {
		t.Fatalf("GpuLimits failed: %v", err)
	}
	if lim.Min != 306000000 || lim.Max != 1300500000 || lim.Cur != 1020750000 {
		t.Fatalf("Unexpected limits: %+v", lim)
	}
}

func TestGpuLimitsMissingAttribute(t *testing.T) {
	s, fs := newMemSystem(t)
	if err := fs.Remove(gpuDir + "/cur_freq"); err != nil {
		t.Fatalf("Failed to remove attribute: %v", err)
	}
	_, err := s.GpuLimits()
	if !errors.Is(err, ErrAttributeUnavailable) {
		t.Fatalf("Expected ErrAttributeUnavailable, got %v", err)
	}
}

func TestGpuLimitsMalformedAttribute(t *testing.T) {
	s, fs := newMemSystem(t)
	if err := afero.WriteFile(fs, gpuDir+"/cur_freq", []byte("performance\n"), 0644); err != nil {
		t.Fatalf("Failed to corrupt attribute: %v", err)
	}
	_, err := s.GpuLimits()
	if !errors.Is(err, ErrAttributeUnavailable) {
		t.Fatalf("Expected ErrAttributeUnavailable, got %v", err)
	}
}

func TestSetCpuFrequency(t *testing.T) {
	s, fs := newMemSystem(t)
	if err := s.SetCpuFrequency("cpu1", 2265600); err != nil {
		t.Fatalf("SetCpuFrequency failed: %v", err)
	}
	for _, p := range []string{
		cpuBase + "/cpu1/cpufreq/scaling_min_freq",
		cpuBase + "/cpu1/cpufreq/scaling_max_freq",
	} {
		if got := mustRead(t, fs, p); got != "2265600" {
			t.Fatalf("%s contains %q, expected %q", p, got, "2265600")
		}
	}
}

func TestSetCpuFrequencyMissingCore(t *testing.T) {
	s, fs := newMemSystem(t)
	err := s.SetCpuFrequency("cpu7", 2265600)
	if !errors.Is(err, ErrAttributeUnavailable) {
		t.Fatalf("Expected ErrAttributeUnavailable, got %v", err)
	}
	// The write must not materialize attribute files the kernel never made.
	ok, _ := afero.Exists(fs, cpuBase+"/cpu7/cpufreq/scaling_min_freq")
	if ok {
		t.Fatal("Write to a missing core created an attribute file")
	}
}

func TestSetGpuFrequency(t *testing.T) {
	s, fs := newMemSystem(t)
	if err := s.SetGpuFrequency(1020750000); err != nil {
		t.Fatalf("SetGpuFrequency failed: %v", err)
	}
	for _, p := range []string{gpuDir + "/min_freq", gpuDir + "/max_freq"} {
		if got := mustRead(t, fs, p); got != "1020750000" {
			t.Fatalf("%s contains %q, expected %q", p, got, "1020750000")
		}
	}
	// cur_freq is owned by the governor and must be left alone.
	if got := mustRead(t, fs, gpuDir+"/cur_freq"); got != "1020750000\n" {
		t.Fatalf("cur_freq was touched: %q", got)
	}
}

func TestWriteWithoutPrivilege(t *testing.T) {
	_, fs := newMemSystem(t)
	s := New(afero.NewReadOnlyFs(fs), gpuDir, cpuBase)
	err := s.SetGpuFrequency(1020750000)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied, got %v", err)
	}
}
