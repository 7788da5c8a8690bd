// Copyright 2023 the clockctl Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clock reads and overrides CPU and GPU clock-frequency limits
// through the kernel's cpufreq and devfreq sysfs attributes.
package clock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// Attribute names exposed by the devfreq and cpufreq subsystems.
const (
	gpuMinFreq = "min_freq"
	gpuMaxFreq = "max_freq"
	gpuCurFreq = "cur_freq"

	cpuMinFreq = "scaling_min_freq"
	cpuMaxFreq = "scaling_max_freq"
)

var (
	// ErrAttributeUnavailable means the sysfs attribute is missing,
	// unreadable, or holds something that is not a frequency.
	ErrAttributeUnavailable = errors.New("frequency attribute unavailable")

	// ErrPermissionDenied means the attribute exists but the caller lacks
	// the privilege to touch it.
	ErrPermissionDenied = errors.New("permission denied")
)

// Limits is a snapshot of a devfreq device's frequency attributes in Hz.
type Limits struct {
	Min uint64
	Max uint64
	Cur uint64
}

// System reads and overrides clock limits below a fixed GPU devfreq
// directory and a fixed cpufreq base directory.
type System struct {
	fs      afero.Fs
	gpuDir  string
	cpuBase string
}

// New returns a System rooted at the given devfreq and cpufreq directories.
func New(fs afero.Fs, gpuDir string, cpuBase string) *System {
	return &System{fs: fs, gpuDir: gpuDir, cpuBase: cpuBase}
}

// GpuLimits reads the GPU's min, max and current frequency.
func (s *System) GpuLimits() (Limits, error) {
	var l Limits
	var err error
	if l.Min, err = s.readAttr(filepath.Join(s.gpuDir, gpuMinFreq)); err != nil {
		return Limits{}, err
	}
	if l.Max, err = s.readAttr(filepath.Join(s.gpuDir, gpuMaxFreq)); err != nil {
		return Limits{}, err
	}
	if l.Cur, err = s.readAttr(filepath.Join(s.gpuDir, gpuCurFreq)); err != nil {
		return Limits{}, err
	}
	return l, nil
}

// SetCpuFrequency pins the core's cpufreq scaling range to exactly hz.
// Requires elevated privilege and takes effect immediately for every
// process on the system. Both attributes are attempted even if the first
// write fails.
func (s *System) SetCpuFrequency(core string, hz uint64) error {
	dir := filepath.Join(s.cpuBase, core, "cpufreq")
	var result *multierror.Error
	result = multierror.Append(result, s.writeAttr(filepath.Join(dir, cpuMinFreq), hz))
	result = multierror.Append(result, s.writeAttr(filepath.Join(dir, cpuMaxFreq), hz))
	return result.ErrorOrNil()
}

// SetGpuFrequency pins the GPU devfreq range to exactly hz. Same privilege
// and best-effort semantics as SetCpuFrequency.
func (s *System) SetGpuFrequency(hz uint64) error {
	var result *multierror.Error
	result = multierror.Append(result, s.writeAttr(filepath.Join(s.gpuDir, gpuMinFreq), hz))
	result = multierror.Append(result, s.writeAttr(filepath.Join(s.gpuDir, gpuMaxFreq), hz))
	return result.ErrorOrNil()
}

func (s *System) readAttr(path string) (uint64, error) {
	b, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return 0, wrapPathError(path, err)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrAttributeUnavailable, path, err)
	}
	return v, nil
}

// writeAttr overwrites a sysfs attribute with the decimal text of hz.
// Attributes are kernel-owned files and must never be created here, so the
// open deliberately omits O_CREATE.
func (s *System) writeAttr(path string, hz uint64) error {
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return wrapPathError(path, err)
	}
	defer f.Close()
	if _, err := f.Write([]byte(strconv.FormatUint(hz, 10))); err != nil {
		return wrapPathError(path, err)
	}
	return nil
}

func wrapPathError(path string, err error) error {
	if os.IsPermission(err) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}
	return fmt.Errorf("%w: %s: %v", ErrAttributeUnavailable, path, err)
}
