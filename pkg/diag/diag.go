// Copyright 2023 the clockctl Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag runs the vendor clock-status binary.
package diag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ErrToolUnavailable means the vendor diagnostic binary is not on PATH.
var ErrToolUnavailable = errors.New("diagnostic tool unavailable")

// Tool invokes a vendor diagnostic command with no arguments.
type Tool struct {
	Command string
}

// Show runs the diagnostic and streams its output to the given writers.
func (t *Tool) Show(ctx context.Context, stdout, stderr io.Writer) error {
	bin, err := exec.LookPath(t.Command)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrToolUnavailable, t.Command)
	}
	cmd := exec.CommandContext(ctx, bin)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %v", t.Command, err)
	}
	return nil
}
