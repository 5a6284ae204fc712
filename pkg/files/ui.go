// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"io"
)

type UI interface {
	Printf(string, ...interface{})
	Debugf(string, ...interface{})
	DebugWriter() io.Writer
}

// NoopUI discards everything; used when embedding callers pass no UI.
type NoopUI struct{}

var _ UI = NoopUI{}

func (NoopUI) Printf(string, ...interface{}) {}
func (NoopUI) Debugf(string, ...interface{}) {}
func (NoopUI) DebugWriter() io.Writer        { return io.Discard }
