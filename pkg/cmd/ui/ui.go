// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/files"
)

// UI is what commands write through. Warnings are always shown,
// unlike debug traces.
type UI interface {
	files.UI
	Warnf(str string, args ...interface{})
}
