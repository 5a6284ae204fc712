// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"path/filepath"
)

// OutputFile is rendered YAML destined for path.
type OutputFile struct {
	path string
	data []byte
}

func NewOutputFile(path string, data []byte) OutputFile {
	return OutputFile{path, data}
}

// Path resolves a relative output path against dirPath.
func (f OutputFile) Path(dirPath string) string {
	if filepath.IsAbs(f.path) || dirPath == "" {
		return f.path
	}
	return filepath.Join(dirPath, f.path)
}

// Create writes the file, creating missing parent directories.
func (f OutputFile) Create(fs FS, dirPath string) error {
	return fs.WriteFile(f.Path(dirPath), f.data)
}
