// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FS is the file system templates and repositories are resolved against.
type FS struct {
	fs afero.Fs
}

func NewOSFS() FS { return FS{afero.NewOsFs()} }

// NewMemFS is an in-memory file system, mostly useful in tests.
func NewMemFS() FS { return FS{afero.NewMemMapFs()} }

func NewFS(fs afero.Fs) FS { return FS{fs} }

func (f FS) fsOrDefault() afero.Fs {
	if f.fs == nil {
		return afero.NewOsFs()
	}
	return f.fs
}

func (f FS) Exists(path string) bool {
	_, err := f.fsOrDefault().Stat(path)
	return err == nil
}

func (f FS) IsDir(path string) bool {
	isDir, err := afero.IsDir(f.fsOrDefault(), path)
	return err == nil && isDir
}

func (f FS) IsFile(path string) bool {
	fi, err := f.fsOrDefault().Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func (f FS) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(f.fsOrDefault(), path)
}

func (f FS) WriteFile(path string, data []byte) error {
	fs := f.fsOrDefault()
	if dir := filepath.Dir(path); dir != "." {
		err := fs.MkdirAll(dir, 0700)
		if err != nil {
			return err
		}
	}
	return afero.WriteFile(fs, path, data, os.FileMode(0600))
}
