// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source supplies the root pipeline document.
type Source interface {
	Description() string
	Path() string
	Bytes() ([]byte, error)
}

var _ []Source = []Source{StdinSource{}, LocalSource{}}

// StdinSource reads standard input eagerly; it can only be created once
// per process.
type StdinSource struct {
	bytes []byte
	err   error
}

var hasStdinBeenRead bool

func NewStdinSource() StdinSource {
	if hasStdinBeenRead {
		return StdinSource{err: fmt.Errorf("Standard input has already been read")}
	}
	hasStdinBeenRead = true

	bs, err := io.ReadAll(os.Stdin)
	return StdinSource{bs, err}
}

func (s StdinSource) Description() string    { return "stdin.yml" }
func (s StdinSource) Path() string           { return "stdin.yml" }
func (s StdinSource) Bytes() ([]byte, error) { return s.bytes, s.err }

type LocalSource struct {
	path string
	fs   FS
}

func NewLocalSource(path string, fs FS) LocalSource { return LocalSource{path, fs} }

func (s LocalSource) Description() string { return fmt.Sprintf("file '%s'", s.path) }

// Path is absolute when it can be determined so relative template
// references resolve the same way regardless of later directory changes.
func (s LocalSource) Path() string {
	absPath, err := filepath.Abs(s.path)
	if err != nil {
		return s.path
	}
	return absPath
}

func (s LocalSource) Bytes() ([]byte, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("Reading %s: %s", s.Description(), err)
	}
	return data, nil
}
