// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// FileStore persists world snapshots as a YAML file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the YAML file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and decodes the world file. Unknown keys are rejected.
func (s *FileStore) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, oops.Code(CodeRoomNotFound).With("path", s.path).Wrapf(ErrNotFound, "world file %s", s.path)
		}
		return nil, oops.With("path", s.path).Wrapf(err, "read world file")
	}
	return DecodeSnapshot(data)
}

// Save writes the snapshot atomically via a temp file and rename. The player
// roster is not written.
func (s *FileStore) Save(_ context.Context, snap *Snapshot) error {
	data, err := EncodeSnapshot(snap.WithoutPlayers())
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return oops.With("path", dir).Wrapf(err, "create world directory")
	}
	tmp, err := os.CreateTemp(dir, ".world-*.yaml")
	if err != nil {
		return oops.With("path", dir).Wrapf(err, "create temp world file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return oops.With("path", tmp.Name()).Wrapf(err, "write temp world file")
	}
	if err := tmp.Close(); err != nil {
		return oops.With("path", tmp.Name()).Wrapf(err, "close temp world file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return oops.With("path", s.path).Wrapf(err, "replace world file")
	}
	return nil
}

// DecodeSnapshot parses a YAML world document.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, oops.Code(CodeInvariantViolation).Wrapf(err, "decode world file")
	}
	return &snap, nil
}

// EncodeSnapshot renders a snapshot as YAML.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return nil, oops.Wrapf(err, "encode world file")
	}
	if err := enc.Close(); err != nil {
		return nil, oops.Wrapf(err, "encode world file")
	}
	return buf.Bytes(), nil
}
