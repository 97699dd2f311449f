// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"fmt"
	"hash"
)

// digestHandle is a fetched digest.
type digestHandle struct {
	lib       *Library
	def       digestDef
	size      int
	blockSize int
	released  bool
}

func (d *digestHandle) Name() string   { return d.def.name }
func (d *digestHandle) Size() int      { return d.size }
func (d *digestHandle) BlockSize() int { return d.blockSize }

// Init starts a fresh digest context.
func (d *digestHandle) Init() (DigestSession, error) {
	if d.released {
		return nil, fmt.Errorf("%s: init on released handle", d.def.name)
	}
	h, err := d.def.new()
	if err != nil {
		return nil, fmt.Errorf("%s: init: %w", d.def.name, err)
	}
	d.lib.acquire()
	return &digestSession{lib: d.lib, h: h}, nil
}

// Release frees the handle.
func (d *digestHandle) Release() {
	if d.released {
		return
	}
	d.released = true
	d.lib.release()
}

// digestSession wraps a hash.Hash with init/update/final semantics.
type digestSession struct {
	lib    *Library
	h      hash.Hash
	done   bool
	closed bool
}

// Update feeds p into the digest.
func (s *digestSession) Update(p []byte) error {
	if s.done || s.closed {
		return ErrSessionDone
	}
	// hash.Hash.Write never returns an error.
	_, _ = s.h.Write(p)
	return nil
}

// Final returns the digest and ends the session.
func (s *digestSession) Final() ([]byte, error) {
	if s.done || s.closed {
		return nil, ErrSessionDone
	}
	s.done = true
	return s.h.Sum(nil), nil
}

// Close frees the context.
func (s *digestSession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.lib.release()
}
