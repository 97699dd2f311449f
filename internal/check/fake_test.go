// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package check

import (
	"errors"

	"github.com/sparetools/provider-check/internal/provider"
)

var errInjected = errors.New("injected provider failure")

// faultyProvider wraps a real provider and fails on demand. Every handle and
// session it hands out delegates Release and Close to the wrapped provider,
// so the library's resource accounting stays accurate.
type faultyProvider struct {
	provider.Provider

	fetchErr  error  // returned by both fetches
	failOp    string // "digest", "encrypt", "decrypt" or "" for any
	failAt    Stage  // session stage to fail
	mangle    func(op string, out []byte) []byte
	unloadErr error
	unloads   int
}

func (f *faultyProvider) fails(op string, stage Stage) bool {
	return f.failAt == stage && (f.failOp == "" || f.failOp == op)
}

func (f *faultyProvider) FetchDigest(name string) (provider.Digest, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	d, err := f.Provider.FetchDigest(name)
	if err != nil {
		return nil, err
	}
	return &faultyDigest{Digest: d, f: f}, nil
}

func (f *faultyProvider) FetchCipher(name string) (provider.Cipher, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	c, err := f.Provider.FetchCipher(name)
	if err != nil {
		return nil, err
	}
	return &faultyCipher{Cipher: c, f: f}, nil
}

func (f *faultyProvider) UnloadProvider(m provider.Module) error {
	f.unloads++
	if err := f.Provider.UnloadProvider(m); err != nil {
		return err
	}
	return f.unloadErr
}

type faultyDigest struct {
	provider.Digest
	f *faultyProvider
}

func (d *faultyDigest) Init() (provider.DigestSession, error) {
	if d.f.fails("digest", StageInit) {
		return nil, errInjected
	}
	s, err := d.Digest.Init()
	if err != nil {
		return nil, err
	}
	return &faultyDigestSession{DigestSession: s, f: d.f}, nil
}

type faultyDigestSession struct {
	provider.DigestSession
	f *faultyProvider
}

func (s *faultyDigestSession) Update(p []byte) error {
	if s.f.fails("digest", StageUpdate) {
		return errInjected
	}
	return s.DigestSession.Update(p)
}

func (s *faultyDigestSession) Final() ([]byte, error) {
	if s.f.fails("digest", StageFinal) {
		return nil, errInjected
	}
	out, err := s.DigestSession.Final()
	if err == nil && s.f.mangle != nil {
		out = s.f.mangle("digest", out)
	}
	return out, err
}

type faultyCipher struct {
	provider.Cipher
	f *faultyProvider
}

func (c *faultyCipher) InitEncrypt(key, iv []byte) (provider.CipherSession, error) {
	return c.init("encrypt", c.Cipher.InitEncrypt, key, iv)
}

func (c *faultyCipher) InitDecrypt(key, iv []byte) (provider.CipherSession, error) {
	return c.init("decrypt", c.Cipher.InitDecrypt, key, iv)
}

func (c *faultyCipher) init(op string, fn initFunc, key, iv []byte) (provider.CipherSession, error) {
	if c.f.fails(op, StageInit) {
		return nil, errInjected
	}
	s, err := fn(key, iv)
	if err != nil {
		return nil, err
	}
	return &faultyCipherSession{CipherSession: s, f: c.f, op: op}, nil
}

type faultyCipherSession struct {
	provider.CipherSession
	f  *faultyProvider
	op string
}

func (s *faultyCipherSession) Update(in []byte) ([]byte, error) {
	if s.f.fails(s.op, StageUpdate) {
		return nil, errInjected
	}
	return s.CipherSession.Update(in)
}

func (s *faultyCipherSession) Final() ([]byte, error) {
	if s.f.fails(s.op, StageFinal) {
		return nil, errInjected
	}
	out, err := s.CipherSession.Final()
	if err == nil && s.f.mangle != nil {
		out = s.f.mangle(s.op, out)
	}
	return out, err
}
