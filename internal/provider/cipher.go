// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cipher.go - Cipher handles and the three session engines.
//
// Engines:
//   - cbc:    block modes with PKCS#7 padding; output lags input by up to a block
//   - stream: CTR and RC4; output length always equals input length
//   - aead:   GCM and ChaCha20-Poly1305; all output is produced by Final

package provider

import (
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// =============================================================================
// HANDLE
// =============================================================================

// cipherHandle is a fetched cipher.
type cipherHandle struct {
	lib      *Library
	def      cipherDef
	released bool
}

func (c *cipherHandle) Name() string { return c.def.name }
func (c *cipherHandle) KeySize() int { return c.def.keySize }
func (c *cipherHandle) IVSize() int  { return c.def.ivSize }

// BlockSize returns the cipher block size, or 1 for stream and AEAD modes.
func (c *cipherHandle) BlockSize() int {
	if c.def.mode != modeCBC {
		return 1
	}
	return c.def.ivSize
}

// InitEncrypt starts an encryption context.
func (c *cipherHandle) InitEncrypt(key, iv []byte) (CipherSession, error) {
	return c.init(key, iv, true)
}

// InitDecrypt starts a decryption context.
func (c *cipherHandle) InitDecrypt(key, iv []byte) (CipherSession, error) {
	return c.init(key, iv, false)
}

func (c *cipherHandle) init(key, iv []byte, encrypt bool) (CipherSession, error) {
	if c.released {
		return nil, fmt.Errorf("%s: init on released handle", c.def.name)
	}
	if len(key) != c.def.keySize {
		return nil, fmt.Errorf("%s: key is %d bytes, want %d", c.def.name, len(key), c.def.keySize)
	}
	if len(iv) != c.def.ivSize {
		return nil, fmt.Errorf("%s: iv is %d bytes, want %d", c.def.name, len(iv), c.def.ivSize)
	}

	var (
		eng engine
		err error
	)
	switch c.def.mode {
	case modeCBC:
		eng, err = newCBCEngine(c.def, key, iv, encrypt)
	case modeStream:
		eng, err = newStreamEngine(c.def, key, iv)
	case modeAEAD:
		eng, err = newAEADEngine(c.def, key, iv, encrypt)
	default:
		err = fmt.Errorf("unknown mode %d", c.def.mode)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: init: %w", c.def.name, err)
	}

	c.lib.acquire()
	return &cipherSession{lib: c.lib, eng: eng}, nil
}

// Release frees the handle.
func (c *cipherHandle) Release() {
	if c.released {
		return
	}
	c.released = true
	c.lib.release()
}

// =============================================================================
// SESSION
// =============================================================================

// engine is the mode-specific part of a cipher session.
type engine interface {
	update(in []byte) ([]byte, error)
	final() ([]byte, error)
}

// cipherSession enforces the init/update/final/close state machine around an
// engine.
type cipherSession struct {
	lib    *Library
	eng    engine
	done   bool
	closed bool
}

func (s *cipherSession) Update(in []byte) ([]byte, error) {
	if s.done || s.closed {
		return nil, ErrSessionDone
	}
	return s.eng.update(in)
}

func (s *cipherSession) Final() ([]byte, error) {
	if s.done || s.closed {
		return nil, ErrSessionDone
	}
	s.done = true
	return s.eng.final()
}

func (s *cipherSession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.lib.release()
}

// =============================================================================
// CBC ENGINE
// =============================================================================

type cbcEngine struct {
	mode    cipher.BlockMode
	bs      int
	encrypt bool
	pending []byte
}

func newCBCEngine(def cipherDef, key, iv []byte, encrypt bool) (*cbcEngine, error) {
	block, err := def.newBlock(key)
	if err != nil {
		return nil, err
	}
	e := &cbcEngine{bs: block.BlockSize(), encrypt: encrypt}
	if encrypt {
		e.mode = cipher.NewCBCEncrypter(block, iv)
	} else {
		e.mode = cipher.NewCBCDecrypter(block, iv)
	}
	return e, nil
}

// update processes every complete block. When decrypting, the last complete
// block is held back because it may carry the padding.
func (e *cbcEngine) update(in []byte) ([]byte, error) {
	e.pending = append(e.pending, in...)
	n := len(e.pending) - len(e.pending)%e.bs
	if !e.encrypt && n == len(e.pending) && n > 0 {
		n -= e.bs
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	e.mode.CryptBlocks(out, e.pending[:n])
	e.pending = append(e.pending[:0], e.pending[n:]...)
	return out, nil
}

func (e *cbcEngine) final() ([]byte, error) {
	if e.encrypt {
		padded := pkcs7Pad(e.pending, e.bs)
		out := make([]byte, len(padded))
		e.mode.CryptBlocks(out, padded)
		e.pending = nil
		return out, nil
	}

	if len(e.pending) != e.bs {
		return nil, fmt.Errorf("%w: final block is %d bytes, want %d", ErrBadDecrypt, len(e.pending), e.bs)
	}
	out := make([]byte, e.bs)
	e.mode.CryptBlocks(out, e.pending)
	e.pending = nil
	return pkcs7Unpad(out, e.bs)
}

// =============================================================================
// STREAM ENGINE
// =============================================================================

type streamEngine struct {
	stream cipher.Stream
}

func newStreamEngine(def cipherDef, key, iv []byte) (*streamEngine, error) {
	s, err := def.newStream(key, iv)
	if err != nil {
		return nil, err
	}
	return &streamEngine{stream: s}, nil
}

func (e *streamEngine) update(in []byte) ([]byte, error) {
	out := make([]byte, len(in))
	e.stream.XORKeyStream(out, in)
	return out, nil
}

func (e *streamEngine) final() ([]byte, error) { return nil, nil }

// =============================================================================
// AEAD ENGINE
// =============================================================================

// aeadEngine buffers the whole message; the tag is appended to the
// ciphertext on encrypt and verified on decrypt.
type aeadEngine struct {
	aead    cipher.AEAD
	nonce   []byte
	encrypt bool
	pending []byte
}

func newAEADEngine(def cipherDef, key, iv []byte, encrypt bool) (*aeadEngine, error) {
	a, err := def.newAEAD(key)
	if err != nil {
		return nil, err
	}
	if a.NonceSize() != len(iv) {
		return nil, fmt.Errorf("nonce is %d bytes, want %d", len(iv), a.NonceSize())
	}
	return &aeadEngine{aead: a, nonce: append([]byte(nil), iv...), encrypt: encrypt}, nil
}

func (e *aeadEngine) update(in []byte) ([]byte, error) {
	e.pending = append(e.pending, in...)
	return nil, nil
}

func (e *aeadEngine) final() ([]byte, error) {
	if e.encrypt {
		return e.aead.Seal(nil, e.nonce, e.pending, nil), nil
	}
	if len(e.pending) < e.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrBadDecrypt)
	}
	out, err := e.aead.Open(nil, e.nonce, e.pending, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDecrypt, err)
	}
	return out, nil
}

// =============================================================================
// PKCS#7
// =============================================================================

// pkcs7Pad always adds between 1 and bs bytes.
func pkcs7Pad(b []byte, bs int) []byte {
	n := bs - len(b)%bs
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(b []byte, bs int) ([]byte, error) {
	if len(b) == 0 || len(b)%bs != 0 {
		return nil, ErrBadDecrypt
	}
	n := int(b[len(b)-1])
	if n == 0 || n > bs {
		return nil, ErrBadDecrypt
	}
	want := make([]byte, n)
	for i := range want {
		want[i] = byte(n)
	}
	if subtle.ConstantTimeCompare(b[len(b)-n:], want) != 1 {
		return nil, ErrBadDecrypt
	}
	return b[:len(b)-n], nil
}
