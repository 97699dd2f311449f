// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package check

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/sparetools/provider-check/internal/provider"
)

// =============================================================================
// ERRORS
// =============================================================================

// Stage is a step of a digest or cipher session.
type Stage string

const (
	StageFetch  Stage = "fetch"
	StageInit   Stage = "init"
	StageUpdate Stage = "update"
	StageFinal  Stage = "final"
)

// OperationError reports a provider failure at one stage of an operation.
type OperationError struct {
	Op        string // digest, cipher, encrypt or decrypt
	Algorithm string
	Stage     Stage
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s: %s failed: %v", e.Algorithm, e.Op, e.Stage, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// MismatchError reports output that does not match what was expected.
type MismatchError struct {
	Algorithm string
	Subject   string
	WantLen   int
	GotLen    int
	Offset    int // first differing byte when lengths agree
}

func (e *MismatchError) Error() string {
	if e.WantLen != e.GotLen {
		return fmt.Sprintf("%s: %s length mismatch: want %d bytes, got %d",
			e.Algorithm, e.Subject, e.WantLen, e.GotLen)
	}
	return fmt.Sprintf("%s: %s differs at byte %d", e.Algorithm, e.Subject, e.Offset)
}

// =============================================================================
// RESULT
// =============================================================================

// Operation is the kind of round trip performed.
type Operation int

const (
	OperationDigest Operation = iota
	OperationCipher
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	if o == OperationCipher {
		return "cipher"
	}
	return "digest"
}

// RoundTripResult is the result of one digest or cipher check.
type RoundTripResult struct {
	Operation Operation
	Algorithm string
	Succeeded bool
	Detail    string
	// Output is the digest, or the recovered plaintext of a cipher round trip.
	Output     []byte
	Ciphertext []byte
	// Err is an *OperationError or *MismatchError when Succeeded is false.
	Err error
}

func (r RoundTripResult) fail(err error) RoundTripResult {
	r.Succeeded = false
	r.Err = err
	r.Detail = err.Error()
	return r
}

// =============================================================================
// DIGEST CHECK
// =============================================================================

// DigestCheck hashes a fixed input and checks the output is well formed.
type DigestCheck struct {
	Provider  provider.Provider
	Algorithm string
	Input     []byte
}

// Run performs the check. Every handle and session is released on return.
func (c DigestCheck) Run() RoundTripResult {
	res := RoundTripResult{Operation: OperationDigest, Algorithm: c.Algorithm}
	opErr := func(stage Stage, err error) error {
		return &OperationError{Op: "digest", Algorithm: c.Algorithm, Stage: stage, Err: err}
	}

	d, err := c.Provider.FetchDigest(c.Algorithm)
	if err != nil {
		return res.fail(opErr(StageFetch, err))
	}
	defer d.Release()

	s, err := d.Init()
	if err != nil {
		return res.fail(opErr(StageInit, err))
	}
	defer s.Close()

	if err := s.Update(c.Input); err != nil {
		return res.fail(opErr(StageUpdate, err))
	}
	sum, err := s.Final()
	if err != nil {
		return res.fail(opErr(StageFinal, err))
	}

	res.Output = sum
	if len(sum) != d.Size() {
		return res.fail(&MismatchError{
			Algorithm: c.Algorithm,
			Subject:   "digest",
			WantLen:   d.Size(),
			GotLen:    len(sum),
		})
	}

	res.Succeeded = true
	res.Detail = hex.EncodeToString(sum)
	return res
}

// =============================================================================
// CIPHER CHECK
// =============================================================================

// CipherCheck encrypts a fixed plaintext, decrypts the ciphertext and
// requires the original plaintext back byte for byte.
type CipherCheck struct {
	Provider  provider.Provider
	Algorithm string
	Key       []byte
	IV        []byte
	Plaintext []byte
}

// Run performs the check. Every handle and session is released on return.
func (c CipherCheck) Run() RoundTripResult {
	res := RoundTripResult{Operation: OperationCipher, Algorithm: c.Algorithm}

	ciph, err := c.Provider.FetchCipher(c.Algorithm)
	if err != nil {
		return res.fail(&OperationError{Op: "cipher", Algorithm: c.Algorithm, Stage: StageFetch, Err: err})
	}
	defer ciph.Release()

	ct, err := c.transform("encrypt", ciph.InitEncrypt, c.Plaintext)
	if err != nil {
		return res.fail(err)
	}
	res.Ciphertext = ct
	if bs := ciph.BlockSize(); bs > 1 && len(ct)%bs != 0 {
		return res.fail(&OperationError{
			Op:        "encrypt",
			Algorithm: c.Algorithm,
			Stage:     StageFinal,
			Err:       fmt.Errorf("ciphertext length %d is not a multiple of block size %d", len(ct), bs),
		})
	}

	pt, err := c.transform("decrypt", ciph.InitDecrypt, ct)
	if err != nil {
		return res.fail(err)
	}
	res.Output = pt

	if len(pt) != len(c.Plaintext) {
		return res.fail(&MismatchError{
			Algorithm: c.Algorithm,
			Subject:   "recovered plaintext",
			WantLen:   len(c.Plaintext),
			GotLen:    len(pt),
		})
	}
	if !bytes.Equal(pt, c.Plaintext) {
		return res.fail(&MismatchError{
			Algorithm: c.Algorithm,
			Subject:   "recovered plaintext",
			WantLen:   len(c.Plaintext),
			GotLen:    len(pt),
			Offset:    firstDiff(pt, c.Plaintext),
		})
	}

	res.Succeeded = true
	res.Detail = fmt.Sprintf("%d bytes -> %d bytes ciphertext -> %d bytes recovered",
		len(c.Plaintext), len(ct), len(pt))
	return res
}

type initFunc func(key, iv []byte) (provider.CipherSession, error)

// transform runs one session over in, concatenating Update and Final output.
func (c CipherCheck) transform(op string, init initFunc, in []byte) ([]byte, error) {
	opErr := func(stage Stage, err error) error {
		return &OperationError{Op: op, Algorithm: c.Algorithm, Stage: stage, Err: err}
	}

	s, err := init(c.Key, c.IV)
	if err != nil {
		return nil, opErr(StageInit, err)
	}
	defer s.Close()

	out, err := s.Update(in)
	if err != nil {
		return nil, opErr(StageUpdate, err)
	}
	tail, err := s.Final()
	if err != nil {
		return nil, opErr(StageFinal, err)
	}
	return append(out, tail...), nil
}

func firstDiff(a, b []byte) int {
	for i := range a {
		if i >= len(b) || a[i] != b[i] {
			return i
		}
	}
	return len(a)
}
