// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import "errors"

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnavailable reports that a named algorithm cannot be instantiated.
	// It is an expected outcome of a lookup, not a fault.
	ErrUnavailable = errors.New("algorithm not available")

	// ErrProviderNotFound reports that a named module cannot be loaded.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrNotApproved reports that compliance mode refused a request.
	ErrNotApproved = errors.New("not permitted in compliance mode")

	// ErrNotLoaded is returned when unloading a module that is not loaded.
	ErrNotLoaded = errors.New("provider not loaded")

	// ErrSessionDone is returned when a session is used after Final or Close.
	ErrSessionDone = errors.New("session already finished")

	// ErrBadDecrypt reports a malformed final block or invalid padding.
	ErrBadDecrypt = errors.New("bad decrypt")
)

// =============================================================================
// INTERFACES
// =============================================================================

// Provider is the lookup and lifecycle surface of a cryptographic provider.
type Provider interface {
	// FetchDigest returns a handle for the named digest, or ErrUnavailable.
	FetchDigest(name string) (Digest, error)
	// FetchCipher returns a handle for the named cipher, or ErrUnavailable.
	FetchCipher(name string) (Cipher, error)
	// LoadProvider loads an optional module by name.
	LoadProvider(name string) (Module, error)
	// UnloadProvider unloads a module returned by LoadProvider.
	UnloadProvider(m Module) error
	// ComplianceMode reports whether the provider runs in FIPS mode.
	ComplianceMode() bool
	// VersionString returns informational build details.
	VersionString(kind VersionKind) string
}

// Digest is a fetched digest algorithm.
type Digest interface {
	Name() string
	// Size is the declared output length in bytes.
	Size() int
	BlockSize() int
	// Init starts a new digest context.
	Init() (DigestSession, error)
	// Release frees the handle. Calling it more than once is a no-op.
	Release()
}

// DigestSession is an initialised digest context.
type DigestSession interface {
	Update(p []byte) error
	// Final returns the digest. The session cannot be updated afterwards.
	Final() ([]byte, error)
	Close()
}

// Cipher is a fetched symmetric cipher.
type Cipher interface {
	Name() string
	KeySize() int
	IVSize() int
	// BlockSize is 1 for stream and AEAD ciphers.
	BlockSize() int
	InitEncrypt(key, iv []byte) (CipherSession, error)
	InitDecrypt(key, iv []byte) (CipherSession, error)
	Release()
}

// CipherSession is an initialised cipher context. Update may return fewer
// bytes than it was given; Final flushes whatever was held back.
type CipherSession interface {
	Update(in []byte) ([]byte, error)
	Final() ([]byte, error)
	Close()
}

// Module is a loaded provider module.
type Module interface {
	Name() string
}

// VersionKind selects the string returned by VersionString.
type VersionKind int

const (
	// VersionFull is the provider name and version.
	VersionFull VersionKind = iota
	// VersionBuiltOn is the build timestamp, when known.
	VersionBuiltOn
	// VersionPlatform is the target platform and hardware acceleration.
	VersionPlatform
	// VersionModules lists the loaded modules in search order.
	VersionModules
)

// String returns the string representation of the version kind.
func (k VersionKind) String() string {
	switch k {
	case VersionFull:
		return "version"
	case VersionBuiltOn:
		return "built on"
	case VersionPlatform:
		return "platform"
	case VersionModules:
		return "modules"
	default:
		return "unknown"
	}
}
