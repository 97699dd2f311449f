// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider implements the cryptographic provider certified by
// provider-check.
//
// A Library exposes digests and ciphers by name through a dynamic lookup
// interface, in the manner of an OpenSSL 3 library context:
//
//	lib := provider.New()
//	md, err := lib.FetchDigest("SHA2-256")
//	if errors.Is(err, provider.ErrUnavailable) {
//	    // not an error: the algorithm is simply absent
//	}
//	defer md.Release()
//
// # Modules
//
// Algorithms are grouped into modules. The "default" module is always loaded.
// The "legacy" module carries deprecated algorithms (MD4, RIPEMD-160, DES,
// Blowfish, CAST5, RC4) and must be loaded explicitly:
//
//	legacy, err := lib.LoadProvider("legacy")
//	if err == nil {
//	    defer lib.UnloadProvider(legacy)
//	}
//
// # Compliance Mode
//
// When compliance (FIPS) mode is on, only FIPS-approved algorithms are
// visible and the legacy module cannot be loaded. The initial state follows
// the Go runtime's FIPS 140-3 module (GODEBUG=fips140=on).
//
// # Resource Accounting
//
// Every handle, session and explicitly loaded module is counted until it is
// released. Outstanding reports the count, which must be zero once a caller
// has cleaned up after itself.
package provider
