// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides the verification policy for provider-check.
//
// The policy names the algorithms each check probes, the availability
// thresholds it enforces and the fixed vectors used by the round-trip checks.
// The built-in policy is a TOML document compiled into the binary, so a run
// reads no files and consults no environment variables.
//
// # Key Types
//
//   - Policy: The complete policy, one section per check
//   - DigestVector, CipherVector: Fixed inputs for the round-trip checks
//
// # Usage
//
// Load the built-in policy:
//
//	policy, err := config.Load()
//	if err != nil {
//	    return err
//	}
//
// Library callers may supply their own document, for example to raise the
// approved-cipher threshold:
//
//	policy, err := config.Parse([]byte(doc))
package config
