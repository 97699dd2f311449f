// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultPolicy []byte

// =============================================================================
// POLICY STRUCTURES
// =============================================================================

// Policy is the complete verification policy.
type Policy struct {
	Compliance      ComplianceConfig `toml:"compliance"`
	Approved        ApprovedConfig   `toml:"approved"`
	DefaultProvider PairConfig       `toml:"default_provider"`
	Legacy          LegacyConfig     `toml:"legacy"`
	Ordering        PairConfig       `toml:"ordering"`
	Inventory       InventoryConfig  `toml:"inventory"`
	RoundTrip       RoundTripConfig  `toml:"round_trip"`
}

// Compliance expectations.
const (
	ExpectAny      = "any"
	ExpectEnabled  = "enabled"
	ExpectDisabled = "disabled"
)

// ComplianceConfig holds the expected compliance-mode state.
type ComplianceConfig struct {
	Expect string `toml:"expect"`
}

// ApprovedConfig lists the FIPS-approved algorithms. Every digest is
// required; at least MinCiphers of the ciphers must be available.
type ApprovedConfig struct {
	Digests    []string `toml:"digests"`
	Ciphers    []string `toml:"ciphers"`
	MinCiphers int      `toml:"min_ciphers"`
}

// PairConfig names one required digest and one required cipher.
type PairConfig struct {
	Digest string `toml:"digest"`
	Cipher string `toml:"cipher"`
}

// LegacyConfig names the optional provider and the deprecated digest probed
// once it is loaded.
type LegacyConfig struct {
	Provider    string `toml:"provider"`
	ProbeDigest string `toml:"probe_digest"`
}

// InventoryConfig is a mixed list of optional algorithms with a threshold.
type InventoryConfig struct {
	Digests      []string `toml:"digests"`
	Ciphers      []string `toml:"ciphers"`
	MinAvailable int      `toml:"min_available"`
}

// RoundTripConfig holds the fixed vectors for the operation checks.
type RoundTripConfig struct {
	Digest  DigestVector   `toml:"digest"`
	Ciphers []CipherVector `toml:"cipher"`
}

// DigestVector is a digest algorithm and its input.
type DigestVector struct {
	Algorithm string `toml:"algorithm"`
	Input     string `toml:"input"`
}

// CipherVector is a cipher with plaintext, hex key and hex IV.
type CipherVector struct {
	Algorithm string `toml:"algorithm"`
	Plaintext string `toml:"plaintext"`
	Key       string `toml:"key"`
	IV        string `toml:"iv"`
}

// KeyBytes decodes the hex key.
func (v CipherVector) KeyBytes() ([]byte, error) {
	return hex.DecodeString(v.Key)
}

// IVBytes decodes the hex IV. An empty IV decodes to no bytes.
func (v CipherVector) IVBytes() ([]byte, error) {
	return hex.DecodeString(v.IV)
}

// =============================================================================
// LOADING
// =============================================================================

// Load returns the built-in policy.
func Load() (*Policy, error) {
	p, err := Parse(defaultPolicy)
	if err != nil {
		return nil, fmt.Errorf("built-in policy: %w", err)
	}
	return p, nil
}

// Parse decodes and validates a TOML policy document. Unknown keys are
// rejected so a misspelled threshold cannot silently fall back to zero.
func Parse(data []byte) (*Policy, error) {
	var p Policy
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return nil, fmt.Errorf("failed to decode TOML policy: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown policy keys: %s", strings.Join(keys, ", "))
	}
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return &p, nil
}

// SetDefaults fills optional fields left empty.
func (p *Policy) SetDefaults() {
	if p.Compliance.Expect == "" {
		p.Compliance.Expect = ExpectAny
	}
	if p.Legacy.Provider == "" {
		p.Legacy.Provider = "legacy"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a policy validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ErrEmptyName is reported for blank algorithm names.
var ErrEmptyName = errors.New("algorithm name is empty")

// Validate checks the policy and returns every problem found.
func (p *Policy) Validate() error {
	var errs ValidateErrors

	switch p.Compliance.Expect {
	case ExpectAny, ExpectEnabled, ExpectDisabled:
	default:
		errs = append(errs, ValidationError{
			Field:   "compliance.expect",
			Message: fmt.Sprintf("invalid value '%s', must be one of: any, enabled, disabled", p.Compliance.Expect),
		})
	}

	errs = append(errs, checkNames("approved.digests", p.Approved.Digests)...)
	errs = append(errs, checkNames("approved.ciphers", p.Approved.Ciphers)...)
	if len(p.Approved.Digests) == 0 {
		errs = append(errs, ValidationError{Field: "approved.digests", Message: "at least one digest is required"})
	}
	errs = append(errs, checkThreshold("approved.min_ciphers", p.Approved.MinCiphers, len(p.Approved.Ciphers))...)

	errs = append(errs, checkNames("default_provider", []string{p.DefaultProvider.Digest, p.DefaultProvider.Cipher})...)
	errs = append(errs, checkNames("ordering", []string{p.Ordering.Digest, p.Ordering.Cipher})...)
	errs = append(errs, checkNames("legacy.probe_digest", []string{p.Legacy.ProbeDigest})...)

	errs = append(errs, checkNames("inventory.digests", p.Inventory.Digests)...)
	errs = append(errs, checkNames("inventory.ciphers", p.Inventory.Ciphers)...)
	errs = append(errs, checkThreshold("inventory.min_available", p.Inventory.MinAvailable,
		len(p.Inventory.Digests)+len(p.Inventory.Ciphers))...)

	errs = append(errs, checkNames("round_trip.digest.algorithm", []string{p.RoundTrip.Digest.Algorithm})...)
	if len(p.RoundTrip.Ciphers) == 0 {
		errs = append(errs, ValidationError{Field: "round_trip.cipher", Message: "at least one cipher vector is required"})
	}
	for i, v := range p.RoundTrip.Ciphers {
		field := fmt.Sprintf("round_trip.cipher[%d]", i)
		errs = append(errs, checkNames(field+".algorithm", []string{v.Algorithm})...)
		if _, err := v.KeyBytes(); err != nil || v.Key == "" {
			errs = append(errs, ValidationError{Field: field + ".key", Message: "must be non-empty hex"})
		}
		if _, err := v.IVBytes(); err != nil {
			errs = append(errs, ValidationError{Field: field + ".iv", Message: "must be hex"})
		}
		if v.Plaintext == "" {
			errs = append(errs, ValidationError{Field: field + ".plaintext", Message: "must not be empty"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkNames(field string, names []string) ValidateErrors {
	var errs ValidateErrors
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Message: ErrEmptyName.Error()})
		}
	}
	return errs
}

func checkThreshold(field string, floor, total int) ValidateErrors {
	if floor < 0 || floor > total {
		return ValidateErrors{{
			Field:   field,
			Message: fmt.Sprintf("must be between 0 and %d, got %d", total, floor),
		}}
	}
	return nil
}
