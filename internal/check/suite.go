// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suite.go - The fixed, ordered list of top-level checks.
//
// Order:
//   1. Compliance mode        (informational, never fails)
//   2. Approved algorithms    (all digests, at least N ciphers)
//   3. Digest operation
//   4. Cipher round trip      (every configured vector)
//   5. Default provider
//   6. Legacy provider        (absence is not a failure)
//   7. Provider ordering
//   8. Algorithm inventory    (at least N available)

package check

import (
	"strings"

	"github.com/sparetools/provider-check/internal/config"
	"github.com/sparetools/provider-check/internal/provider"
	"github.com/sparetools/provider-check/internal/report"
)

// Check names, in run order.
const (
	NameCompliance      = "Compliance mode"
	NameApproved        = "Approved algorithms"
	NameDigest          = "Digest operation"
	NameCipher          = "Cipher round trip"
	NameDefaultProvider = "Default provider"
	NameLegacyProvider  = "Legacy provider"
	NameOrdering        = "Provider ordering"
	NameInventory       = "Algorithm inventory"
)

// Suite returns the checks for p under policy, in their fixed order. Every
// check acquires what it needs from p and releases it before returning.
func Suite(p provider.Provider, policy *config.Policy) []report.Check {
	s := &suite{p: p, policy: policy, probe: NewProbe(p), lifecycle: NewLifecycle(p)}
	return []report.Check{
		{Name: NameCompliance, Run: s.compliance},
		{Name: NameApproved, Run: s.approved},
		{Name: NameDigest, Run: s.digest},
		{Name: NameCipher, Run: s.cipher},
		{Name: NameDefaultProvider, Run: s.defaultProvider},
		{Name: NameLegacyProvider, Run: s.legacyProvider},
		{Name: NameOrdering, Run: s.ordering},
		{Name: NameInventory, Run: s.inventory},
	}
}

type suite struct {
	p         provider.Provider
	policy    *config.Policy
	probe     *Probe
	lifecycle *Lifecycle
}

func (s *suite) compliance() report.Outcome {
	o := report.NewOutcome(NameCompliance)
	res := ComplianceInspector{Provider: s.p, Expect: s.policy.Compliance.Expect}.Check()

	if res.Enabled {
		o.OK("FIPS mode is enabled")
	} else {
		o.Info("FIPS mode is not enabled")
	}
	if !res.Matches {
		o.Warn("expected compliance mode %s", res.Expectation)
	}
	return *o
}

func (s *suite) approved() report.Outcome {
	o := report.NewOutcome(NameApproved)
	a := s.policy.Approved

	digests := s.probe.ProbeAll(Digests(true, a.Digests...))
	noteProbes(o, digests)
	enforce(o, "approved digest", Policy{}.Evaluate(digests))

	ciphers := s.probe.ProbeAll(Ciphers(false, a.Ciphers...))
	noteProbes(o, ciphers)
	enforce(o, "approved cipher", Policy{MinAvailable: a.MinCiphers}.Evaluate(ciphers))
	return *o
}

func (s *suite) digest() report.Outcome {
	o := report.NewOutcome(NameDigest)
	v := s.policy.RoundTrip.Digest

	res := DigestCheck{Provider: s.p, Algorithm: v.Algorithm, Input: []byte(v.Input)}.Run()
	if !res.Succeeded {
		o.Fail("%s", res.Detail)
		return *o
	}
	o.OK("%s(%q) = %s", res.Algorithm, v.Input, res.Detail)
	o.Info("digest length %d bytes", len(res.Output))
	return *o
}

func (s *suite) cipher() report.Outcome {
	o := report.NewOutcome(NameCipher)
	for i, v := range s.policy.RoundTrip.Ciphers {
		key, err := v.KeyBytes()
		if err != nil {
			o.Fail("vector %d (%s): bad key: %v", i, v.Algorithm, err)
			continue
		}
		iv, err := v.IVBytes()
		if err != nil {
			o.Fail("vector %d (%s): bad iv: %v", i, v.Algorithm, err)
			continue
		}

		res := CipherCheck{
			Provider:  s.p,
			Algorithm: v.Algorithm,
			Key:       key,
			IV:        iv,
			Plaintext: []byte(v.Plaintext),
		}.Run()
		if !res.Succeeded {
			o.Fail("%s", res.Detail)
			continue
		}
		o.OK("%s: encrypted %d bytes to %d bytes", res.Algorithm, len(v.Plaintext), len(res.Ciphertext))
		o.OK("%s: decrypted text matches original", res.Algorithm)
	}
	return *o
}

func (s *suite) defaultProvider() report.Outcome {
	o := report.NewOutcome(NameDefaultProvider)
	pair := s.policy.DefaultProvider

	outcomes := s.probe.ProbeAll(append(Digests(true, pair.Digest), Ciphers(true, pair.Cipher)...))
	noteProbes(o, outcomes)
	enforce(o, "default provider algorithm", Policy{}.Evaluate(outcomes))
	return *o
}

func (s *suite) legacyProvider() report.Outcome {
	l := s.policy.Legacy
	return s.lifecycle.WithProvider(l.Provider, func(h *ProviderHandle) report.Outcome {
		o := report.NewOutcome(NameLegacyProvider)
		if h == nil {
			o.Info("legacy algorithms are not offered by this build")
			return *o
		}

		o.OK("loaded provider %s", h.Name())
		res := s.probe.Probe(AlgorithmSpec{Name: l.ProbeDigest, Kind: KindDigest})
		switch {
		case res.Available:
			o.Info("%s available through %s", l.ProbeDigest, h.Name())
		case res.Faulted():
			o.Warn("%s lookup failed: %v", l.ProbeDigest, res.Err)
		default:
			o.Warn("%s not available through %s", l.ProbeDigest, h.Name())
		}
		return *o
	})
}

// ordering checks that loading the optional provider after the default one
// does not hide the default algorithms.
func (s *suite) ordering() (outcome report.Outcome) {
	o := report.NewOutcome(NameOrdering)
	pair := s.policy.Ordering

	h, err := s.lifecycle.Open(s.policy.Legacy.Provider)
	if err != nil {
		o.Info("provider %s not loaded, checking default search order only", s.policy.Legacy.Provider)
	} else {
		defer func() {
			if err := h.Close(); err != nil {
				outcome.Fail("unload provider %s: %v", h.Name(), err)
			}
		}()
	}
	o.Info("search order: %s", s.p.VersionString(provider.VersionModules))

	outcomes := s.probe.ProbeAll(append(Digests(true, pair.Digest), Ciphers(true, pair.Cipher)...))
	noteProbes(o, outcomes)
	enforce(o, "algorithm", Policy{}.Evaluate(outcomes))
	return *o
}

func (s *suite) inventory() report.Outcome {
	o := report.NewOutcome(NameInventory)
	inv := s.policy.Inventory

	outcomes := s.probe.ProbeAll(append(Digests(false, inv.Digests...), Ciphers(false, inv.Ciphers...)...))
	noteProbes(o, outcomes)
	ev := Policy{MinAvailable: inv.MinAvailable}.Evaluate(outcomes)
	o.Info("%d/%d algorithms available", ev.Available, ev.Total)
	enforce(o, "algorithm", ev)
	return *o
}

// =============================================================================
// HELPERS
// =============================================================================

// noteProbes adds one line per probed algorithm.
func noteProbes(o *report.Outcome, outcomes []ProbeOutcome) {
	for _, r := range outcomes {
		switch {
		case r.Available:
			o.OK("%s %s available", r.Spec.Kind, r.Spec.Name)
		case r.Faulted():
			o.Warn("%s %s lookup failed: %v", r.Spec.Kind, r.Spec.Name, r.Err)
		case r.Spec.Required:
			o.Warn("%s %s not available", r.Spec.Kind, r.Spec.Name)
		default:
			o.Info("%s %s not available", r.Spec.Kind, r.Spec.Name)
		}
	}
}

// enforce fails o with a line per violated rule of ev.
func enforce(o *report.Outcome, what string, ev Evaluation) {
	if len(ev.MissingRequired) > 0 {
		o.Fail("required %s not available: %s", what, strings.Join(ev.MissingRequired, ", "))
	}
	for _, f := range ev.Faults {
		o.Fail("%s %s: %v", what, f.Spec.Name, f.Err)
	}
	if ev.Available < ev.MinAvailable {
		o.Fail("only %d of %d %ss available, need at least %d: missing %s",
			ev.Available, ev.Total, what, ev.MinAvailable, strings.Join(ev.Missing, ", "))
	}
}
