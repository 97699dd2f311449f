// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package check implements the individual verifications run against a
// provider: capability probing, optional provider lifecycle, round-trip
// operations and compliance-mode inspection, plus the fixed suite that
// combines them.
package check

import (
	"errors"
	"fmt"

	"github.com/sparetools/provider-check/internal/provider"
)

// =============================================================================
// ALGORITHM SPECS
// =============================================================================

// Kind is the algorithm family a spec names.
type Kind int

const (
	// KindDigest is a message digest.
	KindDigest Kind = iota
	// KindCipher is a symmetric cipher.
	KindCipher
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDigest:
		return "digest"
	case KindCipher:
		return "cipher"
	default:
		return "unknown"
	}
}

// AlgorithmSpec names one algorithm to probe.
type AlgorithmSpec struct {
	Name     string
	Kind     Kind
	Required bool
}

// Digests builds digest specs in the given order.
func Digests(required bool, names ...string) []AlgorithmSpec {
	return specs(KindDigest, required, names)
}

// Ciphers builds cipher specs in the given order.
func Ciphers(required bool, names ...string) []AlgorithmSpec {
	return specs(KindCipher, required, names)
}

func specs(kind Kind, required bool, names []string) []AlgorithmSpec {
	out := make([]AlgorithmSpec, len(names))
	for i, n := range names {
		out[i] = AlgorithmSpec{Name: n, Kind: kind, Required: required}
	}
	return out
}

// =============================================================================
// PROBE
// =============================================================================

// ProbeOutcome is the availability of one spec. Err is set only when the
// provider failed in a way other than reporting the algorithm unavailable.
type ProbeOutcome struct {
	Spec      AlgorithmSpec
	Available bool
	Err       error
}

// Faulted reports whether the lookup failed unexpectedly.
func (o ProbeOutcome) Faulted() bool {
	return o.Err != nil
}

// Probe asks a provider whether algorithms can be instantiated. It performs
// no operation with them.
type Probe struct {
	p provider.Provider
}

// NewProbe creates a probe over p.
func NewProbe(p provider.Provider) *Probe {
	return &Probe{p: p}
}

// Probe looks up a single algorithm. Any handle obtained is released before
// Probe returns.
func (pr *Probe) Probe(spec AlgorithmSpec) ProbeOutcome {
	out := ProbeOutcome{Spec: spec}

	var err error
	switch spec.Kind {
	case KindDigest:
		var d provider.Digest
		if d, err = pr.p.FetchDigest(spec.Name); err == nil {
			defer d.Release()
		}
	case KindCipher:
		var c provider.Cipher
		if c, err = pr.p.FetchCipher(spec.Name); err == nil {
			defer c.Release()
		}
	default:
		err = fmt.Errorf("probe %q: unknown algorithm kind %d", spec.Name, int(spec.Kind))
	}

	switch {
	case err == nil:
		out.Available = true
	case errors.Is(err, provider.ErrUnavailable):
	default:
		out.Err = err
	}
	return out
}

// ProbeAll probes every spec and returns one outcome per spec, in order.
func (pr *Probe) ProbeAll(specs []AlgorithmSpec) []ProbeOutcome {
	outcomes := make([]ProbeOutcome, len(specs))
	for i, s := range specs {
		outcomes[i] = pr.Probe(s)
	}
	return outcomes
}

// =============================================================================
// POLICY
// =============================================================================

// Policy decides whether a batch of probe outcomes is acceptable: every
// required spec must be available and at least MinAvailable specs overall.
// A faulted lookup always fails the batch.
type Policy struct {
	MinAvailable int
}

// Evaluation is the verdict of a Policy over one batch.
type Evaluation struct {
	Available       int
	Total           int
	MinAvailable    int
	MissingRequired []string
	Missing         []string
	Faults          []ProbeOutcome
}

// Passed reports whether the batch satisfied the policy.
func (e Evaluation) Passed() bool {
	return len(e.MissingRequired) == 0 && len(e.Faults) == 0 && e.Available >= e.MinAvailable
}

// Evaluate applies the policy to outcomes.
func (p Policy) Evaluate(outcomes []ProbeOutcome) Evaluation {
	ev := Evaluation{Total: len(outcomes), MinAvailable: p.MinAvailable}
	for _, o := range outcomes {
		switch {
		case o.Available:
			ev.Available++
			continue
		case o.Faulted():
			ev.Faults = append(ev.Faults, o)
		}
		ev.Missing = append(ev.Missing, o.Spec.Name)
		if o.Spec.Required {
			ev.MissingRequired = append(ev.MissingRequired, o.Spec.Name)
		}
	}
	return ev
}
