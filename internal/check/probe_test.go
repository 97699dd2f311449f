// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package check

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sparetools/provider-check/internal/provider"
)

func TestProbe_KnownAndUnknown(t *testing.T) {
	lib := provider.New(provider.WithComplianceMode(true))
	pr := NewProbe(lib)

	got := pr.Probe(AlgorithmSpec{Name: "SHA2-256", Kind: KindDigest, Required: true})
	require.True(t, got.Available)
	require.NoError(t, got.Err)

	got = pr.Probe(AlgorithmSpec{Name: "NOT-A-REAL-ALGO", Kind: KindDigest})
	require.False(t, got.Available)
	require.NoError(t, got.Err, "an unknown name is not a fault")
	require.False(t, got.Faulted())

	require.Zero(t, lib.Outstanding())
}

func TestProbe_ApprovedDigestsOnCompliantProvider(t *testing.T) {
	lib := provider.New(provider.WithComplianceMode(true))
	pr := NewProbe(lib)

	for _, o := range pr.ProbeAll(Digests(true, "SHA2-256", "SHA2-384", "SHA2-512", "SHA3-256", "SHA3-384")) {
		require.True(t, o.Available, o.Spec.Name)
	}
	require.Zero(t, lib.Outstanding())
}

func TestProbe_KindMatters(t *testing.T) {
	pr := NewProbe(provider.New(provider.WithComplianceMode(false)))

	require.True(t, pr.Probe(AlgorithmSpec{Name: "AES-256-GCM", Kind: KindCipher}).Available)
	require.False(t, pr.Probe(AlgorithmSpec{Name: "AES-256-GCM", Kind: KindDigest}).Available)
}

func TestProbe_UnknownKindIsFault(t *testing.T) {
	got := NewProbe(provider.New()).Probe(AlgorithmSpec{Name: "SHA2-256", Kind: Kind(9)})
	require.False(t, got.Available)
	require.True(t, got.Faulted())
}

func TestProbe_ProviderFaultIsTagged(t *testing.T) {
	lib := provider.New(provider.WithComplianceMode(false))
	pr := NewProbe(&faultyProvider{Provider: lib, fetchErr: errInjected})

	got := pr.Probe(AlgorithmSpec{Name: "SHA2-256", Kind: KindDigest, Required: true})
	require.False(t, got.Available)
	require.True(t, errors.Is(got.Err, errInjected))
}

func TestProbeAll_PreservesOrder(t *testing.T) {
	lib := provider.New(provider.WithComplianceMode(false))
	specs := append(Digests(true, "SHA2-256", "NOPE"), Ciphers(false, "AES-128-CBC", "NOPE-CBC")...)

	outcomes := NewProbe(lib).ProbeAll(specs)
	require.Len(t, outcomes, len(specs))
	for i, o := range outcomes {
		require.Equal(t, specs[i], o.Spec)
	}
	require.Equal(t, []bool{true, false, true, false},
		[]bool{outcomes[0].Available, outcomes[1].Available, outcomes[2].Available, outcomes[3].Available})
	require.Zero(t, lib.Outstanding())
}

func TestProbe_MaskedAlgorithm(t *testing.T) {
	lib := provider.New(provider.WithoutAlgorithms("SHA2-256"))
	require.False(t, NewProbe(lib).Probe(AlgorithmSpec{Name: "SHA2-256", Kind: KindDigest}).Available)
}

func TestPolicy_Evaluate(t *testing.T) {
	avail := func(name string, required bool) ProbeOutcome {
		return ProbeOutcome{Spec: AlgorithmSpec{Name: name, Required: required}, Available: true}
	}
	missing := func(name string, required bool) ProbeOutcome {
		return ProbeOutcome{Spec: AlgorithmSpec{Name: name, Required: required}}
	}

	tests := []struct {
		name     string
		min      int
		outcomes []ProbeOutcome
		pass     bool
		required []string
	}{
		{"all required present", 0, []ProbeOutcome{avail("a", true), avail("b", true)}, true, nil},
		{"required missing", 0, []ProbeOutcome{avail("a", true), missing("b", true)}, false, []string{"b"}},
		{"four of five", 4, []ProbeOutcome{avail("a", false), avail("b", false), avail("c", false), avail("d", false), missing("e", false)}, true, nil},
		{"three of five", 4, []ProbeOutcome{avail("a", false), avail("b", false), avail("c", false), missing("d", false), missing("e", false)}, false, nil},
		{"empty batch", 0, nil, true, nil},
		{"fault fails", 0, []ProbeOutcome{{Spec: AlgorithmSpec{Name: "x"}, Err: errInjected}}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Policy{MinAvailable: tt.min}.Evaluate(tt.outcomes)
			require.Equal(t, tt.pass, ev.Passed())
			require.Equal(t, tt.required, ev.MissingRequired)
			require.Equal(t, len(tt.outcomes), ev.Total)
		})
	}
}

func TestKindString(t *testing.T) {
	require.Equal(t, "digest", KindDigest.String())
	require.Equal(t, "cipher", KindCipher.String())
	require.Equal(t, "unknown", Kind(7).String())
}
