// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package check

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sparetools/provider-check/internal/provider"
	"github.com/sparetools/provider-check/internal/report"
)

func TestWithProvider_LoadUseUnload(t *testing.T) {
	lib := provider.New(provider.WithComplianceMode(false))
	lc := NewLifecycle(lib)

	var seen *ProviderHandle
	out := lc.WithProvider(provider.ModuleLegacy, func(h *ProviderHandle) report.Outcome {
		require.NotNil(t, h)
		require.Equal(t, Loaded, h.State())
		require.True(t, NewProbe(lib).Probe(AlgorithmSpec{Name: "MD4", Kind: KindDigest}).Available)
		seen = h
		return *report.NewOutcome("legacy")
	})

	require.True(t, out.Passed)
	require.Equal(t, Unloaded, seen.State())
	require.Zero(t, lib.Outstanding())
	require.False(t, NewProbe(lib).Probe(AlgorithmSpec{Name: "MD4", Kind: KindDigest}).Available)
}

func TestWithProvider_AbsentIsNotFailure(t *testing.T) {
	for _, tc := range []struct {
		name string
		lib  *provider.Library
		mod  string
	}{
		{"nonexistent", provider.New(), "nonexistent"},
		{"build without legacy", provider.New(provider.WithoutModules(provider.ModuleLegacy)), provider.ModuleLegacy},
		{"compliance refuses legacy", provider.New(provider.WithComplianceMode(true)), provider.ModuleLegacy},
	} {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			out := NewLifecycle(tc.lib).WithProvider(tc.mod, func(h *ProviderHandle) report.Outcome {
				called = true
				require.Nil(t, h)
				o := report.NewOutcome("optional")
				o.Fail("body treated absence as failure")
				return *o
			})

			require.True(t, called)
			require.True(t, out.Passed)
			require.Equal(t, report.LevelInfo, out.Notes[0].Level)
			require.Contains(t, out.Notes[0].Text, tc.mod)
			require.Zero(t, tc.lib.Outstanding())
		})
	}
}

func TestWithProvider_FailedBodyStillUnloads(t *testing.T) {
	lib := provider.New(provider.WithComplianceMode(false))
	fp := &faultyProvider{Provider: lib}

	out := NewLifecycle(fp).WithProvider(provider.ModuleLegacy, func(h *ProviderHandle) report.Outcome {
		o := report.NewOutcome("legacy")
		o.Fail("early failure")
		return *o
	})

	require.False(t, out.Passed)
	require.Equal(t, 1, fp.unloads)
	require.Zero(t, lib.Outstanding())
}

func TestWithProvider_PanicStillUnloads(t *testing.T) {
	lib := provider.New(provider.WithComplianceMode(false))
	fp := &faultyProvider{Provider: lib}

	require.Panics(t, func() {
		NewLifecycle(fp).WithProvider(provider.ModuleLegacy, func(h *ProviderHandle) report.Outcome {
			panic("body exploded")
		})
	})
	require.Equal(t, 1, fp.unloads)
	require.Zero(t, lib.Outstanding())
}

func TestWithProvider_BodyCloseIsNotRepeated(t *testing.T) {
	lib := provider.New(provider.WithComplianceMode(false))
	fp := &faultyProvider{Provider: lib}

	out := NewLifecycle(fp).WithProvider(provider.ModuleLegacy, func(h *ProviderHandle) report.Outcome {
		require.NoError(t, h.Close())
		require.NoError(t, h.Close())
		return *report.NewOutcome("legacy")
	})

	require.True(t, out.Passed)
	require.Equal(t, 1, fp.unloads)
	require.Zero(t, lib.Outstanding())
}

func TestWithProvider_UnloadErrorFails(t *testing.T) {
	lib := provider.New(provider.WithComplianceMode(false))
	fp := &faultyProvider{Provider: lib, unloadErr: errors.New("module busy")}

	out := NewLifecycle(fp).WithProvider(provider.ModuleLegacy, func(h *ProviderHandle) report.Outcome {
		return *report.NewOutcome("legacy")
	})

	require.False(t, out.Passed)
	require.Contains(t, out.Errors()[0], "module busy")
}

func TestHandleStateString(t *testing.T) {
	require.Equal(t, "loaded", Loaded.String())
	require.Equal(t, "unloaded", Unloaded.String())
}
