// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package check

import (
	"github.com/sparetools/provider-check/internal/provider"
	"github.com/sparetools/provider-check/internal/report"
)

// HandleState is the state of an optional provider handle.
type HandleState int

const (
	// Unloaded is the initial and final state.
	Unloaded HandleState = iota
	// Loaded means the module is in the provider's search path.
	Loaded
)

// String returns the string representation of the state.
func (s HandleState) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "unloaded"
}

// ProviderHandle is an optional module loaded for the duration of one check.
type ProviderHandle struct {
	name   string
	p      provider.Provider
	module provider.Module
	state  HandleState
}

// Name returns the requested provider name.
func (h *ProviderHandle) Name() string { return h.name }

// State returns the current handle state.
func (h *ProviderHandle) State() HandleState { return h.state }

// Close unloads the module. Only the first call reaches the provider.
func (h *ProviderHandle) Close() error {
	if h.state != Loaded {
		return nil
	}
	h.state = Unloaded
	return h.p.UnloadProvider(h.module)
}

// Lifecycle loads and unloads optional provider modules.
type Lifecycle struct {
	p provider.Provider
}

// NewLifecycle creates a lifecycle manager over p.
func NewLifecycle(p provider.Provider) *Lifecycle {
	return &Lifecycle{p: p}
}

// Open loads the named module. The caller must Close the handle.
func (l *Lifecycle) Open(name string) (*ProviderHandle, error) {
	mod, err := l.p.LoadProvider(name)
	if err != nil {
		return nil, err
	}
	return &ProviderHandle{name: name, p: l.p, module: mod, state: Loaded}, nil
}

// WithProvider runs body with the named module loaded and unloads it before
// returning, on every path including a panic in body.
//
// If the module cannot be loaded, body is called with a nil handle and the
// resulting outcome always passes: an absent optional provider is not a
// failure. A failed unload fails the outcome.
func (l *Lifecycle) WithProvider(name string, body func(h *ProviderHandle) report.Outcome) (outcome report.Outcome) {
	h, err := l.Open(name)
	if err != nil {
		outcome = body(nil)
		outcome.Notes = append([]report.Note{{
			Level: report.LevelInfo,
			Text:  "provider " + name + " not available: " + err.Error(),
		}}, outcome.Notes...)
		outcome.Passed = true
		return outcome
	}

	defer func() {
		if err := h.Close(); err != nil {
			outcome.Fail("unload provider %s: %v", name, err)
			return
		}
		outcome.Notes = append(outcome.Notes, report.Note{
			Level: report.LevelOK,
			Text:  "unloaded provider " + name,
		})
	}()

	return body(h)
}
