// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package check

import (
	"github.com/sparetools/provider-check/internal/config"
	"github.com/sparetools/provider-check/internal/provider"
)

// ComplianceResult is the observed compliance mode against the expectation.
type ComplianceResult struct {
	Enabled     bool
	Expectation string
	Matches     bool
}

// ComplianceInspector reads the provider's compliance flag.
type ComplianceInspector struct {
	Provider provider.Provider
	// Expect is one of config.ExpectAny, ExpectEnabled or ExpectDisabled.
	// Empty means any.
	Expect string
}

// Check queries the flag. The result is informational only.
func (c ComplianceInspector) Check() ComplianceResult {
	res := ComplianceResult{
		Enabled:     c.Provider.ComplianceMode(),
		Expectation: c.Expect,
	}
	if res.Expectation == "" {
		res.Expectation = config.ExpectAny
	}

	switch res.Expectation {
	case config.ExpectEnabled:
		res.Matches = res.Enabled
	case config.ExpectDisabled:
		res.Matches = !res.Enabled
	default:
		res.Matches = true
	}
	return res
}
