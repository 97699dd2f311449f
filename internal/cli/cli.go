// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Entry point for the provider-check executable.

package cli

import (
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/sparetools/provider-check/internal/check"
	"github.com/sparetools/provider-check/internal/config"
	"github.com/sparetools/provider-check/internal/provider"
	"github.com/sparetools/provider-check/internal/report"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Run verifies the default provider and returns the process exit code.
func Run(stdout, stderr io.Writer) int {
	return run(stdout, stderr, provider.New())
}

func run(stdout, stderr io.Writer, p provider.Provider) int {
	logger := log.New(stderr, "provider-check: ", log.LstdFlags)

	policy, err := config.Load()
	if err != nil {
		logger.Printf("POLICY_INVALID | error=%v", err)
		DisplayError(stderr, NewCommandError("load policy", "built-in policy is invalid", err))
		return report.ExitFailure
	}

	runID := uuid.NewString()
	r := report.NewRenderer(stdout, report.ProfileFor(stdout))
	r.Banner("Provider Verification",
		report.Field{Label: "Tool", Value: Version + " (" + GitCommit + ", " + BuildDate + ")"},
		report.Field{Label: "Provider", Value: p.VersionString(provider.VersionFull)},
		report.Field{Label: "Built on", Value: p.VersionString(provider.VersionBuiltOn)},
		report.Field{Label: "Platform", Value: p.VersionString(provider.VersionPlatform)},
		report.Field{Label: "Modules", Value: p.VersionString(provider.VersionModules)},
		report.Field{Label: "Run ID", Value: runID},
	)

	summary := report.NewAggregator(check.Suite(p, policy),
		report.WithRenderer(r),
		report.WithLogger(logger),
		report.WithRunID(runID),
	).RunAll()

	logger.Printf("RUN_COMPLETE | run=%s status=%s %s duration=%s",
		summary.RunID, summary.Status(), report.Describe(summary), summary.Duration)
	return summary.ExitCode()
}
