// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func passing(name string) Check {
	return Check{Name: name, Run: func() Outcome {
		o := NewOutcome(name)
		o.OK("%s worked", name)
		return *o
	}}
}

func failing(name, reason string) Check {
	return Check{Name: name, Run: func() Outcome {
		o := NewOutcome(name)
		o.Fail("%s", reason)
		return *o
	}}
}

// =============================================================================
// AGGREGATE LAW TESTS
// =============================================================================

func TestRunAll_AllPass(t *testing.T) {
	s := NewAggregator([]Check{passing("a"), passing("b")}).RunAll()

	require.Equal(t, 2, s.Passed)
	require.Zero(t, s.Failed)
	require.Equal(t, StatusSuccess, s.Status())
	require.Equal(t, ExitSuccess, s.ExitCode())
	require.NotEmpty(t, s.RunID)
}

func TestRunAll_RunIDOption(t *testing.T) {
	s := NewAggregator(nil, WithRunID("fixed-id")).RunAll()
	require.Equal(t, "fixed-id", s.RunID)

	a, b := NewAggregator(nil).RunAll(), NewAggregator(nil).RunAll()
	require.NotEqual(t, a.RunID, b.RunID)
}

func TestRunAll_NoFailFast(t *testing.T) {
	var ran []string
	track := func(c Check) Check {
		inner := c.Run
		c.Run = func() Outcome {
			ran = append(ran, c.Name)
			return inner()
		}
		return c
	}

	s := NewAggregator([]Check{
		track(failing("first", "boom")),
		track(passing("second")),
		track(failing("third", "bang")),
	}).RunAll()

	require.Equal(t, []string{"first", "second", "third"}, ran)
	require.Equal(t, 1, s.Passed)
	require.Equal(t, 2, s.Failed)
	require.Equal(t, StatusFailure, s.Status())
	require.Equal(t, ExitFailure, s.ExitCode())
	require.Equal(t, []string{"first", "third"}, s.FailedNames())
}

func TestRunAll_ExitCodeIffFailures(t *testing.T) {
	for _, tc := range []struct {
		checks []Check
		want   int
	}{
		{nil, ExitSuccess},
		{[]Check{passing("a")}, ExitSuccess},
		{[]Check{failing("a", "x")}, ExitFailure},
		{[]Check{passing("a"), failing("b", "x"), passing("c")}, ExitFailure},
	} {
		s := NewAggregator(tc.checks).RunAll()
		require.Equal(t, tc.want, s.ExitCode())
		require.Equal(t, tc.want != ExitSuccess, s.Failed > 0)
	}
}

func TestRunAll_PanicIsIsolated(t *testing.T) {
	var logs bytes.Buffer
	s := NewAggregator([]Check{
		{Name: "explodes", Run: func() Outcome { panic("provider crashed") }},
		passing("after"),
	}, WithLogger(log.New(&logs, "", 0))).RunAll()

	require.Len(t, s.Results, 2)
	require.False(t, s.Results[0].Passed)
	require.Equal(t, "explodes", s.Results[0].Name)
	require.Contains(t, s.Results[0].Errors()[0], "provider crashed")
	require.True(t, s.Results[1].Passed)
	require.Contains(t, logs.String(), "CHECK_PANIC")
}

func TestRunAll_NameComesFromRegistration(t *testing.T) {
	s := NewAggregator([]Check{
		{Name: "registered", Run: func() Outcome { return Outcome{Name: "other", Passed: true} }},
		{Name: "nil run"},
	}).RunAll()

	require.Equal(t, "registered", s.Results[0].Name)
	require.False(t, s.Results[1].Passed)
}

func TestRunAll_LogsFailures(t *testing.T) {
	var logs bytes.Buffer
	NewAggregator([]Check{failing("digest", "SHA2-256 not available")},
		WithLogger(log.New(&logs, "", 0))).RunAll()

	require.Contains(t, logs.String(), "CHECK_FAILED")
	require.Contains(t, logs.String(), "SHA2-256 not available")
}

// =============================================================================
// RENDER TESTS
// =============================================================================

func TestRenderer_PlainOutput(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, termenv.Ascii)

	r.Banner("Provider Verification", Field{Label: "Version", Value: "1.0"})
	NewAggregator([]Check{
		passing("Digest operation"),
		failing("Approved algorithms", "digest SHA2-256 not available"),
	}, WithRenderer(r)).RunAll()

	text := out.String()
	require.NotContains(t, text, "\x1b[", "ascii profile must not emit escapes")
	require.Contains(t, text, "Provider Verification")
	require.Contains(t, text, "Version:")
	require.Contains(t, text, "[PASS] Digest operation")
	require.Contains(t, text, "[FAIL] Approved algorithms")
	require.Contains(t, text, "✗ digest SHA2-256 not available")
	require.Contains(t, text, "1 passed, 1 failed")
	require.Contains(t, text, "1 check(s) FAILED: Approved algorithms")
	require.False(t, strings.Contains(text, "All checks PASSED"))
}

func TestRenderer_AllPassed(t *testing.T) {
	var out bytes.Buffer
	NewAggregator([]Check{passing("only")},
		WithRenderer(NewRenderer(&out, termenv.Ascii))).RunAll()

	require.Contains(t, out.String(), "✅ All checks PASSED!")
}

func TestProfileFor_NonTerminal(t *testing.T) {
	require.Equal(t, termenv.Ascii, ProfileFor(&bytes.Buffer{}))
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "ok", LevelOK.String())
	require.Equal(t, "warn", LevelWarn.String())
	require.Equal(t, "unknown", Level(42).String())
}
