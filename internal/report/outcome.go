// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report runs top-level checks, tallies their outcomes and renders a
// human-readable report.
package report

import "fmt"

// =============================================================================
// NOTES
// =============================================================================

// Level classifies a line of check output.
type Level int

const (
	// LevelOK marks something that worked.
	LevelOK Level = iota
	// LevelInfo is neutral detail (digests, sizes, versions).
	LevelInfo
	// LevelWarn is an expected-but-notable condition that does not fail a check.
	LevelWarn
	// LevelError explains why a check failed.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelOK:
		return "ok"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Note is one line of check output.
type Note struct {
	Level Level
	Text  string
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is the result of one top-level check.
type Outcome struct {
	Name   string
	Passed bool
	Notes  []Note
}

// NewOutcome returns a passing outcome. Checks call Fail to flip it.
func NewOutcome(name string) *Outcome {
	return &Outcome{Name: name, Passed: true}
}

// OK records a success line.
func (o *Outcome) OK(format string, args ...any) {
	o.add(LevelOK, format, args...)
}

// Info records a neutral detail line.
func (o *Outcome) Info(format string, args ...any) {
	o.add(LevelInfo, format, args...)
}

// Warn records a non-fatal condition.
func (o *Outcome) Warn(format string, args ...any) {
	o.add(LevelWarn, format, args...)
}

// Fail records an error line and marks the outcome failed.
func (o *Outcome) Fail(format string, args ...any) {
	o.add(LevelError, format, args...)
	o.Passed = false
}

func (o *Outcome) add(level Level, format string, args ...any) {
	o.Notes = append(o.Notes, Note{Level: level, Text: fmt.Sprintf(format, args...)})
}

// Errors returns the text of every error line.
func (o Outcome) Errors() []string {
	var errs []string
	for _, n := range o.Notes {
		if n.Level == LevelError {
			errs = append(errs, n.Text)
		}
	}
	return errs
}

// Check is a named, self-contained unit of verification. Run must resolve
// every failure into the returned Outcome.
type Check struct {
	Name string
	Run  func() Outcome
}
