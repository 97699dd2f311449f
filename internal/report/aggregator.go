// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// aggregator.go - Sequential check runner and failure tally.
//
// Exit Codes:
//   0   All checks passed
//   1   One or more checks failed

package report

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the aggregate result of a run.
type Status int

const (
	// StatusSuccess means every check passed.
	StatusSuccess Status = iota
	// StatusFailure means at least one check failed.
	StatusFailure
)

// String returns the string representation of the status.
func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failure"
}

const (
	// ExitSuccess is the process exit code when every check passed.
	ExitSuccess = 0
	// ExitFailure is the process exit code when any check failed.
	ExitFailure = 1
)

// Summary holds the outcome of every check in a run.
type Summary struct {
	RunID    string
	Results  []Outcome
	Passed   int
	Failed   int
	Duration time.Duration
}

// Status derives the aggregate status from the failure count.
func (s *Summary) Status() Status {
	if s.Failed > 0 {
		return StatusFailure
	}
	return StatusSuccess
}

// ExitCode maps the aggregate status to a process exit code.
func (s *Summary) ExitCode() int {
	if s.Status() == StatusFailure {
		return ExitFailure
	}
	return ExitSuccess
}

// FailedNames returns the names of failed checks in run order.
func (s *Summary) FailedNames() []string {
	var names []string
	for _, r := range s.Results {
		if !r.Passed {
			names = append(names, r.Name)
		}
	}
	return names
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator runs checks in a fixed order and keeps the tally.
type Aggregator struct {
	checks   []Check
	renderer *Renderer
	logger   *log.Logger
	runID    string
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithRenderer prints each outcome as it completes and the final summary.
func WithRenderer(r *Renderer) AggregatorOption {
	return func(a *Aggregator) { a.renderer = r }
}

// WithLogger sets the logger for failure events. Defaults to discarding.
func WithLogger(l *log.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = l }
}

// WithRunID sets the run identifier. Defaults to a fresh UUID per run.
func WithRunID(id string) AggregatorOption {
	return func(a *Aggregator) { a.runID = id }
}

// NewAggregator creates an aggregator over checks. The slice is copied.
func NewAggregator(checks []Check, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		checks: append([]Check(nil), checks...),
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunAll executes every check regardless of earlier failures and returns the
// summary. It never returns early.
func (a *Aggregator) RunAll() *Summary {
	runID := a.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	summary := &Summary{
		RunID:   runID,
		Results: make([]Outcome, 0, len(a.checks)),
	}
	start := time.Now()

	for _, c := range a.checks {
		outcome := a.runOne(c)
		summary.Results = append(summary.Results, outcome)

		if outcome.Passed {
			summary.Passed++
		} else {
			summary.Failed++
			a.logger.Printf("CHECK_FAILED | run=%s check=%q detail=%q",
				summary.RunID, outcome.Name, strings.Join(outcome.Errors(), "; "))
		}

		if a.renderer != nil {
			a.renderer.Outcome(outcome)
		}
	}

	summary.Duration = time.Since(start)
	if a.renderer != nil {
		a.renderer.Summary(summary)
	}
	return summary
}

// runOne isolates a single check: a panic becomes a failed outcome and the
// outcome always carries the check's registered name.
func (a *Aggregator) runOne(c Check) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Printf("CHECK_PANIC | check=%q error=%v", c.Name, r)
			failed := NewOutcome(c.Name)
			failed.Notes = outcome.Notes
			failed.Fail("check panicked: %v", r)
			outcome = *failed
		}
	}()

	if c.Run == nil {
		failed := NewOutcome(c.Name)
		failed.Fail("check has no implementation")
		return *failed
	}

	outcome = c.Run()
	outcome.Name = c.Name
	return outcome
}

// Describe formats a one-line result for a summary, e.g. "3 passed, 1 failed".
func Describe(s *Summary) string {
	return fmt.Sprintf("%d passed, %d failed", s.Passed, s.Failed)
}
