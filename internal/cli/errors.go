// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Errors that stop a run before any check executes.

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/sparetools/provider-check/internal/report"
)

// CommandError is a startup failure with context.
type CommandError struct {
	Action string // what was being done (e.g., "load policy")
	Reason string // human-readable reason
	Err    error  // underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error.
func NewCommandError(action, reason string, err error) error {
	return &CommandError{Action: action, Reason: reason, Err: err}
}

// DisplayError writes err to w in the report's error style.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(report.ProfileFor(w))
	style := r.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	fmt.Fprintf(w, "%s %s\n", style.Render("[ERROR]"), err.Error())
}
