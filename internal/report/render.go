// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Human-readable report output.
//
// Color handling:
// - Colors are enabled only when writing to a terminal
// - Piped or redirected output is plain ASCII-profile text

package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// separatorWidth matches the banner rule width.
const separatorWidth = 50

// ProfileFor returns the color profile for w: 256 colors on a terminal,
// plain text otherwise.
func ProfileFor(w io.Writer) termenv.Profile {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return termenv.ANSI256
	}
	return termenv.Ascii
}

// Renderer writes the report to a single stream.
type Renderer struct {
	w io.Writer

	title     lipgloss.Style
	pass      lipgloss.Style
	fail      lipgloss.Style
	warn      lipgloss.Style
	info      lipgloss.Style
	label     lipgloss.Style
	separator lipgloss.Style
}

// NewRenderer creates a renderer for w using the given color profile.
func NewRenderer(w io.Writer, profile termenv.Profile) *Renderer {
	lg := lipgloss.NewRenderer(w)
	lg.SetColorProfile(profile)

	return &Renderer{
		w:         w,
		title:     lg.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),  // Cyan
		pass:      lg.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),  // Bright green
		fail:      lg.NewStyle().Bold(true).Foreground(lipgloss.Color("196")), // Red
		warn:      lg.NewStyle().Foreground(lipgloss.Color("214")),            // Yellow/Orange
		info:      lg.NewStyle().Foreground(lipgloss.Color("245")),            // Light gray
		label:     lg.NewStyle().Foreground(lipgloss.Color("245")),
		separator: lg.NewStyle().Foreground(lipgloss.Color("240")), // Dark gray
	}
}

// Field is a labelled banner value.
type Field struct {
	Label string
	Value string
}

// Banner prints the report title and informational fields.
func (r *Renderer) Banner(title string, fields ...Field) {
	rule := r.separator.Render(strings.Repeat("=", separatorWidth))
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, r.title.Render(title))
	fmt.Fprintln(r.w, rule)

	width := 0
	for _, f := range fields {
		if w := runewidth.StringWidth(f.Label); w > width {
			width = w
		}
	}
	for _, f := range fields {
		fmt.Fprintf(r.w, "%s  %s\n", r.label.Render(runewidth.FillRight(f.Label+":", width+1)), f.Value)
	}
	fmt.Fprintln(r.w)
}

// Outcome prints one check's notes followed by its verdict.
func (r *Renderer) Outcome(o Outcome) {
	fmt.Fprintln(r.w, r.title.Render("Testing "+o.Name+"..."))
	for _, n := range o.Notes {
		fmt.Fprintf(r.w, "  %s %s\n", r.symbol(n.Level), n.Text)
	}
	if o.Passed {
		fmt.Fprintf(r.w, "%s %s\n\n", r.pass.Render("[PASS]"), o.Name)
	} else {
		fmt.Fprintf(r.w, "%s %s\n\n", r.fail.Render("[FAIL]"), o.Name)
	}
}

// Summary prints the per-check table and the final verdict line.
func (r *Renderer) Summary(s *Summary) {
	fmt.Fprintln(r.w, r.separator.Render(strings.Repeat("=", separatorWidth)))

	width := 0
	for _, o := range s.Results {
		if w := runewidth.StringWidth(o.Name); w > width {
			width = w
		}
	}
	for _, o := range s.Results {
		status := r.pass.Render("PASS")
		if !o.Passed {
			status = r.fail.Render("FAIL")
		}
		fmt.Fprintf(r.w, "  %s  %s\n", runewidth.FillRight(o.Name, width), status)
		for _, e := range o.Errors() {
			fmt.Fprintf(r.w, "      %s %s\n", r.symbol(LevelError), e)
		}
	}

	fmt.Fprintf(r.w, "\nChecks: %s | Total: %d | Time: %dms\n",
		Describe(s), len(s.Results), s.Duration.Milliseconds())

	if s.Failed == 0 {
		fmt.Fprintln(r.w, r.pass.Render("✅ All checks PASSED!"))
		return
	}
	fmt.Fprintln(r.w, r.fail.Render(fmt.Sprintf("❌ %d check(s) FAILED: %s",
		s.Failed, strings.Join(s.FailedNames(), ", "))))
}

func (r *Renderer) symbol(l Level) string {
	switch l {
	case LevelOK:
		return r.pass.Render("✓")
	case LevelWarn:
		return r.warn.Render("⚠")
	case LevelError:
		return r.fail.Render("✗")
	default:
		return r.info.Render("·")
	}
}
