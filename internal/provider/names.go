// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"strings"

	"golang.org/x/text/cases"
)

// foldName case-folds an algorithm name for lookup. A Caser is stateful, so
// every call builds its own.
func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// nameIndex maps folded names and aliases to a canonical algorithm name.
type nameIndex map[string]string

func (ix nameIndex) add(canonical string, aliases ...string) {
	ix[foldName(canonical)] = canonical
	for _, a := range aliases {
		ix[foldName(a)] = canonical
	}
}

// resolve returns the canonical name for name, if known.
func (ix nameIndex) resolve(name string) (string, bool) {
	canonical, ok := ix[foldName(name)]
	return canonical, ok
}
