// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"crypto/fips140"
	"fmt"
	"sync"
)

// =============================================================================
// LIBRARY
// =============================================================================

// Library is a Go-native Provider. The zero value is not usable; call New.
type Library struct {
	mu sync.Mutex

	known      map[string]moduleDef // loadable modules by folded name
	loaded     []*loadedModule      // search order, default first
	compliance bool
	masked     map[string]bool // folded canonical names hidden from lookup

	// live counts handles, sessions and explicitly loaded modules that have
	// not been released yet.
	live int
}

// loadedModule is a module in the search path. It doubles as the Module
// returned to callers of LoadProvider.
type loadedModule struct {
	def      moduleDef
	digests  map[string]digestDef
	ciphers  map[string]cipherDef
	names    nameIndex
	explicit bool // loaded through LoadProvider, not at construction
	unloaded bool
}

// Name returns the module name.
func (m *loadedModule) Name() string { return m.def.name }

// Option configures a Library.
type Option func(*Library)

// WithComplianceMode forces compliance mode on or off, overriding the state
// of the Go FIPS 140-3 module.
func WithComplianceMode(enabled bool) Option {
	return func(l *Library) { l.compliance = enabled }
}

// WithoutAlgorithms hides the named algorithms from every lookup, as if the
// provider had been built without them.
func WithoutAlgorithms(names ...string) Option {
	return func(l *Library) {
		for _, n := range names {
			l.masked[foldName(n)] = true
		}
	}
}

// WithoutModules removes modules from the set that can be loaded. Removing
// the default module leaves a library with an empty search path.
func WithoutModules(names ...string) Option {
	return func(l *Library) {
		for _, n := range names {
			delete(l.known, foldName(n))
		}
	}
}

// New creates a Library with the default module loaded.
func New(opts ...Option) *Library {
	l := &Library{
		known:      make(map[string]moduleDef),
		masked:     make(map[string]bool),
		compliance: fips140.Enabled(),
	}
	for _, def := range builtinModules() {
		l.known[foldName(def.name)] = def
	}
	for _, opt := range opts {
		opt(l)
	}
	if def, ok := l.known[foldName(ModuleDefault)]; ok {
		l.loaded = append(l.loaded, newLoadedModule(def, false))
	}
	return l
}

func newLoadedModule(def moduleDef, explicit bool) *loadedModule {
	m := &loadedModule{
		def:      def,
		digests:  make(map[string]digestDef, len(def.digests)),
		ciphers:  make(map[string]cipherDef, len(def.ciphers)),
		names:    make(nameIndex),
		explicit: explicit,
	}
	for _, d := range def.digests {
		m.digests[d.name] = d
		m.names.add(d.name, d.aliases...)
	}
	for _, c := range def.ciphers {
		m.ciphers[c.name] = c
		m.names.add(c.name, c.aliases...)
	}
	return m
}

// =============================================================================
// LOOKUP
// =============================================================================

// FetchDigest returns a handle for the named digest. A name that no loaded
// module provides yields ErrUnavailable.
func (l *Library) FetchDigest(name string) (Digest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.loaded {
		canonical, ok := m.names.resolve(name)
		if !ok {
			continue
		}
		def, ok := m.digests[canonical]
		if !ok || !l.visibleLocked(canonical, def.approved) {
			continue
		}
		h, err := def.new()
		if err != nil {
			return nil, fmt.Errorf("instantiate %s: %w", canonical, err)
		}
		l.live++
		return &digestHandle{lib: l, def: def, size: h.Size(), blockSize: h.BlockSize()}, nil
	}
	return nil, fmt.Errorf("digest %q: %w", name, ErrUnavailable)
}

// FetchCipher returns a handle for the named cipher. A name that no loaded
// module provides yields ErrUnavailable.
func (l *Library) FetchCipher(name string) (Cipher, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.loaded {
		canonical, ok := m.names.resolve(name)
		if !ok {
			continue
		}
		def, ok := m.ciphers[canonical]
		if !ok || !l.visibleLocked(canonical, def.approved) {
			continue
		}
		l.live++
		return &cipherHandle{lib: l, def: def}, nil
	}
	return nil, fmt.Errorf("cipher %q: %w", name, ErrUnavailable)
}

// visibleLocked applies masking and compliance filtering (caller must hold lock).
func (l *Library) visibleLocked(canonical string, approved bool) bool {
	if l.masked[foldName(canonical)] {
		return false
	}
	return approved || !l.compliance
}

// =============================================================================
// MODULE LIFECYCLE
// =============================================================================

// LoadProvider appends the named module to the search path. Loading a module
// that is already loaded returns a second, independent Module reference.
func (l *Library) LoadProvider(name string) (Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	def, ok := l.known[foldName(name)]
	if !ok {
		return nil, fmt.Errorf("load %q: %w", name, ErrProviderNotFound)
	}
	if l.compliance && !def.approved {
		return nil, fmt.Errorf("load %q: %w", name, ErrNotApproved)
	}

	m := newLoadedModule(def, true)
	l.loaded = append(l.loaded, m)
	l.live++
	return m, nil
}

// UnloadProvider removes a module returned by LoadProvider from the search
// path. Unloading the same Module twice returns ErrNotLoaded.
func (l *Library) UnloadProvider(mod Module) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := mod.(*loadedModule)
	if !ok || m == nil || !m.explicit || m.unloaded {
		return ErrNotLoaded
	}
	for i, candidate := range l.loaded {
		if candidate == m {
			l.loaded = append(l.loaded[:i], l.loaded[i+1:]...)
			break
		}
	}
	m.unloaded = true
	l.live--
	return nil
}

// ComplianceMode reports whether only FIPS-approved algorithms are exposed.
func (l *Library) ComplianceMode() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.compliance
}

// Outstanding returns the number of handles, sessions and loaded modules
// that have not been released.
func (l *Library) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live
}

// release decrements the live count once per resource.
func (l *Library) release() {
	l.mu.Lock()
	l.live--
	l.mu.Unlock()
}

// acquire increments the live count for a new session.
func (l *Library) acquire() {
	l.mu.Lock()
	l.live++
	l.mu.Unlock()
}

// moduleNamesLocked returns the search path (caller must hold lock).
func (l *Library) moduleNamesLocked() []string {
	names := make([]string, 0, len(l.loaded))
	for _, m := range l.loaded {
		names = append(names, m.def.name)
	}
	return names
}
