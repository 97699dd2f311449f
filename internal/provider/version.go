// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"golang.org/x/sys/cpu"
)

// Version is the provider release, overridable at build time.
var Version = "3.0.0"

// VersionString returns informational details about the provider build.
func (l *Library) VersionString(kind VersionKind) string {
	switch kind {
	case VersionFull:
		return fmt.Sprintf("Go native provider %s (%s)", Version, runtime.Version())
	case VersionBuiltOn:
		return builtOn()
	case VersionPlatform:
		return platform()
	case VersionModules:
		l.mu.Lock()
		defer l.mu.Unlock()
		return strings.Join(l.moduleNamesLocked(), ", ")
	default:
		return "unknown"
	}
}

// builtOn reports the VCS commit time recorded by the toolchain.
func builtOn() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.time" && s.Value != "" {
			return s.Value
		}
	}
	return "unknown"
}

// platform reports GOOS/GOARCH and the hardware crypto extensions in use.
func platform() string {
	var accel []string
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasAES {
			accel = append(accel, "aes-ni")
		}
		if cpu.X86.HasPCLMULQDQ {
			accel = append(accel, "pclmulqdq")
		}
	case "arm64":
		if cpu.ARM64.HasAES {
			accel = append(accel, "aes")
		}
		if cpu.ARM64.HasPMULL {
			accel = append(accel, "pmull")
		}
		if cpu.ARM64.HasSHA2 {
			accel = append(accel, "sha2")
		}
	}
	p := runtime.GOOS + "/" + runtime.GOARCH
	if len(accel) == 0 {
		return p
	}
	return p + " [" + strings.Join(accel, " ") + "]"
}
