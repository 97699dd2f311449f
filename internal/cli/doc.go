// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli runs the provider verification suite for the provider-check
// executable.
//
// # Usage
//
//	os.Exit(cli.Run(os.Stdout, os.Stderr))
//
// Run takes no arguments and reads no configuration: the policy is built in.
// The report goes to stdout, styled only when stdout is a terminal. Failure
// events are logged to stderr.
//
// # Exit Codes
//
//	0   Every check passed
//	1   One or more checks failed, or the built-in policy is invalid
package cli
