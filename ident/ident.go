// Copyright © 2026 Sketchdock contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: ident/ident.go
// Summary: Short identifier and display-name generation for tree nodes.
// Usage: Used by the dock and file-tree managers whenever a node or panel
// needs a fresh id or a collision-free title.

package ident

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// alphabet is URL-safe so ids can travel in paths and fragment anchors.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

const defaultLen = 7

// Fresh returns a random short identifier prefixed "t_". n is the number
// of random characters; n <= 0 falls back to the default length.
func Fresh(n int) string {
	if n <= 0 {
		n = defaultLen
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; misuse-level.
		panic(fmt.Sprintf("ident: rand.Read: %v", err))
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return "t_" + string(buf)
}

// Seeded returns a deterministic identifier for the given seed, prefixed
// "t_". Equal seeds always yield equal ids, which keeps reproducible
// trees reproducible across runs.
func Seeded(seed string, n int) string {
	if n <= 0 {
		n = defaultLen
	}
	// xorshift64* seeded from the string bytes.
	var s uint64 = 0x9E3779B97F4A7C15
	for _, b := range []byte(seed) {
		s ^= uint64(b)
		s *= 0xFF51AFD7ED558CCD
	}
	if s == 0 {
		s = 1
	}
	out := make([]byte, n)
	for i := range out {
		s ^= s >> 12
		s ^= s << 25
		s ^= s >> 27
		v := s * 0x2545F4914F6CDD1D
		out[i] = alphabet[int(v>>58)%len(alphabet)]
	}
	return "t_" + string(out)
}

// InstanceToken returns an opaque token identifying one manager instance.
func InstanceToken() string {
	return uuid.NewString()
}

// UniqueName returns base, or base with a " (N)" suffix, such that the
// result is not present in existing. Comparison is case-sensitive. An
// already-suffixed base has its counter incremented rather than stacked.
func UniqueName(base string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		taken[name] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base
	}

	stem, start := splitSuffix(base)
	for n := start + 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", stem, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// splitSuffix separates a trailing " (N)" counter from a name. Names
// without a counter report 0.
func splitSuffix(name string) (string, int) {
	open := strings.LastIndex(name, " (")
	if open < 0 || !strings.HasSuffix(name, ")") {
		return name, 0
	}
	digits := name[open+2 : len(name)-1]
	if digits == "" {
		return name, 0
	}
	n := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return name, 0
		}
		n = n*10 + int(r-'0')
	}
	return name[:open], n
}
