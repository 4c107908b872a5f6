package platform

import "strings"

// osNames maps raw operating system identifiers to TFLint's release naming.
// Only aliases are listed; everything else passes through unchanged.
var osNames = map[string]string{
	"win32": "windows",
	"macos": "darwin",
	"osx":   "darwin",
}

// archNames maps raw CPU architecture identifiers to TFLint's release naming.
var archNames = map[string]string{
	"x32":     "386",
	"x86":     "386",
	"i386":    "386",
	"i686":    "386",
	"x64":     "amd64",
	"x86_64":  "amd64",
	"aarch64": "arm64",
}

// MapOS converts a raw OS identifier to the vendor name. Unknown identifiers
// are returned as-is (lower-cased), since some targets use the raw name in
// artifact filenames.
func MapOS(raw string) string {
	return lookup(osNames, raw)
}

// MapArch converts a raw architecture identifier to the vendor name, with the
// same identity fallback as MapOS.
func MapArch(raw string) string {
	return lookup(archNames, raw)
}

func lookup(table map[string]string, raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := table[normalized]; ok {
		return mapped
	}
	return normalized
}
