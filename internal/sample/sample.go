// Package sample implements the traffic sample file extension grammar.
//
// A sample extension is either the literal "vlog" or a type prefix followed
// by a period suffix, e.g. "v30" (vehicle counts binned to 30 seconds).
// The type fixes the width of one sample in bytes and the period fixes the
// number of samples per day, so a valid extension predicts the exact length
// of a well-formed sample file.
package sample

import (
	"strconv"
	"strings"
)

// sampleType is one entry of the closed sample type table.
type sampleType struct {
	prefix string
	size   int64 // bytes per sample
}

// Sample types, longest prefix first so that "vmc30" resolves to the vmc
// type rather than v.
var sampleTypes = []sampleType{
	{"vmc", 1},
	{"vs", 1},
	{"vm", 1},
	{"vl", 1},
	{"pr", 2},
	{"pt", 1},
	{"v", 1},
	{"o", 2},
	{"c", 2},
	{"s", 1},
}

// Sample periods in seconds. Samples per day is 86400 / period.
var samplePeriods = []int{
	5, 6, 10, 15, 20, 30, 60, 90, 120, 240, 300, 600, 900, 1200, 1800,
	3600, 7200, 14400, 28800, 43200, 86400,
}

// Vlog is the raw vehicle log extension. Its files have no fixed length.
const Vlog = "vlog"

// splitExt decomposes ext into its type and period tokens.
func splitExt(ext string) (sampleType, int, bool) {
	for _, st := range sampleTypes {
		if !strings.HasPrefix(ext, st.prefix) {
			continue
		}
		suffix := ext[len(st.prefix):]
		for _, per := range samplePeriods {
			if suffix == strconv.Itoa(per) {
				return st, per, true
			}
		}
	}
	return sampleType{}, 0, false
}

// IsValidExt reports whether ext is a recognized sample file extension.
func IsValidExt(ext string) bool {
	if ext == Vlog {
		return true
	}
	_, _, ok := splitExt(ext)
	return ok
}

// ExpectedLen returns the exact file length predicted by the grammar for
// ext. It reports false for vlog (no fixed length) and for unrecognized
// extensions.
func ExpectedLen(ext string) (int64, bool) {
	st, per, ok := splitExt(ext)
	if !ok {
		return 0, false
	}
	return st.size * int64(86400/per), true
}

// IsValidLen reports whether a file of n bytes is well formed for ext.
// Any length is accepted for vlog.
func IsValidLen(ext string, n int64) bool {
	if ext == Vlog {
		return true
	}
	want, ok := ExpectedLen(ext)
	return ok && want == n
}

// SplitSidExt splits a file name of the form "<sid>.<ext>" at the first
// dot. It reports false when the name has no dot.
func SplitSidExt(name string) (sid, ext string, ok bool) {
	i := strings.Index(name, ".")
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}
