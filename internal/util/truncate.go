package util

import "fmt"

// DefaultLogMaxLen caps diagnostic log output at 1KB. Provider error bodies
// can be arbitrarily large; logs only need enough to diagnose.
const DefaultLogMaxLen = 1024

// TruncateLog truncates long strings for diagnostic logging.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

// TruncateBytes is a convenience wrapper for TruncateLog that accepts []byte
// and uses DefaultLogMaxLen.
func TruncateBytes(b []byte) string {
	return TruncateLog(string(b), DefaultLogMaxLen)
}
