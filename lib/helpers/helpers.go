package helpers

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Truncate shortens s to at most max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// FormatUptime renders the time since start, e.g. "3 minutes".
func FormatUptime(start, now time.Time) string {
	return strings.TrimSpace(humanize.RelTime(start, now, "", ""))
}

// FormatBytes renders a byte count, e.g. "1.0 MiB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
