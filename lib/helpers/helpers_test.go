package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "🚨📈...", Truncate("🚨📈🕐", 2))
	assert.Equal(t, "keep", Truncate("keep", 0))
}

func TestFormatUptime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 minutes", FormatUptime(start, start.Add(3*time.Minute)))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "1.0 MiB", FormatBytes(1<<20))
	assert.Equal(t, "0 B", FormatBytes(-5))
}
