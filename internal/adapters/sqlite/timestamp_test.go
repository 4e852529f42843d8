package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	got := parseTimestamp("2025-03-14T09:30:00Z")
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)))

	for _, s := range []string{"", "2025-03-14 09:30:00", "yesterday"} {
		assert.Nil(t, parseTimestamp(s), "input %q", s)
	}
}
