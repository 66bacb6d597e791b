package utils_test

import (
	"testing"
	"time"

	"cryptotracker/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionDate(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-09T10:30:00Z":      time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC),
		"2024-03-09T10:30:00-03:00": time.Date(2024, 3, 9, 13, 30, 0, 0, time.UTC),
		"2024-03-09T10:30:00":       time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC),
		"2024-03-09T10:30":          time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC),
		"2024-03-09":                time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, err := utils.ParseTransactionDate(input)
		require.NoError(t, err, input)
		assert.True(t, want.Equal(got), "%s: got %s", input, got)
	}

	zero, err := utils.ParseTransactionDate("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = utils.ParseTransactionDate("09/03/2024")
	assert.Error(t, err)
}
