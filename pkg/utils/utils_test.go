package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	empty, err := ParseDate("")
	assert.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseDate("01/03/2024")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(from, to))
	assert.Equal(t, -30, DaysBetween(to, from))
	assert.Equal(t, 0, DaysBetween(from, from))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
}

func TestRoundWithFourDecimalPlace(t *testing.T) {
	assert.Equal(t, 0.3333, RoundWithFourDecimalPlace(1.0/3.0))
	assert.Equal(t, 0.0, RoundWithFourDecimalPlace(0))
}

func TestGenerateID(t *testing.T) {
	id, err := GenerateID()
	require.NoError(t, err)
	assert.Len(t, id, 8)
}
