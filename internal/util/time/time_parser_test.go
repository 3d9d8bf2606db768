package time_parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_FormatISO_WithNonUTCTime_ReturnsMillisecondUTCString(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	input := time.Date(2024, 3, 5, 10, 4, 5, 123456789, zone)

	assert.Equal(t, "2024-03-05T08:04:05.123Z", FormatISO(input))
}

func Test_FormatISO_WithWholeSeconds_KeepsZeroMilliseconds(t *testing.T) {
	input := time.Date(2024, 3, 5, 8, 4, 5, 0, time.UTC)

	assert.Equal(t, "2024-03-05T08:04:05.000Z", FormatISO(input))
}

func Test_ParseTimestamp_WithValidISOStrings_ParsesCorrectly(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "client ISO format",
			input:    "2023-12-25T15:30:45.123Z",
			expected: time.Date(2023, 12, 25, 15, 30, 45, 123000000, time.UTC),
		},
		{
			name:     "RFC3339 with timezone",
			input:    "2023-12-25T15:30:45+02:00",
			expected: time.Date(2023, 12, 25, 13, 30, 45, 0, time.UTC),
		},
		{
			name:     "ISO without timezone",
			input:    "2023-12-25T15:30:45",
			expected: time.Date(2023, 12, 25, 15, 30, 45, 0, time.UTC),
		},
		{
			name:     "space separated",
			input:    "2023-12-25 15:30:45",
			expected: time.Date(2023, 12, 25, 15, 30, 45, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParseTimestamp(tt.input)

			assert.True(t, ok)
			assert.True(t, tt.expected.Equal(result), "expected %v, got %v", tt.expected, result)
			assert.Equal(t, time.UTC, result.Location())
		})
	}
}

func Test_ParseTimestamp_WithInvalidInput_ReturnsFalse(t *testing.T) {
	for _, input := range []string{"", "yesterday", "2023-13-45T99:00:00Z"} {
		_, ok := ParseTimestamp(input)
		assert.False(t, ok, "input %q", input)
	}
}

func Test_ParseDay_WithValidAndInvalidValues_ValidatesFormat(t *testing.T) {
	day, ok := ParseDay("2024-02-29")
	assert.True(t, ok)
	assert.Equal(t, "2024-02-29", FormatDay(day))

	_, ok = ParseDay("2023-02-29")
	assert.False(t, ok)

	_, ok = ParseDay("../../etc/passwd")
	assert.False(t, ok)
}

func Test_ISOLayout_RoundTripsThroughParseTimestamp(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	parsed, ok := ParseTimestamp(FormatISO(now))

	assert.True(t, ok)
	assert.True(t, now.Equal(parsed))
}
