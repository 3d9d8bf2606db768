package time_parser

import "time"

// ISOLayout matches JavaScript's Date.prototype.toISOString: UTC with
// millisecond precision and a Z suffix.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// DayLayout names per-day collector partitions.
const DayLayout = "2006-01-02"

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

func NowISO() string {
	return FormatISO(time.Now())
}

// ParseTimestamp converts an ISO timestamp sent by a telemetry client to UTC.
// Supported formats, in order:
//   - RFC3339 / RFC3339Nano (covers ISOLayout)
//   - "2006-01-02T15:04:05" (no zone, treated as UTC)
//   - "2006-01-02 15:04:05"
//
// The boolean is false for empty or unrecognized input.
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// ParseDay validates a YYYY-MM-DD partition name.
func ParseDay(value string) (time.Time, bool) {
	t, err := time.Parse(DayLayout, value)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}
