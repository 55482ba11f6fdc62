package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the layout written to CSV and JSON.
const TimeLayout = "2006-01-02 15:04:05-07:00"

var timeLayouts = []string{
	TimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTime accepts the written layout, RFC3339, zone-less timestamps
// (read as UTC) and integer epochs (see epochTime).
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if x, err := strconv.ParseInt(s, 10, 64); err == nil {
		return epochTime(x), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// epochTime reads an integer epoch, inferring the unit from its magnitude:
// milliseconds are the norm, micro- and nanosecond timestamps also occur.
func epochTime(x int64) time.Time {
	switch {
	case x > 1e17 || x < -1e17:
		return time.Unix(0, x).UTC()
	case x > 1e14 || x < -1e14:
		return time.UnixMicro(x).UTC()
	}
	return time.UnixMilli(x).UTC()
}

func formatTime(t time.Time) string { return t.Format(TimeLayout) }
