package content

import "time"

// UnknownTime is shown for missing timestamps.
const UnknownTime = "未知时间"

// TimeLayout is the display format for timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// values above this are milliseconds
const millisThreshold = 100_000_000_000

// Timestamp renders a unix timestamp in seconds or milliseconds.
func Timestamp(ts int64, loc *time.Location) string {
	if ts <= 0 {
		return UnknownTime
	}
	if loc == nil {
		loc = time.Local
	}
	var t time.Time
	if ts >= millisThreshold {
		t = time.UnixMilli(ts)
	} else {
		t = time.Unix(ts, 0)
	}
	return t.In(loc).Format(TimeLayout)
}
