package sqlite

import "time"

// unixTime converts a stored Unix timestamp back to UTC time.
func unixTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
