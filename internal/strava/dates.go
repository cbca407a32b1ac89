package strava

import (
	"time"

	"cloud.google.com/go/civil"
)

// EpochBounds converts a calendar range into the after/before epoch seconds
// passed to Strava. Both bounds are start of day in loc, so activities on the
// `to` day itself fall outside the range. A nil loc means the process time zone.
func EpochBounds(from, to civil.Date, loc *time.Location) (after, before int64) {
	if loc == nil {
		loc = time.Local
	}
	return startOfDay(from, loc).Unix(), startOfDay(to, loc).Unix()
}

// startOfDay returns the first instant of d in loc. Where midnight is skipped
// by a DST change the day starts when the gap ends.
func startOfDay(d civil.Date, loc *time.Location) time.Time {
	t := d.In(loc)
	if civil.DateOf(t) != d {
		_, t = t.ZoneBounds()
	}
	return t
}
