package models

import "time"

// Stats is the aggregated epidemic data for one location on one day.
type Stats struct {
	Confirmed int64
	Active    int64
	Deaths    int64
	Recovered int64
}

// Consistent reports whether the confirmed total equals the sum of its
// parts. An inconsistency is informational, not an error.
func (s Stats) Consistent() bool {
	return s.Confirmed == s.Active+s.Deaths+s.Recovered
}

// LookupResult carries the stats together with the calendar day they are
// for, which may be earlier than the requested day if the source lagged.
type LookupResult struct {
	Location string
	Stats    Stats
	Date     time.Time
}

// BroadcastRecord maps each announcement recipient to the message ID that
// was delivered there, kept only for the most recent broadcast so it can be
// retracted.
type BroadcastRecord map[int64]int
