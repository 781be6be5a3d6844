// Package quota implements the rolling-window request policy for the
// metered tier. A Window backend counts suggestion requests inside a
// trailing time span; Evaluate turns those counts into a QuotaState and
// NoticeMessage renders the user-facing wait text for an exhausted window.
//
// Backends fail loud (they return their errors); the caller decides the
// degradation policy. The suggestion service fails open: an unreadable
// window counts as "allowed".
package quota

import (
	"context"
	"fmt"
	"time"
)

// Window counts and records requests within a trailing time span, keyed by
// user. Implementations must be safe for concurrent use.
type Window interface {
	// Count returns the number of requests recorded for userID within the
	// trailing window ending now.
	Count(ctx context.Context, userID string, window time.Duration) (int, error)

	// Oldest returns the timestamp of the earliest in-window request, or
	// nil when the window is empty.
	Oldest(ctx context.Context, userID string, window time.Duration) (*time.Time, error)

	// Record appends one request at the given time.
	Record(ctx context.Context, userID string, at time.Time) error
}

// State describes a caller's standing against the rolling quota. ResetAt is
// the moment the oldest in-window request expires; nil when the window is
// empty or the caller is unmetered.
type State struct {
	Allowed bool       `json:"allowed"`
	Used    int        `json:"used"`
	Max     int        `json:"max"`
	ResetAt *time.Time `json:"reset_at,omitempty"`
}

// Evaluate computes the State for a metered caller from the in-window usage
// count and the oldest in-window request.
func Evaluate(used, max int, oldest *time.Time, window time.Duration) State {
	s := State{
		Allowed: used < max,
		Used:    used,
		Max:     max,
	}
	if oldest != nil {
		reset := oldest.Add(window)
		s.ResetAt = &reset
	}
	return s
}

// Unmetered is the State reported for callers exempt from metering.
func Unmetered() State {
	return State{Allowed: true, Max: 0}
}

// NoticeMessage renders the limit-notice text shown in place of
// suggestions, stating the wait until the oldest in-window request expires.
// The wait is rounded up to whole hours and never reported below one.
func NoticeMessage(resetAt, now time.Time) string {
	wait := resetAt.Sub(now)
	hours := int((wait + time.Hour - 1) / time.Hour)
	if hours < 1 {
		hours = 1
	}
	if hours == 1 {
		return "Daily suggestion limit reached. Try again in about 1 hour."
	}
	return fmt.Sprintf("Daily suggestion limit reached. Try again in about %d hours.", hours)
}
