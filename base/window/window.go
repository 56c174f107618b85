// Package window computes the lower time bound of the sales a run announces.
//
// Two policies are supported:
//   - offset: the bound is now minus the configured number of seconds and is
//     sent upstream as the occurred_after filter.
//   - clock: the bound is the start of the previous calendar hour in the
//     location of now, sales are filtered locally against it. A run that does
//     not happen within the hour after the bound silently loses sales.
package window

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DefaultSeconds = int64(3600)

type Policy string

const (
	PolicyOffset Policy = "offset"
	PolicyClock  Policy = "clock"
)

var ErrUnknownPolicy = errors.New("unknown window policy")

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyOffset, nil
	case PolicyOffset, PolicyClock:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Boundary returns the instant sales must occur after
func Boundary(now time.Time, policy Policy, seconds int64) time.Time {
	if policy == PolicyClock {
		return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location()).Add(-time.Hour)
	}
	if seconds <= 0 {
		seconds = DefaultSeconds
	}
	return now.Add(-time.Duration(seconds) * time.Second)
}

type Window struct {
	Policy  Policy
	Seconds int64
}

func (w Window) Boundary(now time.Time) time.Time {
	return Boundary(now, w.Policy, w.Seconds)
}

// QueryAfter is the upstream occurred_after filter, nil when filtering happens locally
func (w Window) QueryAfter(now time.Time) *time.Time {
	if w.Policy == PolicyClock {
		return nil
	}
	b := w.Boundary(now)
	return &b
}

// Contains reports whether a sale at t is kept
func (w Window) Contains(now, t time.Time) bool {
	if w.Policy != PolicyClock {
		return true
	}
	return t.After(w.Boundary(now))
}
