package offer

import (
	"fmt"
	"time"
)

// Status tracks where an offer sits in the operator's workflow. There are
// no terminal states: the operator can re-set any offer at any time.
type Status string

const (
	StatusNew      Status = "new"
	StatusApplied  Status = "applied"
	StatusRejected Status = "rejected"
	StatusToFollow Status = "to_follow"
)

// Follow-up reminders scheduled when an offer moves to "applied".
const (
	Followup1Days = 5
	Followup2Days = 12
)

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNew, StatusApplied, StatusRejected, StatusToFollow:
		return st, nil
	}
	return "", fmt.Errorf("unknown offer status %q", s)
}

// FollowupDates returns the two reminder dates attached to an offer when it
// transitions to "applied".
func FollowupDates(from time.Time) (time.Time, time.Time) {
	return from.AddDate(0, 0, Followup1Days), from.AddDate(0, 0, Followup2Days)
}
