package models

import "time"

// Visit results.
const (
	VisitGranted = 0
	VisitDenied  = 1
)

const AnonymousUser = "Anonymous"

// Visit is one attempt to resolve a link. Date is milliseconds since epoch.
type Visit struct {
	User   string `json:"user"`
	Result int    `json:"result"`
	Date   int64  `json:"date"`
}

func NewVisit(user string, granted bool, at time.Time) Visit {
	result := VisitDenied
	if granted {
		result = VisitGranted
	}
	return Visit{User: user, Result: result, Date: at.UnixMilli()}
}

// Time returns the visit date as a time.Time.
func (v Visit) Time() time.Time {
	return time.UnixMilli(v.Date)
}
