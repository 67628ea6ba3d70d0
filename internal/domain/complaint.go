// Package domain – normalized complaint view.
//
// This file defines the Family/Priority/Status vocabularies and the
// Complaint shape the aggregator emits. Complaint is not a stored entity:
// it is the common projection of the three family tables, and the
// (Family, RecordID) pair is its true key.
package domain

import "time"

// Family identifies the source table of a complaint. Every mutation is
// routed back through it; record IDs are only unique within a family.
type Family string

const (
	FamilyOutage Family = "outage_reports"
	FamilyMeter  Family = "meter_concerns"
	FamilyAgent  Family = "agent_queue"
)

// ParseFamily maps a route parameter onto a known family. The second
// return is false for anything outside the fixed set.
func ParseFamily(s string) (Family, bool) {
	switch Family(s) {
	case FamilyOutage, FamilyMeter, FamilyAgent:
		return Family(s), true
	}
	return "", false
}

// IssueType returns the issue classification fixed by the family. It is
// derived here at aggregation time and never stored independently.
func (f Family) IssueType() string {
	switch f {
	case FamilyOutage:
		return "Power Outage"
	case FamilyMeter:
		return "Billing"
	case FamilyAgent:
		return "Service"
	}
	return "Unknown"
}

// Priority tiers, most severe first.
const (
	PriorityCritical = "CRITICAL"
	PriorityHigh     = "HIGH"
	PriorityMedium   = "MEDIUM"
	PriorityLow      = "LOW"
)

// Status lifecycle values. NEW is the only initial state; the manager
// allows any-to-any transitions so operators can correct mistakes.
const (
	StatusNew        = "NEW"
	StatusAssigned   = "ASSIGNED"
	StatusInProgress = "IN_PROGRESS"
	StatusResolved   = "RESOLVED"
)

// ValidStatus reports whether s is one of the four lifecycle values.
// The caller is expected to upper-case and trim first.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusAssigned, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// statusRank and priorityRank drive the triage ordering. Unknown values
// sort after RESOLVED / LOW so malformed rows sink instead of hiding
// fresh work.
var statusRank = map[string]int{
	StatusNew:        0,
	StatusAssigned:   1,
	StatusInProgress: 2,
	StatusResolved:   3,
}

var priorityRank = map[string]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// StatusRank returns the sort weight of a status (unknown -> 4).
func StatusRank(s string) int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return 4
}

// PriorityRank returns the sort weight of a priority (unknown -> 4).
func PriorityRank(p string) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return 4
}

// Location is an optional device-supplied coordinate with accuracy radius
// in meters.
type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// Complaint is the aggregator's normalized output unit.
//
// Description is truncated for list display; the full text is available
// through the single-record detail endpoint. Less returns the triage
// ordering: unresolved before resolved, most severe first within a
// status, newest first within a status+priority band.
type Complaint struct {
	Family      Family     `json:"family"`
	RecordID    uint       `json:"record_id"`
	JobOrderID  string     `json:"job_order_id,omitempty"`
	CustomerRef string     `json:"customer_ref,omitempty"`
	Name        string     `json:"customer_name"`
	Phone       string     `json:"customer_phone"`
	Address     string     `json:"address,omitempty"`
	IssueType   string     `json:"issue_type"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Source      string     `json:"source"`
	Hidden      bool       `json:"hidden"`
	Location    *Location  `json:"location,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Less orders complaints by (statusRank, priorityRank, -createdAt).
func (c Complaint) Less(o Complaint) bool {
	sr, so := StatusRank(c.Status), StatusRank(o.Status)
	if sr != so {
		return sr < so
	}
	pr, po := PriorityRank(c.Priority), PriorityRank(o.Priority)
	if pr != po {
		return pr < po
	}
	return c.CreatedAt.Unix() > o.CreatedAt.Unix()
}
