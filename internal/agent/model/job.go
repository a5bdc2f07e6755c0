// Package model holds the canonical in-process representation of jobs.
// Wire payloads are normalized into these types at the boundary
// (internal/agent/mappers); everything past the boundary works with them
// only. The json tags serve the agent's local read API, not the dispatch
// wire format.
package model

import "time"

// Job is a job summary as shown in the driver's job list. CurrentStatus and
// NextStep are denormalized hints used only until full detail is loaded.
type Job struct {
	ID              int64  `json:"jobId"`
	TrackingNumber  string `json:"trackingNumber"`
	Title           string `json:"title"`
	Short           string `json:"short,omitempty"`
	PickupAddress   string `json:"pickupAddress"`
	PickupLocation  string `json:"pickupLocation,omitempty"`
	PickupPostCode  string `json:"pickupPostCode,omitempty"`
	DropoffAddress  string `json:"dropoffAddress"`
	DropoffPostCode string `json:"dropoffPostCode,omitempty"`
	Recipient       string `json:"recipient,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Eta             string `json:"eta,omitempty"`
	Status          string `json:"status,omitempty"`
	Priority        string `json:"priority,omitempty"`
	Notes           string `json:"notes,omitempty"`
	CurrentStatus   int    `json:"currentJobStatus"`
	NextStep        int    `json:"nextStep"`
}

// Stop is one leg of a multi-stop job. Read-only from the engine's
// perspective.
type Stop struct {
	ID            int64  `json:"id"`
	Address       string `json:"address"`
	SequenceOrder int    `json:"sequenceOrder"`
	Status        string `json:"status,omitempty"`
	ContactName   string `json:"contactName,omitempty"`
	ContactPhone  string `json:"contactPhone,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// StatusHistoryEntry is one immutable record of the per-job append-only
// status log. The most recent entry is authoritative for what happens next.
type StatusHistoryEntry struct {
	ID                int64     `json:"id"`
	JobID             int64     `json:"jobId"`
	CurrentStatusID   int       `json:"currentStatusId"`
	CurrentStatusName string    `json:"currentStatusName"`
	NextStatusID      int       `json:"nextStatusId"`
	NextStatusName    string    `json:"nextStatusName"`
	PendingStopID     int64     `json:"pendingStopId"`
	Notes             string    `json:"notes,omitempty"`
	CreatedDate       time.Time `json:"createdDate"`
}

// JobDetail is the full view of one job: summary plus client/driver/truck
// info, stops and the status history log (most recent first).
type JobDetail struct {
	Job

	ClientName     string               `json:"clientName,omitempty"`
	ClientPhone    string               `json:"clientPhone,omitempty"`
	DriverName     string               `json:"driverName,omitempty"`
	TruckNo        string               `json:"truckNo,omitempty"`
	PickupDateTime time.Time            `json:"pickupDateTime,omitzero"`
	Stops          []Stop               `json:"stops"`
	StatusHistory  []StatusHistoryEntry `json:"statusHistory"`
	Attachments    []string             `json:"attachments"`
}

// LatestHistory returns the most recent status history entry, or false when
// the log is empty.
func (d *JobDetail) LatestHistory() (StatusHistoryEntry, bool) {
	if len(d.StatusHistory) == 0 {
		return StatusHistoryEntry{}, false
	}
	return d.StatusHistory[0], true
}

// Transition describes the next legal stage move derived from the latest
// history entry.
type Transition struct {
	NextStatusID   int    `json:"nextStatusId"`
	NextStatusName string `json:"nextStatusName"`
	PendingStopID  int64  `json:"pendingStopId"`
}
