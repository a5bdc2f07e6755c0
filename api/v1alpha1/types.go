// Package v1alpha1 contains the wire types of the dispatch service API.
//
// The dispatch payloads are loosely typed: stage identifiers show up as json
// numbers in some payloads and as strings (numeric or stage name) in others,
// and most descriptive fields are optional. The types here absorb that
// looseness; normalization into the canonical domain model happens in
// internal/agent/mappers.
package v1alpha1

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// StageID is a lifecycle stage identifier (1 Assigned .. 7 Completed).
// Unknown or absent values decode to 0.
type StageID int

// wire spellings of stage names accepted in summary payloads
var stageNames = map[string]StageID{
	"assigned":       1,
	"job assigned":   1,
	"on the way":     2,
	"on pickup site": 3,
	"loaded":         4,
	"on drop site":   5,
	"delivered":      6,
	"completed":      7,
	"job complete":   7,
}

func (s *StageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if data[0] == '"' {
		text := strings.Trim(string(data), `"`)
		if text == "" {
			*s = 0
			return nil
		}
		if id, err := strconv.Atoi(text); err == nil {
			*s = StageID(id)
			return nil
		}
		*s = stageNames[strings.ToLower(text)]
		return nil
	}
	id, err := strconv.Atoi(string(data))
	if err != nil {
		*s = 0
		return nil
	}
	*s = StageID(id)
	return nil
}

// JobRecord is one entry of GET /Jobs/{driverId}.
type JobRecord struct {
	JobID           int64   `json:"jobId"`
	TrackingNumber  string  `json:"trackingNumber"`
	Title           string  `json:"title"`
	Short           string  `json:"short"`
	PickupAddress   string  `json:"pickupAddress"`
	PickupLocation  string  `json:"pickupLocation,omitempty"`
	PickupPostCode  string  `json:"pickupPostCode"`
	DropoffAddress  string  `json:"dropoffAddress"`
	DropoffPostCode string  `json:"dropoffPostCode"`
	Recipient       string  `json:"recipient"`
	Phone           string  `json:"phone"`
	Eta             string  `json:"eta"`
	Status          string  `json:"status"`
	Priority        string  `json:"priority"`
	Notes           string  `json:"notes"`
	CurrentStatus   StageID `json:"currentJobStatus"`
	NextStep        StageID `json:"nextStep"`
}

// StopRecord is one leg of a multi-stop job.
type StopRecord struct {
	ID            int64  `json:"id"`
	Address       string `json:"address"`
	SequenceOrder int    `json:"sequenceOrder"`
	Status        string `json:"status"`
	ContactName   string `json:"contactName"`
	ContactPhone  string `json:"contactPhone"`
	Notes         string `json:"notes"`
}

// StatusHistoryRecord is one entry of the append-only status history log.
type StatusHistoryRecord struct {
	ID                int64   `json:"currentStatusHistoryID"`
	JobID             int64   `json:"jobId"`
	CurrentStatusID   StageID `json:"currentStatusId"`
	CurrentStatusName string  `json:"currentStatusName"`
	NextStatusID      StageID `json:"nextStatusId"`
	NextStatusName    string  `json:"nextStatusName"`
	PendingStopID     int64   `json:"pendingStopId"`
	Notes             *string `json:"notes"`
	CreatedDate       string  `json:"createdDate"`
}

// AttachmentRecord is server-side evidence already attached to a job.
type AttachmentRecord struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// JobDetailRecord is the payload of GET /Jobs/detail/{jobId}.
type JobDetailRecord struct {
	JobRecord

	ClientName     string                `json:"clientName"`
	ClientPhone    string                `json:"clientPhone"`
	DriverName     string                `json:"driverName"`
	TruckNo        string                `json:"truckNo"`
	PickupDateTime string                `json:"pickupDateTime"`
	Stops          []StopRecord          `json:"stops"`
	StatusHistory  []StatusHistoryRecord `json:"statusHistory"`
	Attachments    []AttachmentRecord    `json:"attachments"`
}

// FileUpload is one evidence file submitted alongside a status update.
// Path is a local filesystem path; the content is streamed into a multipart
// Files part by the dispatch client.
type FileUpload struct {
	Path        string
	Name        string
	ContentType string
}

// StatusUpdateRequest is the outbound payload of POST /JobStatusHistory.
// It is encoded as a multipart form, one field per member plus zero or more
// Files parts.
type StatusUpdateRequest struct {
	JobID      int64
	StopID     int64
	StatusID   StageID
	StatusTime time.Time
	Latitude   float64
	Longitude  float64
	Notes      string
	CreatedBy  string
	Files      []FileUpload
}
