// Package mappers normalizes dispatch wire records into the domain model.
// Required-field absence surfaces as ErrDataFormat; optional fields default
// to their zero value. List adaptation degrades per record instead of
// failing the whole list.
package mappers

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	api "github.com/fleetworks/courier-agent/api/v1alpha1"
	"github.com/fleetworks/courier-agent/internal/agent/model"
)

// ErrDataFormat marks a remote payload that is missing a required field.
var ErrDataFormat = errors.New("malformed dispatch payload")

// JobFromRecord adapts one summary record. A record without a job id is
// unusable and rejected with ErrDataFormat.
func JobFromRecord(record api.JobRecord) (model.Job, error) {
	if record.JobID == 0 {
		return model.Job{}, errors.Wrap(ErrDataFormat, "job summary without jobId")
	}
	return model.Job{
		ID:              record.JobID,
		TrackingNumber:  record.TrackingNumber,
		Title:           record.Title,
		Short:           record.Short,
		PickupAddress:   record.PickupAddress,
		PickupLocation:  record.PickupLocation,
		PickupPostCode:  record.PickupPostCode,
		DropoffAddress:  record.DropoffAddress,
		DropoffPostCode: record.DropoffPostCode,
		Recipient:       record.Recipient,
		Phone:           record.Phone,
		Eta:             record.Eta,
		Status:          record.Status,
		Priority:        record.Priority,
		Notes:           record.Notes,
		CurrentStatus:   int(record.CurrentStatus),
		NextStep:        int(record.NextStep),
	}, nil
}

// JobsFromRecords adapts a summary list, skipping malformed records. The
// number of skipped records is returned so the caller can log it.
func JobsFromRecords(records []api.JobRecord) ([]model.Job, int) {
	jobs := make([]model.Job, 0, len(records))
	skipped := 0
	for _, record := range records {
		job, err := JobFromRecord(record)
		if err != nil {
			skipped++
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, skipped
}

// JobDetailFromRecord adapts a detail payload. The history log is re-sorted
// most-recent-first by createdDate: the service is assumed to return it that
// way but the engine must not advance from a stale entry if it does not.
func JobDetailFromRecord(record *api.JobDetailRecord) (model.JobDetail, error) {
	if record == nil {
		return model.JobDetail{}, errors.Wrap(ErrDataFormat, "empty job detail")
	}
	job, err := JobFromRecord(record.JobRecord)
	if err != nil {
		return model.JobDetail{}, err
	}

	detail := model.JobDetail{
		Job:            job,
		ClientName:     record.ClientName,
		ClientPhone:    record.ClientPhone,
		DriverName:     record.DriverName,
		TruckNo:        record.TruckNo,
		PickupDateTime: parseTime(record.PickupDateTime),
		Stops:          make([]model.Stop, 0, len(record.Stops)),
		StatusHistory:  make([]model.StatusHistoryEntry, 0, len(record.StatusHistory)),
		Attachments:    make([]string, 0, len(record.Attachments)),
	}

	for _, stop := range record.Stops {
		detail.Stops = append(detail.Stops, model.Stop{
			ID:            stop.ID,
			Address:       stop.Address,
			SequenceOrder: stop.SequenceOrder,
			Status:        stop.Status,
			ContactName:   stop.ContactName,
			ContactPhone:  stop.ContactPhone,
			Notes:         stop.Notes,
		})
	}

	for _, entry := range record.StatusHistory {
		notes := ""
		if entry.Notes != nil {
			notes = *entry.Notes
		}
		detail.StatusHistory = append(detail.StatusHistory, model.StatusHistoryEntry{
			ID:                entry.ID,
			JobID:             entry.JobID,
			CurrentStatusID:   int(entry.CurrentStatusID),
			CurrentStatusName: entry.CurrentStatusName,
			NextStatusID:      int(entry.NextStatusID),
			NextStatusName:    entry.NextStatusName,
			PendingStopID:     entry.PendingStopID,
			Notes:             notes,
			CreatedDate:       parseTime(entry.CreatedDate),
		})
	}

	// stable: entries with equal or unparsable timestamps keep wire order
	sort.SliceStable(detail.StatusHistory, func(i, j int) bool {
		return detail.StatusHistory[i].CreatedDate.After(detail.StatusHistory[j].CreatedDate)
	})

	for _, attachment := range record.Attachments {
		detail.Attachments = append(detail.Attachments, attachment.Name)
	}

	return detail, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
