package client

import (
	"context"

	api "github.com/fleetworks/courier-agent/api/v1alpha1"
)

// Dispatch is the client interface for the dispatch service: the job
// summary list, the per-job detail (stops + status history) and the status
// history submission endpoint.
//
//go:generate moq -fmt=goimports -out zz_generated_dispatch.go . Dispatch
type Dispatch interface {
	// ListJobs fetches the summaries of the jobs assigned to the driver.
	ListJobs(ctx context.Context, driverID int64) ([]api.JobRecord, error)
	// GetJobDetail fetches the full detail of one job, including its
	// status history log (most recent first) and stops.
	GetJobDetail(ctx context.Context, jobID int64) (*api.JobDetailRecord, error)
	// SubmitStatusHistory appends a status transition to the job's history
	// log, streaming any evidence files as multipart Files parts.
	SubmitStatusHistory(ctx context.Context, request api.StatusUpdateRequest) error
}
