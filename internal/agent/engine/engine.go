// Package engine drives job status transitions: it derives the next legal
// move from the status history log, enforces the evidence and location
// preconditions, submits the transition to the dispatch service and
// reconciles the session cache against freshly fetched detail.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	api "github.com/fleetworks/courier-agent/api/v1alpha1"
	"github.com/fleetworks/courier-agent/internal/agent/attachment"
	"github.com/fleetworks/courier-agent/internal/agent/client"
	"github.com/fleetworks/courier-agent/internal/agent/geo"
	"github.com/fleetworks/courier-agent/internal/agent/jobstore"
	"github.com/fleetworks/courier-agent/internal/agent/mappers"
	"github.com/fleetworks/courier-agent/internal/agent/model"
	"github.com/fleetworks/courier-agent/pkg/metrics"
)

const defaultCommitTimeout = 30 * time.Second

// metric outcome labels
const (
	outcomeSuccess    = "success"
	outcomeRejected   = "rejected"
	outcomeSyncFailed = "sync_failed"
)

type Engine struct {
	driverID    int64
	dispatch    client.Dispatch
	store       jobstore.Store
	locator     geo.Provider
	attachments *attachment.Registry

	// fallbackIdentity is used as CreatedBy when the job detail carries no
	// driver name.
	fallbackIdentity string

	now func() time.Time

	l        sync.Mutex
	inFlight map[int64]struct{}
}

func New(driverID int64, dispatch client.Dispatch, store jobstore.Store, locator geo.Provider, attachments *attachment.Registry, fallbackIdentity string) *Engine {
	return &Engine{
		driverID:         driverID,
		dispatch:         dispatch,
		store:            store,
		locator:          locator,
		attachments:      attachments,
		fallbackIdentity: fallbackIdentity,
		now:              time.Now,
		inFlight:         make(map[int64]struct{}),
	}
}

// RefreshSummaries replaces the session job list with a fresh fetch.
// Malformed summary records are skipped, not fatal.
func (e *Engine) RefreshSummaries(ctx context.Context) error {
	records, err := e.dispatch.ListJobs(ctx, e.driverID)
	if err != nil {
		metrics.IncreaseJobRefreshesTotalMetric(outcomeSyncFailed)
		return fmt.Errorf("%w: %s", ErrSyncFailed, err)
	}

	jobs, skipped := mappers.JobsFromRecords(records)
	if skipped > 0 {
		zap.S().Named("engine").Warnf("skipped %d malformed job summaries", skipped)
	}
	e.store.ReplaceAll(jobs)
	metrics.IncreaseJobRefreshesTotalMetric(outcomeSuccess)
	return nil
}

// LoadDetail fetches the full detail of one job and installs it in the
// session store.
func (e *Engine) LoadDetail(ctx context.Context, jobID int64) (model.JobDetail, error) {
	record, err := e.dispatch.GetJobDetail(ctx, jobID)
	if err != nil {
		return model.JobDetail{}, fmt.Errorf("%w: %s", ErrSyncFailed, err)
	}
	detail, err := mappers.JobDetailFromRecord(record)
	if err != nil {
		return model.JobDetail{}, err
	}
	e.store.SetDetail(detail)
	return detail, nil
}

// Commit drives one status transition for the given job:
//
//  1. derive the next transition from the latest history entry
//  2. enforce the attachment precondition (local, no network)
//  3. acquire the current location (local collaborator)
//  4. build and submit the status update request
//  5. clear staged evidence, re-fetch detail and reconcile the cache
//
// At most one commit may be in flight per job; concurrent calls are rejected
// with ErrAlreadyInProgress. On any failure before step 5 the staged
// attachments and the cache are left untouched so the operator can retry.
func (e *Engine) Commit(ctx context.Context, jobID int64, notes string) (model.JobDetail, error) {
	if !e.begin(jobID) {
		metrics.IncreaseStatusCommitsTotalMetric(outcomeRejected)
		return model.JobDetail{}, ErrAlreadyInProgress
	}
	defer e.end(jobID)

	ctx, cancel := context.WithTimeout(ctx, defaultCommitTimeout)
	defer cancel()

	detail, ok := e.store.Detail(jobID)
	if !ok {
		// cold cache: bootstrap the detail before validating
		var err error
		detail, err = e.LoadDetail(ctx, jobID)
		if err != nil {
			metrics.IncreaseStatusCommitsTotalMetric(outcomeSyncFailed)
			return model.JobDetail{}, err
		}
	}

	transition, ok := DeriveNextTransition(detail.StatusHistory)
	if !ok {
		metrics.IncreaseStatusCommitsTotalMetric(outcomeRejected)
		return model.JobDetail{}, ErrNoPendingTransition
	}

	collector := e.attachments.ForJob(jobID)
	staged := collector.List()
	if RequiresAttachment(transition.NextStatusID) && len(staged) == 0 {
		metrics.IncreaseStatusCommitsTotalMetric(outcomeRejected)
		return model.JobDetail{}, ErrMissingAttachment
	}

	fix, err := e.locator.CurrentPosition(ctx)
	if err != nil {
		metrics.IncreaseStatusCommitsTotalMetric(outcomeRejected)
		return model.JobDetail{}, fmt.Errorf("%w: %s", ErrLocationUnavailable, err)
	}
	if fix.Outcome != geo.Granted {
		metrics.IncreaseStatusCommitsTotalMetric(outcomeRejected)
		return model.JobDetail{}, ErrLocationUnavailable
	}

	request := api.StatusUpdateRequest{
		JobID:      jobID,
		StopID:     ResolveStopID(transition.NextStatusID, transition.PendingStopID),
		StatusID:   api.StageID(transition.NextStatusID),
		StatusTime: e.now(),
		Latitude:   fix.Position.Latitude,
		Longitude:  fix.Position.Longitude,
		Notes:      notes,
		CreatedBy:  e.createdBy(detail),
		Files:      fileUploads(staged),
	}

	zap.S().Named("engine").Infof("submitting status %d (%s) for job %d, stop %d",
		request.StatusID, StageLabel(transition.NextStatusID), jobID, request.StopID)

	if err := e.dispatch.SubmitStatusHistory(ctx, request); err != nil {
		metrics.IncreaseStatusCommitsTotalMetric(outcomeSyncFailed)
		return model.JobDetail{}, fmt.Errorf("%w: %s", ErrSyncFailed, err)
	}

	// the transition is committed remotely: staged evidence is consumed
	// even if the reconciliation fetch below fails
	collector.Clear()

	reconciled, err := e.LoadDetail(ctx, jobID)
	if err != nil {
		metrics.IncreaseStatusCommitsTotalMetric(outcomeSyncFailed)
		return model.JobDetail{}, err
	}

	metrics.IncreaseStatusCommitsTotalMetric(outcomeSuccess)
	return reconciled, nil
}

func (e *Engine) begin(jobID int64) bool {
	e.l.Lock()
	defer e.l.Unlock()
	if _, busy := e.inFlight[jobID]; busy {
		return false
	}
	e.inFlight[jobID] = struct{}{}
	return true
}

func (e *Engine) end(jobID int64) {
	e.l.Lock()
	defer e.l.Unlock()
	delete(e.inFlight, jobID)
}

func (e *Engine) createdBy(detail model.JobDetail) string {
	if detail.DriverName != "" {
		return detail.DriverName
	}
	if e.fallbackIdentity != "" {
		return e.fallbackIdentity
	}
	return "Driver"
}

func fileUploads(staged []attachment.Attachment) []api.FileUpload {
	files := make([]api.FileUpload, 0, len(staged))
	for _, item := range staged {
		files = append(files, api.FileUpload{
			Path:        strings.TrimPrefix(item.URI, "file://"),
			Name:        item.Name,
			ContentType: item.ContentType(),
		})
	}
	return files
}
