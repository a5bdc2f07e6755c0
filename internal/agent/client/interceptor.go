package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	api "github.com/fleetworks/courier-agent/api/v1alpha1"
)

// ConnectionStatus is the agent's view of its link to the dispatch service,
// reported on the local /api/v1/status endpoint.
type ConnectionStatus struct {
	Connected      bool
	LastSyncError  error
	LastSyncedAt   time.Time
	LastSubmitOK   *bool
	LastSubmitedAt time.Time
}

// Interceptor wraps a Dispatch and records connectivity from the outcome of
// every call. A net.OpError means the service is unreachable; any other
// error means we reached it but the call failed.
type Interceptor struct {
	client Dispatch
	status ConnectionStatus
	l      sync.Mutex
}

var _ Dispatch = (*Interceptor)(nil)

func NewInterceptor(client Dispatch) *Interceptor {
	return &Interceptor{
		client: client,
		status: ConnectionStatus{Connected: false},
	}
}

func (i *Interceptor) GetStatus() ConnectionStatus {
	i.l.Lock()
	defer i.l.Unlock()
	return i.status
}

func (i *Interceptor) ListJobs(ctx context.Context, driverID int64) ([]api.JobRecord, error) {
	records, err := i.client.ListJobs(ctx, driverID)
	i.record(err)
	return records, err
}

func (i *Interceptor) GetJobDetail(ctx context.Context, jobID int64) (*api.JobDetailRecord, error) {
	record, err := i.client.GetJobDetail(ctx, jobID)
	i.record(err)
	return record, err
}

func (i *Interceptor) SubmitStatusHistory(ctx context.Context, request api.StatusUpdateRequest) error {
	err := i.client.SubmitStatusHistory(ctx, request)

	i.l.Lock()
	defer i.l.Unlock()
	i.status.LastSubmitedAt = time.Now()
	if err != nil {
		var netOpErr *net.OpError
		if errors.As(err, &netOpErr) {
			i.status.Connected = false
			i.status.LastSyncError = err
			return err
		}
		i.status.Connected = true
		i.status.LastSyncError = err
		i.status.LastSubmitOK = ptr(false)
		return err
	}

	i.status.Connected = true
	i.status.LastSyncError = nil
	i.status.LastSubmitOK = ptr(true)
	return nil
}

func (i *Interceptor) record(err error) {
	i.l.Lock()
	defer i.l.Unlock()

	i.status.LastSyncedAt = time.Now()
	if err != nil {
		var netOpErr *net.OpError
		if errors.As(err, &netOpErr) {
			i.status.Connected = false
		} else {
			i.status.Connected = true
		}
		i.status.LastSyncError = err
		return
	}
	i.status.Connected = true
	i.status.LastSyncError = nil
}

func ptr(b bool) *bool {
	return &b
}
