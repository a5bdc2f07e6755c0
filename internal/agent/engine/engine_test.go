package engine_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/fleetworks/courier-agent/api/v1alpha1"
	"github.com/fleetworks/courier-agent/internal/agent/attachment"
	"github.com/fleetworks/courier-agent/internal/agent/client"
	"github.com/fleetworks/courier-agent/internal/agent/engine"
	"github.com/fleetworks/courier-agent/internal/agent/geo"
	"github.com/fleetworks/courier-agent/internal/agent/jobstore"
	"github.com/fleetworks/courier-agent/internal/agent/model"
)

const (
	driverID = int64(7)
	jobID    = int64(1001)
)

func detailWithHistory(entries ...model.StatusHistoryEntry) model.JobDetail {
	return model.JobDetail{
		Job: model.Job{
			ID:             jobID,
			TrackingNumber: "D-1001",
			Title:          "Deliver - Order #1001",
		},
		DriverName:    "Suresh",
		StatusHistory: entries,
	}
}

func detailRecord(currentID, nextID api.StageID) *api.JobDetailRecord {
	return &api.JobDetailRecord{
		JobRecord: api.JobRecord{JobID: jobID, TrackingNumber: "D-1001"},
		StatusHistory: []api.StatusHistoryRecord{
			{
				JobID:           jobID,
				CurrentStatusID: currentID,
				NextStatusID:    nextID,
				CreatedDate:     time.Now().Format(time.RFC3339),
			},
		},
	}
}

var _ = Describe("Transition rules", func() {
	It("derives the next transition from the latest history entry", func() {
		transition, ok := engine.DeriveNextTransition([]model.StatusHistoryEntry{
			{CurrentStatusID: 2, NextStatusID: 3, NextStatusName: "On Pickup Site", PendingStopID: 0},
			{CurrentStatusID: 1, NextStatusID: 2, NextStatusName: "On the Way"},
		})
		Expect(ok).To(BeTrue())
		Expect(transition.NextStatusID).To(Equal(3))
		Expect(transition.NextStatusName).To(Equal("On Pickup Site"))
	})

	It("returns no transition for an empty log", func() {
		_, ok := engine.DeriveNextTransition(nil)
		Expect(ok).To(BeFalse())
	})

	It("returns no transition for a terminal entry", func() {
		_, ok := engine.DeriveNextTransition([]model.StatusHistoryEntry{
			{CurrentStatusID: 7, NextStatusID: 0},
		})
		Expect(ok).To(BeFalse())
	})

	It("never derives a backwards transition", func() {
		_, ok := engine.DeriveNextTransition([]model.StatusHistoryEntry{
			{CurrentStatusID: 5, NextStatusID: 3},
		})
		Expect(ok).To(BeFalse())
	})

	It("requires an attachment exactly for Loaded and Delivered", func() {
		for stage := 0; stage <= 8; stage++ {
			expected := stage == engine.StageLoaded || stage == engine.StageDelivered
			Expect(engine.RequiresAttachment(stage)).To(Equal(expected), fmt.Sprintf("stage %d", stage))
		}
	})

	It("scopes the stop id to drop-site and delivered stages only", func() {
		Expect(engine.ResolveStopID(engine.StageOnDropSite, 42)).To(Equal(int64(42)))
		Expect(engine.ResolveStopID(engine.StageDelivered, 42)).To(Equal(int64(42)))
		Expect(engine.ResolveStopID(engine.StageDelivered, 0)).To(Equal(int64(0)))
		Expect(engine.ResolveStopID(engine.StageOnTheWay, 42)).To(Equal(int64(0)))
		Expect(engine.ResolveStopID(engine.StageOnPickupSite, 42)).To(Equal(int64(0)))
	})
})

var _ = Describe("Stage catalog", func() {
	It("labels the seven lifecycle stages", func() {
		Expect(engine.StageLabel(engine.StageAssigned)).To(Equal("Job Assigned"))
		Expect(engine.StageLabel(engine.StageDelivered)).To(Equal("Delivered"))
		Expect(engine.StageColor(engine.StageOnTheWay)).To(Equal("#f59e0b"))
		Expect(engine.StageColor(engine.StageCompleted)).To(Equal("#64748b"))
	})

	It("falls back to a neutral default for out-of-range ids", func() {
		Expect(engine.StageLabel(0)).To(Equal("Unknown"))
		Expect(engine.StageLabel(99)).To(Equal("Unknown"))
		Expect(engine.StageColor(99)).To(Equal("#6b7280"))
	})
})

var _ = Describe("Commit", func() {
	var (
		dispatch    *client.DispatchMock
		locator     *geo.ProviderMock
		store       jobstore.Store
		attachments *attachment.Registry
		eng         *engine.Engine
	)

	BeforeEach(func() {
		dispatch = &client.DispatchMock{}
		locator = &geo.ProviderMock{
			CurrentPositionFunc: func(ctx context.Context) (geo.Fix, error) {
				return geo.Fix{Outcome: geo.Granted, Position: geo.Position{Latitude: 52.48, Longitude: -1.89}}, nil
			},
		}
		store = jobstore.NewStore()
		attachments = attachment.NewRegistry()
		eng = engine.New(driverID, dispatch, store, locator, attachments, "Fallback Driver")
	})

	It("commits a job-scoped transition without attachments", func() {
		store.SetDetail(detailWithHistory(model.StatusHistoryEntry{
			JobID: jobID, CurrentStatusID: 1, NextStatusID: 2, NextStatusName: "On the Way",
		}))
		dispatch.SubmitStatusHistoryFunc = func(ctx context.Context, request api.StatusUpdateRequest) error {
			Expect(request.JobID).To(Equal(jobID))
			Expect(request.StopID).To(Equal(int64(0)))
			Expect(request.StatusID).To(Equal(api.StageID(2)))
			Expect(request.Latitude).To(Equal(52.48))
			Expect(request.Longitude).To(Equal(-1.89))
			Expect(request.CreatedBy).To(Equal("Suresh"))
			Expect(request.Files).To(BeEmpty())
			return nil
		}
		dispatch.GetJobDetailFunc = func(ctx context.Context, id int64) (*api.JobDetailRecord, error) {
			return detailRecord(2, 3), nil
		}

		reconciled, err := eng.Commit(context.Background(), jobID, "on my way")
		Expect(err).To(BeNil())
		Expect(dispatch.SubmitStatusHistoryCalls()).To(HaveLen(1))
		Expect(dispatch.GetJobDetailCalls()).To(HaveLen(1))

		latest, ok := reconciled.LatestHistory()
		Expect(ok).To(BeTrue())
		Expect(latest.CurrentStatusID).To(Equal(2))

		// the cache reflects the freshly fetched detail
		cached, ok := store.Detail(jobID)
		Expect(ok).To(BeTrue())
		Expect(cached.StatusHistory).To(Equal(reconciled.StatusHistory))
	})

	It("rejects a Loaded transition without evidence before any I/O", func() {
		store.SetDetail(detailWithHistory(model.StatusHistoryEntry{
			JobID: jobID, CurrentStatusID: 3, NextStatusID: 4, NextStatusName: "Loaded",
		}))

		_, err := eng.Commit(context.Background(), jobID, "")
		Expect(err).To(MatchError(engine.ErrMissingAttachment))
		Expect(locator.CurrentPositionCalls()).To(BeEmpty())
		Expect(dispatch.SubmitStatusHistoryCalls()).To(BeEmpty())
		Expect(dispatch.GetJobDetailCalls()).To(BeEmpty())
	})

	It("commits a stop-scoped Delivered transition and clears the staged evidence", func() {
		store.SetDetail(detailWithHistory(model.StatusHistoryEntry{
			JobID: jobID, CurrentStatusID: 5, NextStatusID: 6, NextStatusName: "Delivered", PendingStopID: 42,
		}))
		attachments.ForJob(jobID).Add(attachment.Attachment{
			URI: "file:///tmp/pod.jpg", Name: "pod.jpg", Kind: attachment.KindImage,
		})
		dispatch.SubmitStatusHistoryFunc = func(ctx context.Context, request api.StatusUpdateRequest) error {
			Expect(request.StopID).To(Equal(int64(42)))
			Expect(request.StatusID).To(Equal(api.StageID(6)))
			Expect(request.Files).To(HaveLen(1))
			Expect(request.Files[0].Path).To(Equal("/tmp/pod.jpg"))
			Expect(request.Files[0].ContentType).To(Equal("image/jpeg"))
			return nil
		}
		dispatch.GetJobDetailFunc = func(ctx context.Context, id int64) (*api.JobDetailRecord, error) {
			return detailRecord(6, 7), nil
		}

		_, err := eng.Commit(context.Background(), jobID, "left with recipient")
		Expect(err).To(BeNil())
		Expect(attachments.ForJob(jobID).Len()).To(Equal(0))
	})

	It("fails with LocationUnavailable when access is denied", func() {
		store.SetDetail(detailWithHistory(model.StatusHistoryEntry{
			JobID: jobID, CurrentStatusID: 1, NextStatusID: 2,
		}))
		locator.CurrentPositionFunc = func(ctx context.Context) (geo.Fix, error) {
			return geo.Fix{Outcome: geo.Denied}, nil
		}

		_, err := eng.Commit(context.Background(), jobID, "")
		Expect(err).To(MatchError(engine.ErrLocationUnavailable))
		Expect(dispatch.SubmitStatusHistoryCalls()).To(BeEmpty())
	})

	It("fails with NoPendingTransition on an empty history log without any I/O", func() {
		store.SetDetail(detailWithHistory())

		_, err := eng.Commit(context.Background(), jobID, "")
		Expect(err).To(MatchError(engine.ErrNoPendingTransition))
		Expect(locator.CurrentPositionCalls()).To(BeEmpty())
		Expect(dispatch.SubmitStatusHistoryCalls()).To(BeEmpty())
		Expect(dispatch.GetJobDetailCalls()).To(BeEmpty())
	})

	It("leaves state untouched when the submission fails", func() {
		store.SetDetail(detailWithHistory(model.StatusHistoryEntry{
			JobID: jobID, CurrentStatusID: 5, NextStatusID: 6, PendingStopID: 42,
		}))
		attachments.ForJob(jobID).Add(attachment.Attachment{
			URI: "/tmp/pod.jpg", Name: "pod.jpg", Kind: attachment.KindImage,
		})
		dispatch.SubmitStatusHistoryFunc = func(ctx context.Context, request api.StatusUpdateRequest) error {
			return fmt.Errorf("boom")
		}

		_, err := eng.Commit(context.Background(), jobID, "note")
		Expect(err).To(MatchError(engine.ErrSyncFailed))

		// evidence and notes are kept so the operator can simply retry
		Expect(attachments.ForJob(jobID).Len()).To(Equal(1))
		Expect(dispatch.GetJobDetailCalls()).To(BeEmpty())
	})

	It("rejects a second commit for the same job while one is in flight", func() {
		store.SetDetail(detailWithHistory(model.StatusHistoryEntry{
			JobID: jobID, CurrentStatusID: 1, NextStatusID: 2,
		}))

		release := make(chan struct{})
		dispatch.SubmitStatusHistoryFunc = func(ctx context.Context, request api.StatusUpdateRequest) error {
			<-release
			return nil
		}
		dispatch.GetJobDetailFunc = func(ctx context.Context, id int64) (*api.JobDetailRecord, error) {
			return detailRecord(2, 3), nil
		}

		firstDone := make(chan error, 1)
		go func() {
			_, err := eng.Commit(context.Background(), jobID, "")
			firstDone <- err
		}()

		Eventually(func() int {
			return len(dispatch.SubmitStatusHistoryCalls())
		}).Should(Equal(1))

		_, err := eng.Commit(context.Background(), jobID, "")
		Expect(err).To(MatchError(engine.ErrAlreadyInProgress))

		close(release)
		Expect(<-firstDone).To(BeNil())

		// exactly one submission went out
		Expect(dispatch.SubmitStatusHistoryCalls()).To(HaveLen(1))
	})

	It("bootstraps the detail on a cold cache before validating", func() {
		dispatch.GetJobDetailFunc = func(ctx context.Context, id int64) (*api.JobDetailRecord, error) {
			return detailRecord(3, 4), nil
		}

		_, err := eng.Commit(context.Background(), jobID, "")
		Expect(err).To(MatchError(engine.ErrMissingAttachment))
		Expect(dispatch.GetJobDetailCalls()).To(HaveLen(1))
		Expect(dispatch.SubmitStatusHistoryCalls()).To(BeEmpty())
	})
})

var _ = Describe("RefreshSummaries", func() {
	It("replaces the job list and skips malformed records", func() {
		dispatch := &client.DispatchMock{
			ListJobsFunc: func(ctx context.Context, id int64) ([]api.JobRecord, error) {
				Expect(id).To(Equal(driverID))
				return []api.JobRecord{
					{JobID: 1, TrackingNumber: "D-1"},
					{TrackingNumber: "missing-id"},
					{JobID: 2, TrackingNumber: "D-2"},
				}, nil
			},
		}
		store := jobstore.NewStore()
		eng := engine.New(driverID, dispatch, store, &geo.ProviderMock{}, attachment.NewRegistry(), "")

		Expect(eng.RefreshSummaries(context.Background())).To(Succeed())
		jobs := store.List()
		Expect(jobs).To(HaveLen(2))
		Expect(jobs[0].TrackingNumber).To(Equal("D-1"))
		Expect(jobs[1].TrackingNumber).To(Equal("D-2"))
	})

	It("surfaces a fetch failure as SyncFailed", func() {
		dispatch := &client.DispatchMock{
			ListJobsFunc: func(ctx context.Context, id int64) ([]api.JobRecord, error) {
				return nil, fmt.Errorf("connection refused")
			},
		}
		eng := engine.New(driverID, dispatch, jobstore.NewStore(), &geo.ProviderMock{}, attachment.NewRegistry(), "")

		err := eng.RefreshSummaries(context.Background())
		Expect(err).To(MatchError(engine.ErrSyncFailed))
	})
})
