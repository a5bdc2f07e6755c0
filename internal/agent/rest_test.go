package agent_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/fleetworks/courier-agent/api/v1alpha1"
	"github.com/fleetworks/courier-agent/internal/agent"
	"github.com/fleetworks/courier-agent/internal/agent/attachment"
	"github.com/fleetworks/courier-agent/internal/agent/client"
	"github.com/fleetworks/courier-agent/internal/agent/engine"
	"github.com/fleetworks/courier-agent/internal/agent/geo"
	"github.com/fleetworks/courier-agent/internal/agent/jobstore"
	"github.com/fleetworks/courier-agent/internal/agent/model"
)

var _ = Describe("Local API", func() {
	var (
		dispatchMock *client.DispatchMock
		store        jobstore.Store
		attachments  *attachment.Registry
		positionFile string
		srv          *httptest.Server
	)

	BeforeEach(func() {
		dispatchMock = &client.DispatchMock{}
		store = jobstore.NewStore()
		attachments = attachment.NewRegistry()
		positionFile = filepath.Join(GinkgoT().TempDir(), "position.json")
		locator := &geo.ProviderMock{
			CurrentPositionFunc: func(ctx context.Context) (geo.Fix, error) {
				return geo.Fix{Outcome: geo.Granted, Position: geo.Position{Latitude: 52.4862, Longitude: -1.8904}}, nil
			},
		}
		interceptor := client.NewInterceptor(dispatchMock)
		eng := engine.New(7, interceptor, store, locator, attachments, "Fallback Driver")

		router := chi.NewRouter()
		agent.RegisterApi(router, eng, store, attachments, geo.NewRecorder(positionFile), interceptor)
		srv = httptest.NewServer(router)
	})

	AfterEach(func() {
		srv.Close()
	})

	getJSON := func(path string, out any) *http.Response {
		resp, err := http.Get(srv.URL + path)
		Expect(err).To(BeNil())
		if out != nil {
			defer resp.Body.Close()
			Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
		}
		return resp
	}

	postJSON := func(path string, body string) *http.Response {
		resp, err := http.Post(srv.URL+path, "application/json", bytes.NewBufferString(body))
		Expect(err).To(BeNil())
		return resp
	}

	Context("jobs", func() {
		It("lists the session jobs in store order", func() {
			store.ReplaceAll([]model.Job{
				{ID: 1001, TrackingNumber: "D-1001"},
				{ID: 1002, TrackingNumber: "D-1002"},
			})

			var reply struct {
				Jobs []model.Job `json:"jobs"`
			}
			resp := getJSON("/api/v1/jobs", &reply)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(reply.Jobs).To(HaveLen(2))
			Expect(reply.Jobs[0].TrackingNumber).To(Equal("D-1001"))
		})

		It("refreshes the job list on demand", func() {
			dispatchMock.ListJobsFunc = func(ctx context.Context, driverID int64) ([]api.JobRecord, error) {
				Expect(driverID).To(Equal(int64(7)))
				return []api.JobRecord{{JobID: 1001, TrackingNumber: "D-1001"}}, nil
			}

			resp := postJSON("/api/v1/jobs/refresh", "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(store.List()).To(HaveLen(1))
		})

		It("reports an unreachable dispatch service as a bad gateway", func() {
			dispatchMock.ListJobsFunc = func(ctx context.Context, driverID int64) ([]api.JobRecord, error) {
				return nil, &net.OpError{Op: "dial", Err: fmt.Errorf("connection refused")}
			}

			resp := postJSON("/api/v1/jobs/refresh", "")
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
		})

		It("serves job detail decorated with the derived transition", func() {
			dispatchMock.GetJobDetailFunc = func(ctx context.Context, jobID int64) (*api.JobDetailRecord, error) {
				return &api.JobDetailRecord{
					JobRecord: api.JobRecord{JobID: 1001},
					StatusHistory: []api.StatusHistoryRecord{
						{JobID: 1001, CurrentStatusID: 3, CurrentStatusName: "On Pickup Site", NextStatusID: 4, NextStatusName: "Loaded", CreatedDate: "2025-03-01T10:00:00Z"},
					},
				}, nil
			}

			var reply struct {
				NextTransition *struct {
					NextStatusID int `json:"nextStatusId"`
				} `json:"nextTransition"`
				RequiresAttachment bool   `json:"requiresAttachment"`
				CurrentStatusLabel string `json:"currentStatusLabel"`
			}
			resp := getJSON("/api/v1/jobs/1001", &reply)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(reply.NextTransition).ToNot(BeNil())
			Expect(reply.NextTransition.NextStatusID).To(Equal(4))
			Expect(reply.RequiresAttachment).To(BeTrue())
			Expect(reply.CurrentStatusLabel).To(Equal("On Pickup Site"))
		})

		It("rejects a malformed job id", func() {
			resp := getJSON("/api/v1/jobs/not-a-number", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Context("attachments", func() {
		It("stages and lists evidence for a job", func() {
			resp := postJSON("/api/v1/jobs/1001/attachments",
				`{"uri": "file:///tmp/pod.jpg", "name": "pod.jpg", "kind": "image"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var reply struct {
				Attachments []attachment.Attachment `json:"attachments"`
			}
			getJSON("/api/v1/jobs/1001/attachments", &reply)
			Expect(reply.Attachments).To(HaveLen(1))
			Expect(reply.Attachments[0].Name).To(Equal("pod.jpg"))

			var other struct {
				Attachments []attachment.Attachment `json:"attachments"`
			}
			getJSON("/api/v1/jobs/1002/attachments", &other)
			Expect(other.Attachments).To(BeEmpty())
		})

		It("rejects an unknown evidence kind", func() {
			resp := postJSON("/api/v1/jobs/1001/attachments",
				`{"uri": "file:///tmp/pod.xyz", "name": "pod.xyz", "kind": "hologram"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("removes staged evidence by index", func() {
			attachments.ForJob(1001).Add(attachment.Attachment{Name: "pod.jpg"})

			req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/jobs/1001/attachments/0", nil)
			Expect(err).To(BeNil())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).To(BeNil())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(attachments.ForJob(1001).Len()).To(BeZero())
		})

		It("reports a missing evidence index", func() {
			req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/jobs/1001/attachments/5", nil)
			Expect(err).To(BeNil())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).To(BeNil())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Context("advance", func() {
		history := func(currentID, nextID api.StageID) []api.StatusHistoryRecord {
			return []api.StatusHistoryRecord{{
				JobID:           1001,
				CurrentStatusID: currentID,
				NextStatusID:    nextID,
				CreatedDate:     time.Now().UTC().Format(time.RFC3339),
			}}
		}

		It("commits a pending transition and returns the reconciled detail", func() {
			stage := api.StageID(1)
			dispatchMock.GetJobDetailFunc = func(ctx context.Context, jobID int64) (*api.JobDetailRecord, error) {
				return &api.JobDetailRecord{
					JobRecord:     api.JobRecord{JobID: 1001},
					StatusHistory: history(stage, stage+1),
				}, nil
			}
			dispatchMock.SubmitStatusHistoryFunc = func(ctx context.Context, request api.StatusUpdateRequest) error {
				Expect(request.StatusID).To(Equal(api.StageID(2)))
				stage = 2
				return nil
			}

			resp := postJSON("/api/v1/jobs/1001/advance", `{"notes": "rolling"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(dispatchMock.SubmitStatusHistoryCalls()).To(HaveLen(1))

			detail, ok := store.Detail(1001)
			Expect(ok).To(BeTrue())
			Expect(detail.StatusHistory[0].CurrentStatusID).To(Equal(2))
		})

		It("rejects a job with no pending transition", func() {
			store.SetDetail(model.JobDetail{Job: model.Job{ID: 1001}})

			resp := postJSON("/api/v1/jobs/1001/advance", `{}`)
			Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))
		})

		It("rejects an evidence-gated transition with nothing staged", func() {
			dispatchMock.GetJobDetailFunc = func(ctx context.Context, jobID int64) (*api.JobDetailRecord, error) {
				return &api.JobDetailRecord{
					JobRecord:     api.JobRecord{JobID: 1001},
					StatusHistory: history(3, 4),
				}, nil
			}

			resp := postJSON("/api/v1/jobs/1001/advance", `{}`)
			Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))
			Expect(dispatchMock.SubmitStatusHistoryCalls()).To(BeEmpty())
		})

		It("reports a failed submission as a bad gateway", func() {
			dispatchMock.GetJobDetailFunc = func(ctx context.Context, jobID int64) (*api.JobDetailRecord, error) {
				return &api.JobDetailRecord{
					JobRecord:     api.JobRecord{JobID: 1001},
					StatusHistory: history(1, 2),
				}, nil
			}
			dispatchMock.SubmitStatusHistoryFunc = func(ctx context.Context, request api.StatusUpdateRequest) error {
				return fmt.Errorf("status history submission failed: 500 Internal Server Error")
			}

			resp := postJSON("/api/v1/jobs/1001/advance", `{}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
		})
	})

	Context("position", func() {
		It("records a published fix", func() {
			req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/position",
				bytes.NewBufferString(`{"latitude": 52.4862, "longitude": -1.8904}`))
			Expect(err).To(BeNil())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).To(BeNil())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

			contents, err := os.ReadFile(positionFile)
			Expect(err).To(BeNil())
			var position geo.Position
			Expect(json.Unmarshal(contents, &position)).To(Succeed())
			Expect(position.Latitude).To(Equal(52.4862))
			Expect(position.RecordedAt.IsZero()).To(BeFalse())
		})

		It("rejects a fix without coordinates", func() {
			req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/position",
				bytes.NewBufferString(`{"latitude": 52.4862}`))
			Expect(err).To(BeNil())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).To(BeNil())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Context("status", func() {
		It("reports connectivity and the session job count", func() {
			store.ReplaceAll([]model.Job{{ID: 1001}})

			var reply struct {
				Connected bool `json:"connected"`
				JobCount  int  `json:"jobCount"`
			}
			resp := getJSON("/api/v1/status", &reply)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(reply.Connected).To(BeFalse())
			Expect(reply.JobCount).To(Equal(1))
		})

		It("reflects a successful sync", func() {
			dispatchMock.ListJobsFunc = func(ctx context.Context, driverID int64) ([]api.JobRecord, error) {
				return []api.JobRecord{}, nil
			}
			postJSON("/api/v1/jobs/refresh", "")

			var reply struct {
				Connected bool `json:"connected"`
			}
			getJSON("/api/v1/status", &reply)
			Expect(reply.Connected).To(BeTrue())
		})
	})
})
