package agent

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/fleetworks/courier-agent/internal/agent/attachment"
	"github.com/fleetworks/courier-agent/internal/agent/client"
	"github.com/fleetworks/courier-agent/internal/agent/engine"
	"github.com/fleetworks/courier-agent/internal/agent/geo"
	"github.com/fleetworks/courier-agent/internal/agent/jobstore"
	"github.com/fleetworks/courier-agent/internal/agent/mappers"
	"github.com/fleetworks/courier-agent/internal/agent/model"
)

var validate = validator.New()

func RegisterApi(router *chi.Mux, eng *engine.Engine, store jobstore.Store, attachments *attachment.Registry, recorder *geo.Recorder, interceptor *client.Interceptor) {
	router.Get("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		_ = render.Render(w, r, VersionReply{Version: version})
	})
	router.Get("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		status := interceptor.GetStatus()
		reply := StatusReply{Connected: status.Connected, JobCount: len(store.List())}
		if status.LastSyncError != nil {
			reply.LastSyncError = status.LastSyncError.Error()
		}
		_ = render.Render(w, r, reply)
	})
	router.Get("/api/v1/jobs", func(w http.ResponseWriter, r *http.Request) {
		_ = render.Render(w, r, JobsReply{Jobs: store.List()})
	})
	router.Post("/api/v1/jobs/refresh", func(w http.ResponseWriter, r *http.Request) {
		if err := eng.RefreshSummaries(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		_ = render.Render(w, r, JobsReply{Jobs: store.List()})
	})
	router.Get("/api/v1/jobs/{jobID}", func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := jobIDParam(w, r)
		if !ok {
			return
		}
		detail, err := eng.LoadDetail(r.Context(), jobID)
		if err != nil {
			http.Error(w, err.Error(), commitErrorStatus(err))
			return
		}
		_ = render.Render(w, r, newJobDetailReply(detail))
	})
	router.Get("/api/v1/jobs/{jobID}/attachments", func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := jobIDParam(w, r)
		if !ok {
			return
		}
		_ = render.Render(w, r, AttachmentsReply{Attachments: attachments.ForJob(jobID).List()})
	})
	router.Post("/api/v1/jobs/{jobID}/attachments", func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := jobIDParam(w, r)
		if !ok {
			return
		}
		request := &AttachmentRequest{}
		if err := render.DecodeJSON(r.Body, request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate.Struct(request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		attachments.ForJob(jobID).Add(attachment.Attachment{
			URI:      request.URI,
			Name:     request.Name,
			Kind:     attachment.Kind(request.Kind),
			MimeType: request.MimeType,
		})
		w.WriteHeader(http.StatusCreated)
	})
	router.Delete("/api/v1/jobs/{jobID}/attachments/{index}", func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := jobIDParam(w, r)
		if !ok {
			return
		}
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			http.Error(w, "invalid attachment index", http.StatusBadRequest)
			return
		}
		if err := attachments.ForJob(jobID).RemoveAt(index); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	router.Put("/api/v1/position", func(w http.ResponseWriter, r *http.Request) {
		request := &PositionRequest{}
		if err := render.DecodeJSON(r.Body, request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate.Struct(request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := recorder.Record(geo.Position{Latitude: *request.Latitude, Longitude: *request.Longitude}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	router.Post("/api/v1/jobs/{jobID}/advance", func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := jobIDParam(w, r)
		if !ok {
			return
		}
		request := &AdvanceRequest{}
		if err := render.DecodeJSON(r.Body, request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		detail, err := eng.Commit(r.Context(), jobID, request.Notes)
		if err != nil {
			http.Error(w, err.Error(), commitErrorStatus(err))
			return
		}
		_ = render.Render(w, r, newJobDetailReply(detail))
	})
}

func jobIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil || jobID <= 0 {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return 0, false
	}
	return jobID, true
}

// commitErrorStatus maps the engine error taxonomy onto HTTP statuses for
// the local UI. Local validation failures are client-resolvable; sync
// failures are upstream.
func commitErrorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrAlreadyInProgress):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoPendingTransition), errors.Is(err, engine.ErrMissingAttachment):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrLocationUnavailable):
		return http.StatusPreconditionFailed
	case errors.Is(err, engine.ErrSyncFailed), errors.Is(err, mappers.ErrDataFormat):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type AdvanceRequest struct {
	Notes string `json:"notes"`
}

// PositionRequest uses pointers so a fix on the equator or the prime
// meridian is not mistaken for an absent field.
type PositionRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

type AttachmentRequest struct {
	URI      string `json:"uri" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=image document"`
	MimeType string `json:"mimeType"`
}

type VersionReply struct {
	Version string `json:"version"`
}

type StatusReply struct {
	Connected     bool   `json:"connected"`
	LastSyncError string `json:"lastSyncError,omitempty"`
	JobCount      int    `json:"jobCount"`
}

type JobsReply struct {
	Jobs []model.Job `json:"jobs"`
}

type AttachmentsReply struct {
	Attachments []attachment.Attachment `json:"attachments"`
}

// JobDetailReply decorates the detail with the derived next transition so
// the UI does not re-implement the transition rules.
type JobDetailReply struct {
	model.JobDetail

	NextTransition     *model.Transition `json:"nextTransition,omitempty"`
	RequiresAttachment bool              `json:"requiresAttachment"`
	CurrentStatusLabel string            `json:"currentStatusLabel"`
	CurrentStatusColor string            `json:"currentStatusColor"`
}

func newJobDetailReply(detail model.JobDetail) JobDetailReply {
	reply := JobDetailReply{JobDetail: detail}

	statusID := detail.CurrentStatus
	if latest, ok := detail.LatestHistory(); ok {
		statusID = latest.CurrentStatusID
	}
	reply.CurrentStatusLabel = engine.StageLabel(statusID)
	reply.CurrentStatusColor = engine.StageColor(statusID)

	if transition, ok := engine.DeriveNextTransition(detail.StatusHistory); ok {
		reply.NextTransition = &transition
		reply.RequiresAttachment = engine.RequiresAttachment(transition.NextStatusID)
	}
	return reply
}

func (v VersionReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (s StatusReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (j JobsReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (a AttachmentsReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (j JobDetailReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
