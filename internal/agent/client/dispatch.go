package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"

	api "github.com/fleetworks/courier-agent/api/v1alpha1"
	"github.com/fleetworks/courier-agent/pkg/requestid"
)

var _ Dispatch = (*dispatch)(nil)

type dispatch struct {
	server string
	client *http.Client
}

// NewDispatch returns a Dispatch backed by the HTTP API named in config.
func NewDispatch(config *Config) (Dispatch, error) {
	httpClient, err := NewHTTPClientFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("NewDispatch: creating HTTP client %w", err)
	}
	return &dispatch{
		server: strings.TrimSuffix(config.Service.Server, "/"),
		client: httpClient,
	}, nil
}

func (d *dispatch) ListJobs(ctx context.Context, driverID int64) ([]api.JobRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/Jobs/%d", d.server, driverID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(middleware.RequestIDHeader, requestid.FromContext(ctx))

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("list jobs failed: %s", resp.Status)
	}

	var records []api.JobRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, errors.Wrap(err, "decoding job list")
	}
	return records, nil
}

func (d *dispatch) GetJobDetail(ctx context.Context, jobID int64) (*api.JobDetailRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/Jobs/detail/%d", d.server, jobID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(middleware.RequestIDHeader, requestid.FromContext(ctx))

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("get job detail failed: %s", resp.Status)
	}

	record := &api.JobDetailRecord{}
	if err := json.NewDecoder(resp.Body).Decode(record); err != nil {
		return nil, errors.Wrap(err, "decoding job detail")
	}
	return record, nil
}

func (d *dispatch) SubmitStatusHistory(ctx context.Context, request api.StatusUpdateRequest) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"JobId":      strconv.FormatInt(request.JobID, 10),
		"StopId":     strconv.FormatInt(request.StopID, 10),
		"StatusId":   strconv.Itoa(int(request.StatusID)),
		"StatusTime": request.StatusTime.UTC().Format(time.RFC3339),
		"Latitude":   strconv.FormatFloat(request.Latitude, 'f', -1, 64),
		"Longitude":  strconv.FormatFloat(request.Longitude, 'f', -1, 64),
		"Notes":      request.Notes,
		"CreatedBy":  request.CreatedBy,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return errors.Wrapf(err, "writing field %s", name)
		}
	}

	for _, file := range request.Files {
		if err := appendFilePart(writer, file); err != nil {
			return err
		}
	}

	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "closing multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.server+"/JobStatusHistory", body)
	if err != nil {
		return err
	}
	// only the multipart boundary content type; the endpoint expects no
	// other custom headers
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(middleware.RequestIDHeader, requestid.FromContext(ctx))

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("status history submission failed: %s", resp.Status)
	}
	return nil
}

func appendFilePart(writer *multipart.Writer, file api.FileUpload) error {
	source, err := os.Open(file.Path)
	if err != nil {
		return errors.Wrapf(err, "opening attachment %s", file.Name)
	}
	defer source.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="Files"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", file.ContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return errors.Wrapf(err, "creating part for %s", file.Name)
	}
	if _, err := io.Copy(part, source); err != nil {
		return errors.Wrapf(err, "streaming attachment %s", file.Name)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
