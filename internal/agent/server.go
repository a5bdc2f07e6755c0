package agent

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fleetworks/courier-agent/internal/agent/attachment"
	"github.com/fleetworks/courier-agent/internal/agent/client"
	"github.com/fleetworks/courier-agent/internal/agent/engine"
	"github.com/fleetworks/courier-agent/internal/agent/geo"
	"github.com/fleetworks/courier-agent/internal/agent/jobstore"
)

/*
Server is the loopback REST API consumed by the handset UI:
- /api/v1/jobs lists the cached job summaries
- /api/v1/jobs/{jobID} fetches fresh detail and reconciles the cache
- /api/v1/jobs/{jobID}/attachments stages evidence for the next transition
- /api/v1/jobs/{jobID}/advance commits the next status transition
- /api/v1/position records the latest position fix
- /api/v1/status reports connectivity to the dispatch service
- /metrics exposes prometheus counters
*/
type Server struct {
	port       int
	restServer *http.Server
}

func NewServer(port int) *Server {
	return &Server{
		port: port,
	}
}

func (s *Server) Start(eng *engine.Engine, store jobstore.Store, attachments *attachment.Registry, recorder *geo.Recorder, interceptor *client.Interceptor) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)

	RegisterApi(router, eng, store, attachments, recorder, interceptor)
	router.Handle("/metrics", promhttp.Handler())

	// collaborator surface for the on-device UI only; never exposed
	s.restServer = &http.Server{Addr: fmt.Sprintf("127.0.0.1:%d", s.port), Handler: router}

	err := s.restServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		zap.S().Named("server").Fatalf("failed to start server: %v", err)
	}
}

func (s *Server) Stop(stopCh chan any) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	doneCh := make(chan any)

	go func() {
		err := s.restServer.Shutdown(shutdownCtx)
		if err != nil {
			zap.S().Named("server").Errorf("failed to graceful shutdown the server: %s", err)
		}
		close(doneCh)
	}()

	<-doneCh

	close(stopCh)
}
