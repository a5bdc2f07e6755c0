package agent

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	jitterbug "github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	"github.com/fleetworks/courier-agent/internal/agent/attachment"
	"github.com/fleetworks/courier-agent/internal/agent/client"
	"github.com/fleetworks/courier-agent/internal/agent/config"
	"github.com/fleetworks/courier-agent/internal/agent/engine"
	"github.com/fleetworks/courier-agent/internal/agent/geo"
	"github.com/fleetworks/courier-agent/internal/agent/jobstore"
)

const defaultAgentPort = 3333

// This variable is set during build time.
// It contains the version of the code.
var version string

// New creates a new agent.
func New(config *config.Config) *Agent {
	return &Agent{
		config: config,
	}
}

type Agent struct {
	config *config.Config
	server *Server
}

func (a *Agent) Run(ctx context.Context) error {
	zap.S().Infof("Starting agent: %s", version)
	defer zap.S().Infof("Agent stopped")
	zap.S().Infof("Configuration: %s", a.config.String())

	dispatchClient, err := client.NewDispatch(&a.config.DispatchService.Config)
	if err != nil {
		return err
	}
	interceptor := client.NewInterceptor(dispatchClient)

	credentials, err := a.config.LoadCredentials()
	if err != nil {
		return err
	}

	store := jobstore.NewStore()
	attachments := attachment.NewRegistry()
	positionFile := filepath.Join(a.config.DataDir, config.PositionFile)
	locator := geo.NewFileProvider(positionFile, a.config.PositionMaxAge.Duration)
	recorder := geo.NewRecorder(positionFile)
	eng := engine.New(a.config.DriverID, interceptor, store, locator, attachments, credentials.DriverName)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	ctx, cancel := context.WithCancel(ctx)
	a.start(ctx, eng, store, attachments, recorder, interceptor)

	<-sig

	zap.S().Info("stopping agent...")

	a.Stop()
	cancel()

	return nil
}

func (a *Agent) Stop() {
	serverCh := make(chan any)
	a.server.Stop(serverCh)

	<-serverCh
	zap.S().Info("server stopped")
}

func (a *Agent) start(ctx context.Context, eng *engine.Engine, store jobstore.Store, attachments *attachment.Registry, recorder *geo.Recorder, interceptor *client.Interceptor) {
	// start the local UI server
	a.server = NewServer(defaultAgentPort)
	go a.server.Start(eng, store, attachments, recorder, interceptor)

	// initial job list load, then the jittered refresh loop
	go func() {
		if err := eng.RefreshSummaries(ctx); err != nil {
			zap.S().Named("agent").Warnf("initial job refresh failed: %v", err)
		}

		refreshTicker := jitterbug.New(a.config.RefreshInterval.Duration, &jitterbug.Norm{Stdev: 30 * time.Millisecond, Mean: 0})
		defer refreshTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-refreshTicker.C:
			}

			if err := eng.RefreshSummaries(ctx); err != nil {
				zap.S().Named("agent").Warnf("job refresh failed: %v", err)
			}
		}
	}()
}
