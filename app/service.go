package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/studytime/api"
	"github.com/kilianp07/studytime/config"
	coremetrics "github.com/kilianp07/studytime/core/metrics"
	coremon "github.com/kilianp07/studytime/core/monitoring"
	"github.com/kilianp07/studytime/core/prediction"
	"github.com/kilianp07/studytime/infra/logger"
	"github.com/kilianp07/studytime/infra/metrics"
	"github.com/kilianp07/studytime/infra/monitoring"
	_ "github.com/kilianp07/studytime/infra/mqtt" // registers the mqtt sink
	"github.com/kilianp07/studytime/internal/eventbus"
)

// Service wires the prediction API to the configured metrics sinks.
type Service struct {
	Router *gin.Engine

	cfg  *config.Config
	bus  *eventbus.Bus[coremetrics.Event]
	sink coremetrics.MetricsSink
	log  logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logOpts := logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	}
	if err := logger.Configure(logOpts); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("service")
	gin.SetMode(cfg.Server.Mode)

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		resetGlobals()
		return nil, err
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		resetGlobals()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.New[coremetrics.Event](cfg.Metrics.BusBuffer)
	router, err := api.NewRouter(prediction.NewFormulaEngine(), bus, logger.New("http"))
	if err != nil {
		bus.Close()
		_ = closeSink(sink)
		resetGlobals()
		return nil, fmt.Errorf("router: %w", err)
	}
	return &Service{Router: router, cfg: cfg, bus: bus, sink: sink, log: logg}, nil
}

// Run listens on the configured address and serves until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until the context is cancelled, then shuts the
// HTTP server down within the configured timeout.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	collectorDone := metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("collector"))
	if s.cfg.Metrics.HasSink("prometheus") {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddress); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Handler:      s.Router,
		ReadTimeout:  s.cfg.Server.ReadTimeout(),
		WriteTimeout: s.cfg.Server.WriteTimeout(),
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("shutdown: %v", err)
	}
	cancel()
	<-collectorDone
	s.log.Infof("server stopped")

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		coremon.CaptureException(serveErr, map[string]string{"component": "http"})
		return serveErr
	}
	return nil
}

// Close releases the event bus and the metrics sinks, then flushes pending
// error reports.
func (s *Service) Close() error {
	s.bus.Close()
	err := closeSink(s.sink)
	coremon.Flush(2 * time.Second)
	if lerr := logger.Close(); err == nil {
		err = lerr
	}
	return err
}

// resetGlobals undoes the process-wide logger and monitor setup of a New
// call that failed.
func resetGlobals() {
	coremon.Init(coremon.NopMonitor{})
	_ = logger.Configure(logger.Options{})
}

func closeSink(sink coremetrics.MetricsSink) error {
	if c, ok := sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
