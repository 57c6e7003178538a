package dispatcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pkg.jsn.cam/wordstream/pkg/wordstream/httpx"
	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
)

// StatusSource is what the status server reports on
type StatusSource interface {
	Status() protocol.StatusResponse
}

// StatusConfig holds status server configuration
type StatusConfig struct {
	Logger   *zap.Logger
	Gatherer prometheus.Gatherer // defaults to prometheus.DefaultGatherer
	Storage  Storage             // enables /api/runs when set
	Addr     string
}

// StatusServer serves health, run status, archived reports and metrics
type StatusServer struct {
	source  StatusSource
	storage Storage
	log     *zap.Logger
	mux     *http.ServeMux
	srv     *http.Server
}

// NewStatusServer creates a status server for source
func NewStatusServer(cfg StatusConfig, source StatusSource) *StatusServer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &StatusServer{
		source:  source,
		storage: cfg.Storage,
		log:     logger.Named("status"),
		mux:     http.NewServeMux(),
	}
	s.setupRoutes(gatherer)

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log),
	}

	return s
}

func (s *StatusServer) setupRoutes(gatherer prometheus.Gatherer) {
	s.mux.HandleFunc("GET /health", httpx.Wrap(s.handleHealth))
	s.mux.HandleFunc("GET /api/status", httpx.Wrap(s.handleStatus))
	s.mux.HandleFunc("GET /api/runs", httpx.Wrap(s.handleRunList))
	s.mux.HandleFunc("GET /api/runs/{runID}", httpx.Wrap(s.handleRun))

	opts := promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(s.log.Named("prom")),
		ErrorHandling: promhttp.HTTPErrorOnError,
		Timeout:       30 * time.Second,
	}
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, opts))
}

// Handler returns the routes, for tests and embedding
func (s *StatusServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves until ctx is done
func (s *StatusServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.log.Info("status server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutdown", zap.Error(err))
		}
	}()

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) error {
	httpx.OK(w, protocol.HealthResponse{Status: "ok"})
	return nil
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) error {
	httpx.OK(w, s.source.Status())
	return nil
}

func (s *StatusServer) handleRunList(w http.ResponseWriter, r *http.Request) error {
	if s.storage == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "report archive not configured")
		return nil
	}

	reports, err := s.storage.ListReports()
	if err != nil {
		return err
	}

	httpx.OK(w, map[string]any{"runs": reports})
	return nil
}

func (s *StatusServer) handleRun(w http.ResponseWriter, r *http.Request) error {
	if s.storage == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "report archive not configured")
		return nil
	}

	report, err := s.storage.LoadReport(r.PathValue("runID"))
	if errors.Is(err, ErrReportNotFound) {
		httpx.Error(w, http.StatusNotFound, "run not found")
		return nil
	}
	if err != nil {
		return err
	}

	httpx.OK(w, report)
	return nil
}
