package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"txview/internal/application"
	"txview/internal/domain"
	"txview/internal/infrastructure/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type StateSource interface {
	State() application.ViewState
	Done() <-chan struct{}
}

type PageRenderer interface {
	RenderPage(w io.Writer, state application.ViewState) error
}

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

type Server struct {
	view      StateSource
	renderer  PageRenderer
	metrics   *Metrics
	buildInfo BuildInfo
}

func NewServer(view StateSource, renderer PageRenderer, metrics *Metrics, buildInfo BuildInfo) (*Server, error) {
	if view == nil || renderer == nil {
		return nil, errors.New("http server dependencies must not be nil")
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{view: view, renderer: renderer, metrics: metrics, buildInfo: buildInfo}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/version", s.handleVersion)
	return mux
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := telemetry.ExtractHTTPHeaders(r.Context(), r.Header)
	_, span := otel.Tracer("txview/httpapi").Start(ctx, "page.render", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	state := s.view.State()
	span.SetAttributes(attribute.String("view.phase", string(state.Phase)))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.renderer.RenderPage(w, state); err != nil {
		s.metrics.IncRenderErr()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("page render failed", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	s.metrics.IncRender()
}

type transactionsResponse struct {
	Phase  application.Phase         `json:"phase"`
	Error  string                    `json:"error,omitempty"`
	Groups []domain.MessageTypeGroup `json:"groups"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	state := s.view.State()
	payload := transactionsResponse{Phase: state.Phase, Error: state.Error, Groups: []domain.MessageTypeGroup{}}
	if groups := state.Transactions.Groups(); groups != nil {
		payload.Groups = groups
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.view.Done():
		respondJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
			"phase":  string(s.view.State().Phase),
		})
	default:
		respondError(w, http.StatusServiceUnavailable, "fetch pending")
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	snap := s.metrics.Snapshot()

	fmt.Fprintf(w, "txview_uptime_seconds %.0f\n", time.Since(snap.StartTime).Seconds())
	fmt.Fprintf(w, "txview_fetch_started_total %d\n", snap.FetchStarted)
	fmt.Fprintf(w, "txview_fetch_succeeded_total %d\n", snap.FetchSucceeded)
	for _, kind := range []application.ErrorKind{
		application.ErrorKindTransport,
		application.ErrorKindDecode,
		application.ErrorKindShape,
		application.ErrorKindCanceled,
		application.ErrorKindUnknown,
	} {
		fmt.Fprintf(w, "txview_fetch_failed_total{kind=%q} %d\n", kind, snap.FetchFailed[kind])
	}
	fmt.Fprintf(w, "txview_discarded_updates_total %d\n", snap.DiscardedUpdates)
	fmt.Fprintf(w, "txview_last_fetch_seconds %.3f\n", snap.LastFetchDuration.Seconds())
	fmt.Fprintf(w, "txview_groups %d\n", snap.Groups)
	fmt.Fprintf(w, "txview_transactions %d\n", snap.Transactions)
	fmt.Fprintf(w, "txview_renders_total %d\n", snap.Renders)
	fmt.Fprintf(w, "txview_render_errors_total %d\n", snap.RenderErrs)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.buildInfo)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
