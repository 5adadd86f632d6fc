// Package api exposes scoring, ranking, skill verification and user skill
// endpoints over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"collabquest/internal/common/logger"
	"collabquest/internal/common/metrics"
	"collabquest/internal/common/observability"
	"collabquest/internal/compatibility"
	"collabquest/internal/models"
	"collabquest/internal/userstore"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
)

type VerificationService interface {
	Start(ctx context.Context, userID, skill string) (*models.StartResult, error)
	Submit(ctx context.Context, sessionID string, answers map[string]string) (*models.SubmissionResult, error)
}

type PartnerRanker interface {
	Ranked(ctx context.Context, username string, limit int) (*models.RankedPartners, error)
	Partners(ctx context.Context, username, department string, limit int) (*models.RankedPartners, error)
}

type Dependencies struct {
	Store        userstore.Store
	Scorer       *compatibility.Scorer
	Verification VerificationService
	Ranker       PartnerRanker
	Obs          *observability.Observability
	Logger       logger.Logger
	// Ready reports whether backing services are reachable. Nil means always ready.
	Ready          func(ctx context.Context) error
	RequestTimeout time.Duration
}

type Server struct {
	deps Dependencies
	log  logger.Logger
	mux  *http.ServeMux
	now  func() time.Time
}

func NewServer(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.Obs == nil {
		deps.Obs = &observability.Observability{}
	}
	if deps.Scorer == nil {
		deps.Scorer = compatibility.NewScorer(deps.Logger, deps.Obs)
	}
	s := &Server{
		deps: deps,
		log:  deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
		mux:  http.NewServeMux(),
		now:  time.Now,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.handle("POST /verification/start", s.startVerification)
	s.handle("POST /verification/submit", s.submitVerification)

	s.handle("POST /compatibility/compute", s.computeCompatibility)
	s.handle("POST /compatibility-score", s.compatibilityScore)
	s.handle("GET /compatibility/compare/{user1}/{user2}", s.compareCompatibility)
	s.handle("GET /compatibility/ranked/{username}", s.rankedCompatibility)
	s.handle("GET /partners/compatible/{username}", s.compatiblePartners)

	s.handle("GET /users/{id}", s.getUser)
	s.handle("GET /users/{id}/skills", s.getUserSkills)
	s.handle("POST /users/{id}/skills/{skill}/verify", s.verifySkill)
	s.handle("POST /users/{id}/skills/{skill}/unverify", s.unverifySkill)

	s.mux.HandleFunc("GET /health", s.health)
	s.mux.HandleFunc("GET /ready", s.ready)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// handle registers h under pattern with timeout, tracing and request metrics.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.instrument(pattern, h))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		if s.deps.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.deps.RequestTimeout)
			defer cancel()
		}
		ctx, span := s.deps.Obs.StartSpan(ctx, route, attribute.String("http.method", r.Method))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r.WithContext(ctx))

		status := strconv.Itoa(rec.status)
		elapsed := time.Since(start)
		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		metrics.HTTPRequests.WithLabelValues(route, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.deps.Obs.RecordRequest(ctx, route, status, elapsed)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
