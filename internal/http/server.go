package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "planeja/internal/log"
	"planeja/internal/middleware/ratelimit"
	"planeja/internal/middleware/security"
	"planeja/internal/middleware/trace"
	"planeja/internal/planner"
	"planeja/internal/services"
	"planeja/internal/settings"
)

// Deps are the stores and services the API serves.
type Deps struct {
	Planner  *planner.Store
	Settings *settings.Store
	Insights *services.InsightService
	Drafts   *services.DraftService

	// Ready reports whether the persistence backend is reachable. Nil means
	// always ready.
	Ready func(ctx context.Context) error

	Logger *applog.Logger
}

type Server struct {
	http.Server
	deps Deps

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	logger := deps.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		deps:     deps,
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "muitas requisições, tente novamente em instantes").Write(w)
	})

	var handler http.Handler = s.routes()
	handler = limit(handler)
	handler = applog.Middleware(logger, trace.RequestIDFromRequest)(handler)
	handler = s.tracer.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = s.detector.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Draft generation waits on the model
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/lists", s.handleListLists)
	mux.HandleFunc("POST /api/lists", s.handleCreateList)
	mux.HandleFunc("GET /api/lists/{id}", s.handleGetList)
	mux.HandleFunc("PATCH /api/lists/{id}", s.handleUpdateList)
	mux.HandleFunc("DELETE /api/lists/{id}", s.handleDeleteList)

	mux.HandleFunc("POST /api/lists/{id}/products", s.handleAddProduct)
	mux.HandleFunc("PATCH /api/lists/{id}/products/{pid}", s.handleUpdateProduct)
	mux.HandleFunc("DELETE /api/lists/{id}/products/{pid}", s.handleDeleteProduct)
	mux.HandleFunc("POST /api/lists/{id}/products/{pid}/toggle", s.handleToggleProduct)

	mux.HandleFunc("POST /api/lists/{id}/deposits", s.handleAddDeposit)
	mux.HandleFunc("GET /api/overview", s.handleOverview)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PATCH /api/settings/{section}", s.handleUpdateSettings)
	mux.HandleFunc("POST /api/settings/theme", s.handleToggleTheme)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/clear", s.handleClear)

	mux.HandleFunc("GET /api/insights", s.handleGetInsights)
	mux.HandleFunc("POST /api/insights", s.handleRefreshInsights)
	mux.HandleFunc("POST /api/drafts", s.handleGenerateDraft)
	mux.HandleFunc("POST /api/drafts/{id}/confirm", s.handleConfirmDraft)
	mux.HandleFunc("DELETE /api/drafts/{id}", s.handleDiscardDraft)

	return mux
}

// Shutdown stops the HTTP server, waits for in-process insight refreshes
// and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
		s.limiter.Stop()

		if s.deps.Insights == nil {
			return
		}
		done := make(chan struct{})
		go func() {
			s.deps.Insights.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.deps.Logger.WarnContext(ctx, "Shutdown timeout reached with insight refresh still running")
		}
	})
	return shutdownErr
}
