package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendhq/tend/internal/badge"
	"github.com/tendhq/tend/internal/credibility"
	"github.com/tendhq/tend/internal/database"
	"github.com/tendhq/tend/internal/handler"
	"github.com/tendhq/tend/internal/ledger"
	"github.com/tendhq/tend/internal/logger"
	"github.com/tendhq/tend/internal/metrics"
	"github.com/tendhq/tend/internal/task"
	"github.com/tendhq/tend/internal/user"
)

type Server struct {
	httpServer         *http.Server
	dbPool             database.Pool
	userService        user.Service
	taskService        task.Service
	ledgerService      ledger.Service
	credibilityService credibility.Service
	badgeService       badge.Service
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, userService user.Service, taskService task.Service, ledgerService ledger.Service, credibilityService credibility.Service, badgeService badge.Service) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// User routes
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", handler.HandleRegisterUser(userService))
		})
		r.Get("/users/{userID}", handler.HandleGetUser(userService))

		// Task routes
		r.Get("/tasks", handler.HandleListUserTasks(taskService))
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/assign", handler.HandleAssignTask(taskService))
			r.Post("/submit", handler.HandleSubmitTask(taskService))
			r.Post("/approve", handler.HandleApproveTask(taskService))
			r.Post("/reject", handler.HandleRejectTask(taskService))
			r.Post("/expire", handler.HandleExpireTasks(taskService))
			r.Get("/{taskID}", handler.HandleGetTask(taskService))
		})

		// Ledger routes
		r.Route("/xp", func(r chi.Router) {
			r.Get("/balance", handler.HandleGetBalance(ledgerService, credibilityService))
			r.Get("/transactions", handler.HandleGetTransactions(ledgerService))
			r.Get("/stats/daily", handler.HandleGetDailyStats(ledgerService))
			r.Get("/tier", handler.HandleGetTier(credibilityService))
			r.Post("/redeem", handler.HandleRedeem(ledgerService))
			r.Post("/reconcile", handler.HandleReconcile(ledgerService))
		})

		// Badge routes
		r.Get("/badges/{userID}", handler.HandleGetBadgeProgress(badgeService))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:             dbPool,
		userService:        userService,
		taskService:        taskService,
		ledgerService:      ledgerService,
		credibilityService: credibilityService,
		badgeService:       badgeService,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		// Use HasPrefix to catch potential variations (e.g. /healthz/)
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
