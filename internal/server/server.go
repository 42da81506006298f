package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/proajob/proajob/internal/config"
	"github.com/proajob/proajob/internal/db"
	"github.com/proajob/proajob/internal/server/middleware"
	"github.com/proajob/proajob/internal/server/ratelimit"
	"github.com/proajob/proajob/internal/types"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	closeStore  func()
	log         *logrus.Logger
	corsOrigin  string
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
}

// Deps are the collaborators of a Server. New builds them from the
// environment; tests supply their own.
type Deps struct {
	Store      Store
	JWT        *config.JWTConfig
	Passwords  *config.PasswordConfig
	Limiter    *ratelimit.Limiter
	Logger     *logrus.Logger
	CORSOrigin string
	Port       int
}

// New connects to the database, applies the schema when configured to and
// builds the server.
func New(cfg *config.ServerConfig, log *logrus.Logger) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	database.WithLogger(log)
	if cfg.AutoMigrate {
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		log.Info("database schema is up to date")
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := NewWithDeps(Deps{
		Store:      database,
		JWT:        jwtConfig,
		Passwords:  passwordConfig,
		Limiter:    ratelimit.NewLimiter(ratelimit.LoadConfig()),
		Logger:     log,
		CORSOrigin: cfg.CORSAllowedOrigin,
		Port:       cfg.Port,
	})
	s.closeStore = database.Close
	return s, nil
}

// NewWithDeps builds a server around the given collaborators.
func NewWithDeps(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	if d.CORSOrigin == "" {
		d.CORSOrigin = "*"
	}

	s := &Server{
		store:       d.Store,
		log:         d.Logger,
		corsOrigin:  d.CORSOrigin,
		rateLimiter: d.Limiter,
		jwtService:  NewJWTService(d.JWT),
	}
	s.authHandler = NewAuthHandler(NewUserService(d.Store, d.Passwords), s.jwtService, d.Logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", d.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	anyEmpresa := []string{types.RoleEmpresaOferente, types.RoleEmpresaGestora}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /login", s.authHandler.Login)

	mux.Handle("GET /users", s.protected(s.handleListUsers, types.RoleAdmin))
	mux.HandleFunc("GET /roles", s.handleListRoles)

	// Catalog cascade
	mux.HandleFunc("GET /titulos", s.handleGetCatalog)
	mux.HandleFunc("GET /titulos/{nivel}", s.handleListFields)
	mux.HandleFunc("GET /titulos/{nivel}/{campo}", s.handleListTitles)
	mux.HandleFunc("GET /areas", s.handleListAreas)
	mux.HandleFunc("GET /criterios", s.handleListCriterios)
	mux.HandleFunc("GET /idioma", s.handleListIdiomas)

	mux.HandleFunc("GET /ofertas", s.handleListOfertas)
	mux.Handle("POST /add-oferta", s.protected(s.handleCreateOferta, anyEmpresa...))

	mux.Handle("GET /postulanteId/id", s.protected(s.handleGetPostulanteID, types.RolePostulante, types.RoleAdmin))
	mux.Handle("POST /postulante/forma", s.protected(s.handleSaveFormacion, types.RolePostulante))
	mux.Handle("GET /perfil/{id}", s.protected(s.handleGetPerfil))
	mux.Handle("POST /exp", s.protected(s.handleCreateExperiencia, types.RolePostulante))
	mux.Handle("PUT /experiencia/{id}", s.protected(s.handleUpdateExperiencia, types.RolePostulante))

	mux.Handle("POST /catalogo/titulos", s.protected(s.handleCreateTitulo, types.RoleEmpresaGestora))
	mux.Handle("POST /catalogo/criterios", s.protected(s.handleCreateCriterio, types.RoleEmpresaGestora))

	return mux
}

// protected requires a valid token and, when roles are given, one of them.
func (s *Server) protected(h http.HandlerFunc, roles ...string) http.Handler {
	var next http.Handler = h
	if len(roles) > 0 {
		next = middleware.RequireRole(roles...)(next)
	}
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(next)
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM and then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.shutdownResources()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.shutdownResources()
	s.log.Info("server stopped")
	return nil
}

func (s *Server) shutdownResources() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.closeStore != nil {
		s.closeStore()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// withLogging logs one entry per request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote":     r.RemoteAddr,
			"request_id": requestID,
			"status":     rec.status,
			"duration":   time.Since(start),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Info("request completed")
		}
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail writes err with its mapped status. Internal failures are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}
	writeError(w, status, errorMessage(err))
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error JSON response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// extractClientID uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if secs := int(info.RetryAfter.Round(time.Second).Seconds()); secs > 0 {
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	s.log.WithFields(logrus.Fields{
		"remote": s.extractClientID(r),
		"path":   r.URL.Path,
		"limit":  info.Limit,
	}).Warn("rate limit exceeded")

	writeJSON(w, http.StatusTooManyRequests, response)
}
