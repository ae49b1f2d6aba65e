// Package devserver is a self-contained stand-in for the campus identity
// service, used for local development and end-to-end tests. It implements the
// same endpoints and the same response envelope, keeps everything in memory,
// and can echo issued one-time codes back in responses instead of sending
// email.
package devserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/campusconnect/loginflow/internal/pkg/config"
	"github.com/campusconnect/loginflow/internal/pkg/hash"
	"github.com/campusconnect/loginflow/internal/pkg/jwt"
)

type Server struct {
	cfg     config.Config
	store   *Store
	bcrypt  hash.Hash
	jwt     jwt.JWT
	handler http.Handler
	httpSrv *http.Server
}

type Dependency struct {
	Config config.Config
	Store  *Store
	Bcrypt hash.Hash
	JWT    jwt.JWT
}

func New(dep Dependency) *Server {
	s := &Server{
		cfg:    dep.Config,
		store:  dep.Store,
		bcrypt: dep.Bcrypt,
		jwt:    dep.JWT,
	}

	router := httprouter.New()
	router.POST("/api/v1/auth/signup", s.handleSignup)
	router.POST("/api/v1/auth/send-otp", s.handleSendOTP)
	router.POST("/api/v1/auth/verify-otp", s.handleVerifyOTP)
	router.POST("/api/v1/auth/login", s.handleLogin)

	c := cors.New(cors.Options{
		AllowedOrigins: dep.Config.GetArray("devserver.cors_origins"),
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.handler = c.Handler(s.recoverer(router))

	return s
}

// Handler exposes the full middleware chain, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving on the configured address and blocks until the server
// stops.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.GetString("devserver.address"),
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("development identity server listening", "address", s.httpSrv.Addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				slog.Error("panic in request handler", "path", r.URL.Path, "panic", rvr)
				s.fail(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request served", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
