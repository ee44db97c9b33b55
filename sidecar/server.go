// Copyright 2025 The LunarDB Security Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sidecar

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/Kazooki123/lunardb-security/boundary"
	"github.com/Kazooki123/lunardb-security/config"
	"github.com/Kazooki123/lunardb-security/guard/admission"
	"github.com/Kazooki123/lunardb-security/shared/logger"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 10 * time.Second
	serviceName     = "lunarsec-sidecar"
)

// Server is the HTTP sidecar.
type Server struct {
	engine   *boundary.Engine
	cfg      config.SidecarConfig
	log      *logger.Logger
	secret   []byte
	redis    *redis.Client
	router   *mux.Router
	handler  http.Handler
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	mu       sync.Mutex
	trackers map[string]boundary.Handle
	shared   map[string]*admission.RedisTracker
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the server's logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRedis stores named admission trackers in Redis instead of the engine.
func WithRedis(client *redis.Client) Option {
	return func(s *Server) {
		s.redis = client
	}
}

// New builds a server around engine.
func New(engine *boundary.Engine, cfg config.SidecarConfig, opts ...Option) *Server {
	if cfg.TrackerCapacity <= 0 {
		cfg.TrackerCapacity = config.DefaultTrackerCapacity
	}
	if cfg.MaxTrackers <= 0 {
		cfg.MaxTrackers = config.DefaultMaxTrackers
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultSidecarAddr
	}

	s := &Server{
		engine:   engine,
		cfg:      cfg,
		log:      logger.New("sidecar"),
		router:   mux.NewRouter(),
		trackers: make(map[string]boundary.Handle),
		shared:   make(map[string]*admission.RedisTracker),
	}
	if cfg.JWTSecret != "" {
		s.secret = []byte(cfg.JWTSecret)
	}
	for _, opt := range opts {
		opt(s)
	}

	s.requests, s.duration = registerHTTPMetrics(engine.Registry())
	s.routes()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	s.handler = c.Handler(s.requestIDMiddleware(s.router))
	return s
}

func (s *Server) routes() {
	s.router.Use(s.metricsMiddleware)

	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.engine.Registry(), promhttp.HandlerOpts{})).Methods("GET")

	s.handleAPI("/v1/validate", s.textDecision(s.engine.ValidateInput))
	s.handleAPI("/v1/sql", s.textDecision(s.engine.CheckSQLSafety))
	s.handleAPI("/v1/document", s.textDecision(s.engine.CheckDocumentQuerySafety))
	s.handleAPI("/v1/sanitize", http.HandlerFunc(s.sanitizeHandler))
	s.handleAPI("/v1/statements", http.HandlerFunc(s.statementHandler))
	s.handleAPI("/v1/admission/{tracker}", http.HandlerFunc(s.admissionHandler))
}

// handleAPI registers an authenticated POST endpoint.
func (s *Server) handleAPI(path string, h http.Handler) {
	s.router.Handle(path, s.authMiddleware(h)).Methods("POST")
}

// Handler returns the root handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close releases every tracker handle the server created.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, h := range s.trackers {
		s.engine.DestroyTracker(h)
		delete(s.trackers, name)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serve", "", "sidecar listening", map[string]interface{}{"addr": s.cfg.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer s.Close()
	return srv.Shutdown(shutdownCtx)
}

func registerHTTPMetrics(reg prometheus.Registerer) (*prometheus.CounterVec, *prometheus.HistogramVec) {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunarsec_http_requests_total",
			Help: "Total number of sidecar HTTP requests",
		},
		[]string{"route", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lunarsec_http_request_duration_seconds",
			Help:    "Sidecar HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	requests = registerOrExisting(reg, requests)
	duration = registerOrExisting(reg, duration)
	return requests, duration
}

// registerOrExisting lets several servers share one engine registry.
func registerOrExisting[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
