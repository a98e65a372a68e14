package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"kappa-echo/pkg/handler"
	"kappa-echo/pkg/logger"
)

// Invoker produces the response envelope for one invocation.
type Invoker interface {
	Invoke(ctx context.Context) (handler.Response, error)
}

// Server is the standalone web server exposing the invoke route.
type Server struct {
	invoker Invoker
	router  *mux.Router
	server  *http.Server
	logger  *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logs.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a Server that will listen on addr once started.
func New(addr string, invoker Invoker, opts ...Option) *Server {
	router := mux.NewRouter()

	s := &Server{
		invoker: invoker,
		router:  router,
		logger:  zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router.Use(s.logRequests)
	router.HandleFunc("/invoke", s.invoke).Methods(http.MethodPost)
	router.HandleFunc("/health", s.health).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	return s
}

// ReadHeaderTimeout bounds how long a client may take to send request headers.
const ReadHeaderTimeout = 10 * time.Second

// Handler returns the routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a shutdown, including one that happened before Start ran.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("address", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown stops the listener and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.server.Shutdown(ctx)
}

// HTTP handler for POST /invoke. The request body is never read.
func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	resp, err := s.invoker.Invoke(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("Invocation failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", requestID)

		l := s.logger.With(zap.String("requestId", requestID))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(logger.WithCtx(r.Context(), l)))

		l.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
