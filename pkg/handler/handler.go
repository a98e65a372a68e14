// Package handler provides the response envelope shared by every entry point
// and a runtime for serving a function under the Kappa invocation protocol.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// InvocationPath is the route the Kappa platform posts events to.
const InvocationPath = "/2015-03-31/functions/function/invocations"

// Response is the function response envelope
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
	RequestID  string            `json:"requestId,omitempty"`
}

// Event is the Kappa function event structure
type Event struct {
	Body        map[string]any    `json:"body"`
	Path        string            `json:"path"`
	HTTPMethod  string            `json:"httpMethod"`
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"queryParams"`
	RequestID   string            `json:"requestId"`
}

// Handler processes a Kappa event and returns a response
type Handler func(context.Context, Event) (Response, error)

// Start serves handler under the Kappa protocol on addr until ctx is done.
func Start(ctx context.Context, addr string, handler Handler) error {
	server := newHTTPServer(addr, handler)

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("Kappa function starting", zap.String("address", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ReadHeaderTimeout bounds how long a client may take to send request headers.
const ReadHeaderTimeout = 10 * time.Second

func newHTTPServer(addr string, handler Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(handler),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

// NewRouter returns the Kappa invocation and health routes for handler.
func NewRouter(handler Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc(InvocationPath, createInvocationHandler(handler)).Methods(http.MethodPost)
	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	return router
}

func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get("Kappa-Runtime-Aws-Request-Id"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return "req-" + id
	}
	return uuid.New().String()
}

func createInvocationHandler(handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zap.L()
		requestID := requestIDFrom(r)
		logger.Debug("Invocation received", zap.String("requestId", requestID), zap.String("path", r.URL.Path))

		// An empty body is an empty event.
		var event Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("Error parsing request body", zap.String("requestId", requestID), zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "Invalid request body",
			})
			return
		}

		if event.RequestID == "" {
			event.RequestID = requestID
		}

		response, err := handler(r.Context(), event)
		if err != nil {
			logger.Error("Function invocation failed", zap.String("requestId", event.RequestID), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if response.RequestID == "" {
			response.RequestID = event.RequestID
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)

		logger.Info("Invocation completed",
			zap.String("requestId", event.RequestID),
			zap.Int("statusCode", response.StatusCode))
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// NewResponse creates a new Response with a JSON content type header
func NewResponse(statusCode int, body string, requestID string) Response {
	return Response{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body:      body,
		RequestID: requestID,
	}
}

// WithHeader adds or updates a header in the Response
func (r Response) WithHeader(key, value string) Response {
	headers := make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		headers[k] = v
	}
	headers[key] = value
	r.Headers = headers
	return r
}

// WithStatusCode updates the status code in the Response
func (r Response) WithStatusCode(statusCode int) Response {
	r.StatusCode = statusCode
	return r
}
