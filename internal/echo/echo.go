// Package echo builds the response that reports the configured API key and
// companion value back to the caller.
package echo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"kappa-echo/pkg/handler"
)

const (
	APIKeyVar     = "API_KEY"
	OtherValueVar = "OTHER_VALUE"
)

// Message is the payload carried in the envelope body.
type Message struct {
	Message string `json:"message"`
}

// Compose reads both values from src and wraps the message in a 200 envelope.
func Compose(src Source) (handler.Response, error) {
	apiKey, err := mustLookup(src, APIKeyVar)
	if err != nil {
		return handler.Response{}, err
	}
	other, err := mustLookup(src, OtherValueVar)
	if err != nil {
		return handler.Response{}, err
	}

	body, err := json.Marshal(Message{
		Message: "Your API Key is: " + apiKey + " and your other value is: " + other,
	})
	if err != nil {
		return handler.Response{}, fmt.Errorf("failed to encode message: %w", err)
	}

	return handler.Response{
		StatusCode: http.StatusOK,
		Body:       string(body),
	}, nil
}

// Service adapts Compose to the HTTP and function entry points. It does not
// log: failures are reported by whichever adapter received the invocation.
type Service struct {
	env Source
}

func NewService(env Source) *Service {
	return &Service{env: env}
}

// Invoke builds the envelope for one invocation.
func (s *Service) Invoke(ctx context.Context) (handler.Response, error) {
	return Compose(s.env)
}

// HandleEvent is the function-style entry point. The event is ignored.
func (s *Service) HandleEvent(ctx context.Context, _ json.RawMessage) (handler.Response, error) {
	return s.Invoke(ctx)
}

// HandleKappa serves the same envelope under the Kappa runtime.
func (s *Service) HandleKappa(ctx context.Context, event handler.Event) (handler.Response, error) {
	resp, err := s.Invoke(ctx)
	if err != nil {
		return handler.Response{}, err
	}
	resp.RequestID = event.RequestID
	return resp, nil
}
