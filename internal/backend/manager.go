package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/gyeh/filetriage/internal/config"
)

const (
	// maxAttemptsPerBackend bounds retries against a single endpoint before
	// failing over to the next one.
	maxAttemptsPerBackend = 3
	retryBaseDelay        = 500 * time.Millisecond
	requestTimeout        = 120 * time.Second
)

// Manager fans chat requests across the configured backends in priority
// order, retrying each with exponential backoff before failing over.
type Manager struct {
	backends []Backend
	log      zerolog.Logger
}

// NewManager builds backends from the enabled, priority-ordered config list.
// An empty list is valid: every Chat call then degrades immediately.
func NewManager(cfgs []config.Backend, log zerolog.Logger) (*Manager, error) {
	client := &http.Client{Timeout: requestTimeout}
	var backends []Backend
	for _, c := range cfgs {
		switch c.Kind {
		case "openai":
			backends = append(backends, &openAIBackend{
				name:    c.Name,
				baseURL: c.BaseURL,
				model:   c.Model,
				apiKey:  c.APIKey,
				client:  client,
			})
		case "ollama":
			backends = append(backends, &ollamaBackend{
				name:    c.Name,
				baseURL: c.BaseURL,
				model:   c.Model,
				client:  client,
			})
		default:
			return nil, fmt.Errorf("unknown backend kind %q", c.Kind)
		}
	}
	return &Manager{backends: backends, log: log}, nil
}

// Available reports whether at least one backend is configured.
func (m *Manager) Available() bool {
	return len(m.backends) > 0
}

// Chat tries each backend in order. Within one backend, transient failures
// are retried with exponential backoff up to maxAttemptsPerBackend. Returns
// *Error when every endpoint is exhausted.
func (m *Manager) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(m.backends) == 0 {
		return "", &Error{Err: fmt.Errorf("no backends configured")}
	}

	var lastErr error
	var lastName string
	for _, b := range m.backends {
		var answer string
		backoff := retry.WithMaxRetries(maxAttemptsPerBackend-1, retry.NewExponential(retryBaseDelay))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			out, chatErr := b.Chat(ctx, messages)
			if chatErr != nil {
				return retry.RetryableError(chatErr)
			}
			answer = out
			return nil
		})
		if err == nil {
			return answer, nil
		}
		if ctx.Err() != nil {
			return "", &Error{Backend: b.Name(), Err: ctx.Err()}
		}
		m.log.Warn().Err(err).Str("backend", b.Name()).Msg("backend failed, trying next")
		lastErr = err
		lastName = b.Name()
	}
	return "", &Error{Backend: lastName, Err: lastErr}
}
