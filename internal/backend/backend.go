// Package backend is the client side of the external summarization and
// classification service. One implementation exists per endpoint kind; the
// Manager walks a priority-ordered list of configured endpoints until one
// answers, so callers never branch on the kind themselves.
package backend

import (
	"context"
	"fmt"
)

// Message is one role-tagged segment of a chat request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Backend is a single summarization endpoint.
type Backend interface {
	// Name identifies the endpoint for logs.
	Name() string
	// Chat sends the ordered message list and returns the single text
	// response.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Error reports that a backend call failed after all configured endpoints
// and retries were exhausted. Callers degrade to heuristic-only decisions.
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("backend unavailable: %s", e.Err)
	}
	return fmt.Sprintf("backend %s unavailable: %s", e.Backend, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
