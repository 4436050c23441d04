package contract

import (
	"context"
	"errors"

	"interview-practice-be/internal/entity"
)

var ErrConcurrentUpdate = errors.New("session document changed concurrently, retries exhausted")

// MutateFunc receives the stored document (nil when none exists or the stored
// copy could not be decoded) and returns the document to persist. It may be
// called more than once by backends that retry optimistic transactions.
type MutateFunc func(current *entity.SessionDocument) (*entity.SessionDocument, error)

type SessionDocumentRepository interface {
	// Mutate performs one read-modify-write of a session's document. Calls for
	// the same session never interleave.
	Mutate(ctx context.Context, sessionId string, fn MutateFunc) (*entity.SessionDocument, error)
	// FindBySessionId returns nil, nil when the session has no document.
	FindBySessionId(ctx context.Context, sessionId string) (*entity.SessionDocument, error)
	Close() error
}
