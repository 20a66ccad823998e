package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/ziadkadry99/agentrag/internal/chunker"
	"github.com/ziadkadry99/agentrag/internal/embeddings"
)

// Failure kinds for store-level errors. They are matched with errors.Is.
var (
	ErrIndexingFailure = errors.New("indexing failure")
	ErrDeletionFailure = errors.New("deletion failure")
	ErrSearchFailure   = errors.New("search failure")

	// ErrInvalidDocument is returned for an empty agent id or a document
	// without a filename.
	ErrInvalidDocument = errors.New("invalid document")
)

// OpError records a failed operation together with the document (or agent)
// it concerned, the failure kind, and the underlying cause.
type OpError struct {
	Op   string      // "index", "remove" or "search"
	Key  DocumentKey // Path and Filename are empty for searches
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	target := e.Key.AgentID
	if e.Key.Path != "" || e.Key.Filename != "" {
		target = e.Key.String()
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, target, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func opError(op string, key DocumentKey, kind, err error) error {
	return &OpError{Op: op, Key: key, Kind: kind, Err: err}
}

// IsRetryable reports whether err is a transient failure worth retrying.
// Cancellation and invalid configuration are permanent.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, chunker.ErrInvalidConfiguration):
		return false
	}
	return errors.Is(err, embeddings.ErrEmbeddingUnavailable) ||
		errors.Is(err, ErrIndexingFailure) ||
		errors.Is(err, ErrDeletionFailure) ||
		errors.Is(err, ErrSearchFailure)
}
