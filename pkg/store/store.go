package store

import (
	"context"
	"errors"

	"github.com/keel-hq/todoapi/types"
)

// Store - single-key access to todos. Implementations must be safe for
// concurrent use, a single instance is shared by all requests.
type Store interface {
	// GetTodo returns ErrRecordNotFound when there is no todo with the given ID
	GetTodo(ctx context.Context, id string) (*types.Todo, error)
	// PutTodo creates the todo or replaces an existing one with the same ID
	PutTodo(ctx context.Context, todo *types.Todo) error

	OK() bool
	Close() error
}

// errors
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrIDNotSpecified = errors.New("ID not specified")

	// ErrInvalidRecord - stored record cannot be read back as a todo
	ErrInvalidRecord = errors.New("stored record does not match todo schema")
)
