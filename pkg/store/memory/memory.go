package memory

import (
	"context"
	"fmt"

	"github.com/keel-hq/todoapi/pkg/store"
	"github.com/keel-hq/todoapi/types"
)

type requestType int

// Request types
const (
	GET requestType = iota
	PUT
	COUNT
)

type (
	// MemoryStore - in-process todo store. All access goes through a single
	// service goroutine, there are no locks.
	MemoryStore struct {
		todos          map[string]types.Todo
		requestChannel chan *request
		done           chan struct{}
	}

	request struct {
		requestType
		todo            types.Todo
		responseChannel chan *response
	}

	response struct {
		error
		todo  types.Todo
		count int
	}
)

// New - creates new memory store and starts its service goroutine
func New() *MemoryStore {
	s := &MemoryStore{
		todos:          make(map[string]types.Todo),
		requestChannel: make(chan *request),
		done:           make(chan struct{}),
	}
	go s.service()
	return s
}

func (s *MemoryStore) service() {
	for {
		select {
		case <-s.done:
			return
		case req := <-s.requestChannel:
			resp := &response{}
			switch req.requestType {
			case GET:
				todo, ok := s.todos[req.todo.ID]
				if !ok {
					resp.error = store.ErrRecordNotFound
				} else {
					resp.todo = todo
				}
			case PUT:
				s.todos[req.todo.ID] = req.todo
			case COUNT:
				resp.count = len(s.todos)
			default:
				resp.error = fmt.Errorf("invalid request type: %v", req.requestType)
			}
			req.responseChannel <- resp
		}
	}
}

func (s *MemoryStore) do(ctx context.Context, req *request) (*response, error) {
	req.responseChannel = make(chan *response, 1)
	select {
	case s.requestChannel <- req:
	case <-s.done:
		return nil, fmt.Errorf("memory store closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return <-req.responseChannel, nil
}

// GetTodo - looks up todo by ID
func (s *MemoryStore) GetTodo(ctx context.Context, id string) (*types.Todo, error) {
	resp, err := s.do(ctx, &request{requestType: GET, todo: types.Todo{ID: id}})
	if err != nil {
		return nil, err
	}
	if resp.error != nil {
		return nil, resp.error
	}
	todo := resp.todo
	return &todo, nil
}

// PutTodo - saves todo, overwrites existing one with the same ID
func (s *MemoryStore) PutTodo(ctx context.Context, todo *types.Todo) error {
	if todo.ID == "" {
		return store.ErrIDNotSpecified
	}
	resp, err := s.do(ctx, &request{requestType: PUT, todo: *todo})
	if err != nil {
		return err
	}
	return resp.error
}

// Count - number of stored todos
func (s *MemoryStore) Count() int {
	resp, err := s.do(context.Background(), &request{requestType: COUNT})
	if err != nil {
		return 0
	}
	return resp.count
}

// OK - memory store is always healthy until closed
func (s *MemoryStore) OK() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Close - stops service goroutine
func (s *MemoryStore) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
