package http

import (
	"net/http"

	"github.com/keel-hq/todoapi/types"

	log "github.com/sirupsen/logrus"
)

// placeholder values returned by list, update and delete, none of which
// touch the store yet
const (
	placeholderID          = "1"
	placeholderName        = "todo-1"
	placeholderDescription = "hogehogehoge"
)

func placeholderTodo(id string) *types.Todo {
	return &types.Todo{
		ID:          id,
		Name:        placeholderName,
		Description: placeholderDescription,
	}
}

// listTodosHandler returns a single static todo, not the store contents.
// TODO: read from the store once list semantics (scan or query) are settled.
func (s *TodoServer) listTodosHandler(resp http.ResponseWriter, req *http.Request) {
	response(placeholderTodo(placeholderID), http.StatusOK, nil, resp, req)
}

func (s *TodoServer) getTodoHandler(resp http.ResponseWriter, req *http.Request) {
	todo, err := s.store.GetTodo(req.Context(), getID(req))
	response(todo, http.StatusOK, err, resp, req)
}

func (s *TodoServer) createTodoHandler(resp http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	todoIn, err := types.DecodeRequestTodo(req.Body)
	if err != nil {
		response(nil, 0, err, resp, req)
		return
	}

	todo := todoIn.Todo(s.idGenerator.New())

	err = s.store.PutTodo(req.Context(), todo)
	if err != nil {
		response(nil, 0, err, resp, req)
		return
	}

	log.WithFields(log.Fields{
		"id": todo.ID,
	}).Info("http.todos: todo created")

	response(todo, http.StatusOK, nil, resp, req)
}

// updateTodoHandler echoes the ID, the stored todo is left untouched
func (s *TodoServer) updateTodoHandler(resp http.ResponseWriter, req *http.Request) {
	response(placeholderTodo(getID(req)), http.StatusOK, nil, resp, req)
}

// deleteTodoHandler echoes the ID, the stored todo is left untouched
func (s *TodoServer) deleteTodoHandler(resp http.ResponseWriter, req *http.Request) {
	response(placeholderTodo(getID(req)), http.StatusOK, nil, resp, req)
}
