package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/keel-hq/todoapi/pkg/store"
	"github.com/keel-hq/todoapi/types"
)

func TestStorePutGet(t *testing.T) {
	s := New()
	defer s.Close()

	err := s.PutTodo(context.Background(), &types.Todo{ID: "a", Name: "buy milk", Description: "2% milk"})
	if err != nil {
		t.Fatalf("failed to put todo, got error: %s", err)
	}

	todo, err := s.GetTodo(context.Background(), "a")
	if err != nil {
		t.Fatalf("failed to get todo, got error: %s", err)
	}

	if todo.Name != "buy milk" || todo.Description != "2% milk" {
		t.Errorf("unexpected todo: %+v", todo)
	}

	if s.Count() != 1 {
		t.Errorf("expected 1 item, got: %d", s.Count())
	}
}

func TestStorePutOverwrites(t *testing.T) {
	s := New()
	defer s.Close()

	ctx := context.Background()
	s.PutTodo(ctx, &types.Todo{ID: "a", Name: "first"})
	s.PutTodo(ctx, &types.Todo{ID: "a", Name: "second"})

	todo, err := s.GetTodo(ctx, "a")
	if err != nil {
		t.Fatalf("failed to get todo, got error: %s", err)
	}
	if todo.Name != "second" {
		t.Errorf("expected overwritten name, got: %s", todo.Name)
	}
	if s.Count() != 1 {
		t.Errorf("expected 1 item, got: %d", s.Count())
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s := New()
	defer s.Close()

	ctx := context.Background()
	in := &types.Todo{ID: "a", Name: "original"}
	s.PutTodo(ctx, in)
	in.Name = "mutated"

	todo, _ := s.GetTodo(ctx, "a")
	if todo.Name != "original" {
		t.Errorf("store shares memory with caller: %s", todo.Name)
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := New()
	defer s.Close()

	_, err := s.GetTodo(context.Background(), "does-not-exist")
	if !errors.Is(err, store.ErrRecordNotFound) {
		t.Errorf("expected record not found, got: %v", err)
	}
}

func TestStorePutWithoutID(t *testing.T) {
	s := New()
	defer s.Close()

	err := s.PutTodo(context.Background(), &types.Todo{Name: "x"})
	if !errors.Is(err, store.ErrIDNotSpecified) {
		t.Errorf("expected ID not specified, got: %v", err)
	}
}

func TestStoreClosed(t *testing.T) {
	s := New()
	if !s.OK() {
		t.Fatalf("expected store to be OK")
	}
	s.Close()
	s.Close()

	if s.OK() {
		t.Errorf("expected closed store not to be OK")
	}
	if _, err := s.GetTodo(context.Background(), "a"); err == nil {
		t.Errorf("expected error from closed store")
	}
}
