package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequestTodo(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		want    *Todo
	}{
		{
			name: "valid",
			body: `{"name":"buy milk","description":"2% milk"}`,
			want: &Todo{ID: "x", Name: "buy milk", Description: "2% milk"},
		},
		{
			name: "empty strings are accepted",
			body: `{"name":"","description":""}`,
			want: &Todo{ID: "x"},
		},
		{
			name: "extra fields are ignored",
			body: `{"name":"a","description":"b","id":"client-supplied"}`,
			want: &Todo{ID: "x", Name: "a", Description: "b"},
		},
		{
			name:    "missing name",
			body:    `{"description":"2% milk"}`,
			wantErr: ErrValidation,
		},
		{
			name:    "missing description",
			body:    `{"name":"buy milk"}`,
			wantErr: ErrValidation,
		},
		{
			name:    "null name",
			body:    `{"name":null,"description":"2% milk"}`,
			wantErr: ErrValidation,
		},
		{
			name:    "wrong type",
			body:    `{"name":1,"description":"2% milk"}`,
			wantErr: ErrValidation,
		},
		{
			name:    "not json",
			body:    `name=buy milk`,
			wantErr: ErrMalformedBody,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: ErrValidation,
		},
		{
			name:    "whitespace only body",
			body:    "  \n",
			wantErr: ErrValidation,
		},
		{
			name:    "trailing data",
			body:    `{"name":"a","description":"b"} trailing garbage`,
			wantErr: ErrMalformedBody,
		},
		{
			name:    "two objects",
			body:    `{"name":"a","description":"b"}{"name":"c","description":"d"}`,
			wantErr: ErrMalformedBody,
		},
		{
			name: "trailing whitespace is accepted",
			body: "{\"name\":\"a\",\"description\":\"b\"}\n",
			want: &Todo{ID: "x", Name: "a", Description: "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeRequestTodo(strings.NewReader(tt.body))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "unexpected error: %s", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Todo("x"))
		})
	}
}

func TestRequestTodoValidateReportsFields(t *testing.T) {
	req := &RequestTodo{}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name: field required")
	assert.Contains(t, err.Error(), "description: field required")
}

func TestTodoValidate(t *testing.T) {
	assert.NoError(t, (&Todo{ID: "1"}).Validate())
	assert.NoError(t, (&Todo{ID: "1", Name: "todo-1", Description: "hogehogehoge"}).Validate())

	err := (&Todo{Name: "no id"}).Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "id: field required")
}
