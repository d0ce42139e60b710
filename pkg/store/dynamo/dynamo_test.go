package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keel-hq/todoapi/pkg/store"
	"github.com/keel-hq/todoapi/types"
)

// fakeDynamoDB keeps items in a map keyed by the "id" attribute
type fakeDynamoDB struct {
	dynamodbiface.DynamoDBAPI

	items map[string]map[string]*dynamodb.AttributeValue
	err   error

	getInputs []*dynamodb.GetItemInput
	putInputs []*dynamodb.PutItemInput
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: make(map[string]map[string]*dynamodb.AttributeValue)}
}

func (f *fakeDynamoDB) GetItemWithContext(ctx aws.Context, in *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error) {
	f.getInputs = append(f.getInputs, in)
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[aws.StringValue(in.Key["id"].S)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamoDB) PutItemWithContext(ctx aws.Context, in *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.putInputs = append(f.putInputs, in)
	if f.err != nil {
		return nil, f.err
	}
	f.items[aws.StringValue(in.Item["id"].S)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) DescribeTableWithContext(ctx aws.Context, in *dynamodb.DescribeTableInput, opts ...request.Option) (*dynamodb.DescribeTableOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.DescribeTableOutput{Table: &dynamodb.TableDescription{TableName: in.TableName}}, nil
}

func newTestStore(t *testing.T) (*DynamoStore, *fakeDynamoDB) {
	fake := newFakeDynamoDB()
	s, err := New(Opts{TableName: "todos-dev", Client: fake})
	require.NoError(t, err)
	return s, fake
}

func TestNewRequiresTableName(t *testing.T) {
	_, err := New(Opts{Client: newFakeDynamoDB()})
	assert.Error(t, err)
}

func TestPutGet(t *testing.T) {
	s, fake := newTestStore(t)
	ctx := context.Background()

	err := s.PutTodo(ctx, &types.Todo{ID: "abc", Name: "buy milk", Description: "2% milk"})
	require.NoError(t, err)

	require.Len(t, fake.putInputs, 1)
	put := fake.putInputs[0]
	assert.Equal(t, "todos-dev", aws.StringValue(put.TableName))
	assert.Equal(t, "abc", aws.StringValue(put.Item["id"].S))
	assert.Equal(t, "buy milk", aws.StringValue(put.Item["name"].S))
	assert.Equal(t, "2% milk", aws.StringValue(put.Item["description"].S))

	todo, err := s.GetTodo(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, &types.Todo{ID: "abc", Name: "buy milk", Description: "2% milk"}, todo)

	require.Len(t, fake.getInputs, 1)
	assert.Equal(t, "todos-dev", aws.StringValue(fake.getInputs[0].TableName))
	assert.Len(t, fake.getInputs[0].Key, 1)
}

func TestPutEmptyStrings(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutTodo(ctx, &types.Todo{ID: "abc"}))

	todo, err := s.GetTodo(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "", todo.Name)
	assert.Equal(t, "", todo.Description)
}

func TestGetMissing(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.GetTodo(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, store.ErrRecordNotFound), "unexpected error: %v", err)
}

func TestGetMalformedItem(t *testing.T) {
	s, fake := newTestStore(t)
	fake.items["abc"] = map[string]*dynamodb.AttributeValue{
		"id":   {S: aws.String("abc")},
		"name": {N: aws.String("5")},
	}

	_, err := s.GetTodo(context.Background(), "abc")
	assert.True(t, errors.Is(err, store.ErrInvalidRecord), "unexpected error: %v", err)
}

func TestStorageFailure(t *testing.T) {
	s, fake := newTestStore(t)
	fake.err = awserr.New(dynamodb.ErrCodeResourceNotFoundException, "table not found", nil)

	_, err := s.GetTodo(context.Background(), "abc")
	require.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrRecordNotFound))

	err = s.PutTodo(context.Background(), &types.Todo{ID: "abc"})
	assert.Error(t, err)

	assert.False(t, s.OK())
}

func TestPutWithoutID(t *testing.T) {
	s, fake := newTestStore(t)

	err := s.PutTodo(context.Background(), &types.Todo{Name: "x"})
	assert.True(t, errors.Is(err, store.ErrIDNotSpecified))
	assert.Empty(t, fake.putInputs)
}

func TestOK(t *testing.T) {
	s, _ := newTestStore(t)
	assert.True(t, s.OK())
}
