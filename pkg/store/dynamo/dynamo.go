// Package dynamo implements store.Store on top of a DynamoDB table whose
// partition key is the string attribute "id".
//
// Credentials and region are resolved by the AWS SDK default chain
// (AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY, shared config, Lambda execution role).
// Retries and timeouts are the SDK defaults.
package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/keel-hq/todoapi/pkg/store"
	"github.com/keel-hq/todoapi/types"

	log "github.com/sirupsen/logrus"
)

const keyAttribute = "id"

// attributes every stored todo must carry as strings
var requiredAttributes = []string{"id", "name", "description"}

// empty name and description are stored as empty strings, not NULL
var encoder = dynamodbattribute.NewEncoder(func(e *dynamodbattribute.Encoder) {
	e.NullEmptyString = false
})

// Opts - dynamo store options
type Opts struct {
	TableName string
	Region    string // optional, SDK default chain otherwise
	Endpoint  string // optional, e.g. http://localhost:8000 for DynamoDB Local

	// Client overrides the SDK client built from the options above
	Client dynamodbiface.DynamoDBAPI
}

// DynamoStore - todo store backed by a DynamoDB table
type DynamoStore struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// New - creates dynamo store. The client is created once and reused by all requests.
func New(opts Opts) (*DynamoStore, error) {
	if opts.TableName == "" {
		return nil, fmt.Errorf("dynamo: table name not specified")
	}

	client := opts.Client
	if client == nil {
		cfg := aws.NewConfig()
		if opts.Region != "" {
			cfg = cfg.WithRegion(opts.Region)
		}
		if opts.Endpoint != "" {
			cfg = cfg.WithEndpoint(opts.Endpoint)
		}

		sess, err := session.NewSession(cfg)
		if err != nil {
			return nil, fmt.Errorf("dynamo: failed to create AWS session: %w", err)
		}
		client = dynamodb.New(sess)
	}

	return &DynamoStore{
		client:    client,
		tableName: opts.TableName,
	}, nil
}

// GetTodo - point lookup by ID
func (s *DynamoStore) GetTodo(ctx context.Context, id string) (*types.Todo, error) {
	out, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			keyAttribute: {S: aws.String(id)},
		},
	})
	if err != nil {
		logAWSError(err, "GetItem", s.tableName)
		return nil, fmt.Errorf("dynamo: get item: %w", err)
	}

	if len(out.Item) == 0 {
		return nil, store.ErrRecordNotFound
	}

	if err := checkItem(out.Item); err != nil {
		log.WithFields(log.Fields{
			"id":    id,
			"table": s.tableName,
			"error": err,
		}).Error("store.dynamo: stored item does not match todo schema")
		return nil, err
	}

	var todo types.Todo
	err = dynamodbattribute.UnmarshalMap(out.Item, &todo)
	if err != nil {
		return nil, fmt.Errorf("dynamo: failed to unmarshal item: %w", err)
	}

	return &todo, nil
}

// PutTodo - upserts todo
func (s *DynamoStore) PutTodo(ctx context.Context, todo *types.Todo) error {
	if todo.ID == "" {
		return store.ErrIDNotSpecified
	}

	av, err := encoder.Encode(todo)
	if err != nil {
		return fmt.Errorf("dynamo: failed to marshal todo: %w", err)
	}

	out, err := s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av.M,
	})
	if err != nil {
		logAWSError(err, "PutItem", s.tableName)
		return fmt.Errorf("dynamo: put item: %w", err)
	}

	log.WithFields(log.Fields{
		"id":       todo.ID,
		"table":    s.tableName,
		"consumed": out.ConsumedCapacity,
	}).Debug("store.dynamo: todo saved")

	return nil
}

// OK - checks that the table is reachable
func (s *DynamoStore) OK() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.client.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		logAWSError(err, "DescribeTable", s.tableName)
		return false
	}
	return true
}

// Close - nothing to release, the SDK client holds no connections of its own
func (s *DynamoStore) Close() error {
	return nil
}

func checkItem(item map[string]*dynamodb.AttributeValue) error {
	for _, name := range requiredAttributes {
		av, ok := item[name]
		if !ok || av == nil || av.S == nil {
			return fmt.Errorf("%w: attribute %q missing or not a string", store.ErrInvalidRecord, name)
		}
	}
	return nil
}

func logAWSError(err error, op, table string) {
	fields := log.Fields{
		"operation": op,
		"table":     table,
	}
	if aerr, ok := err.(awserr.Error); ok {
		fields["code"] = aerr.Code()
		fields["message"] = aerr.Message()
	} else {
		fields["error"] = err
	}
	log.WithFields(fields).Error("store.dynamo: request failed")
}
