package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"github.com/keel-hq/todoapi/pkg/store"
	"github.com/keel-hq/todoapi/types"

	// importing sqlite driver
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	log "github.com/sirupsen/logrus"
)

// SQLStore - todo table in a relational database, used for local development
type SQLStore struct {
	db *gorm.DB
}

type Opts struct {
	DatabaseType string // sqlite3
	URI          string // path or conn string

	// ConnectTimeout - how long to keep retrying the initial connection, defaults to 30s
	ConnectTimeout time.Duration
}

func New(opts Opts) (*SQLStore, error) {
	timeout := opts.ConnectTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	db, err := connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&types.Todo{},
	).Error
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("database migration failed ")
		return nil, err
	}

	return &SQLStore{
		db: db,
	}, nil
}

// GetTodo - looks up todo by primary key
func (s *SQLStore) GetTodo(ctx context.Context, id string) (*types.Todo, error) {
	var result types.Todo
	err := s.db.Where("id = ?", id).First(&result).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, store.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sql: get todo: %w", err)
	}

	return &result, nil
}

// PutTodo - updates todo by primary key, inserts it when missing
func (s *SQLStore) PutTodo(ctx context.Context, todo *types.Todo) error {
	if todo.ID == "" {
		return store.ErrIDNotSpecified
	}

	tx := s.db.Begin()
	// Note the use of tx as the database handle once you are within a transaction
	if err := tx.Save(todo).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("sql: save todo: %w", err)
	}

	return tx.Commit().Error
}

// Close - closes database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) OK() bool {
	err := s.db.DB().Ping()
	return err == nil
}

func connect(ctx context.Context, opts Opts) (*gorm.DB, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, errors.New("sql store startup deadline exceeded")
		default:
			db, err := gorm.Open(opts.DatabaseType, opts.URI)
			if err != nil {
				time.Sleep(1 * time.Second)
				log.WithFields(log.Fields{
					"error": err,
					"uri":   opts.URI,
				}).Warn("sql store connector: can't reach DB, waiting")
				continue
			}

			// sqlite allows a single writer
			db.DB().SetMaxOpenConns(1)

			// success
			return db, nil
		}
	}
}
