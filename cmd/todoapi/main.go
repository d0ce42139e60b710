package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	kingpin "github.com/alecthomas/kingpin/v2"

	"github.com/keel-hq/todoapi/constants"
	"github.com/keel-hq/todoapi/internal/workgroup"
	"github.com/keel-hq/todoapi/pkg/http"
	"github.com/keel-hq/todoapi/pkg/lambda"
	"github.com/keel-hq/todoapi/pkg/store"
	"github.com/keel-hq/todoapi/pkg/store/dynamo"
	"github.com/keel-hq/todoapi/pkg/store/memory"
	"github.com/keel-hq/todoapi/pkg/store/sql"
	"github.com/keel-hq/todoapi/types"
	"github.com/keel-hq/todoapi/version"

	log "github.com/sirupsen/logrus"
)

// available store types
const (
	storeDynamoDB = "dynamodb"
	storeMemory   = "memory"
	storeSQLite   = "sqlite"
)

const defaultStage = "dev"

func main() {
	ver := version.GetVersion()

	app := kingpin.New(filepath.Base(os.Args[0]), "Todo CRUD API backed by DynamoDB.")
	app.UsageTemplate(kingpin.CompactUsageTemplate).Version(ver.Version)

	opts, err := parseFlags(app, os.Args[1:])
	if err != nil {
		app.Fatalf("%s", err)
	}

	if os.Getenv(constants.EnvLogFormat) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	if os.Getenv(constants.EnvDebug) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	log.WithFields(log.Fields{
		"os":         ver.OS,
		"build_date": ver.BuildDate,
		"revision":   ver.Revision,
		"version":    ver.Version,
		"go_version": ver.GoVersion,
		"arch":       ver.Arch,
		"stage":      opts.stage,
	}).Info("todoapi starting...")

	if err := run(opts); err != nil {
		log.WithFields(log.Fields{
			"error": err,
			"port":  opts.port,
			"store": opts.store.storeType,
		}).Error("todoapi stopped")
		os.Exit(1)
	}
}

// parseFlags - reads flags from args, every flag falls back to its env variable
func parseFlags(app *kingpin.Application, args []string) (*RunOpts, error) {
	port := app.Flag("port", "port to listen on").Default(fmt.Sprint(types.DefaultPort)).Envar(constants.EnvPort).Int()
	stage := app.Flag("stage", "deployment stage name, API is also served under /{stage}").Default(defaultStage).Envar(constants.EnvStage).String()
	allowOrigin := app.Flag("allow-origin", "additional CORS origin, globs allowed").Envar(constants.EnvAllowOrigin).String()
	storeType := app.Flag("store", "todo store backend").Default(storeDynamoDB).Envar(constants.EnvStoreType).Enum(storeDynamoDB, storeMemory, storeSQLite)
	tableName := app.Flag("table", "DynamoDB table name").Envar(constants.EnvTableName).String()
	region := app.Flag("region", "AWS region").Envar(constants.EnvAWSRegion).String()
	endpoint := app.Flag("dynamodb-endpoint", "DynamoDB endpoint override (DynamoDB Local)").Envar(constants.EnvDynamoDBEndpoint).String()
	dataDir := app.Flag("data-dir", "directory for the sqlite store").Default(".").Envar(constants.EnvDataDir).String()
	lambdaMode := app.Flag("lambda", "serve API Gateway events through the Lambda runtime instead of listening on a port").Bool()

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}

	var allowOrigins []string
	if *allowOrigin != "" {
		allowOrigins = append(allowOrigins, *allowOrigin)
	}

	return &RunOpts{
		store: StoreOpts{
			storeType: *storeType,
			tableName: *tableName,
			region:    *region,
			endpoint:  *endpoint,
			dataDir:   *dataDir,
		},
		port:         *port,
		stage:        *stage,
		allowOrigins: allowOrigins,
		lambda:       *lambdaMode || os.Getenv(constants.EnvLambdaFunctionName) != "",
	}, nil
}

// RunOpts - everything run needs from flags and environment
type RunOpts struct {
	store        StoreOpts
	port         int
	stage        string
	allowOrigins []string
	lambda       bool

	// stop - optional, closing it shuts the server down like a signal would
	stop <-chan struct{}
}

// run - sets up the store and serves the API until a signal arrives or the
// server fails. The store is closed before run returns.
func run(opts *RunOpts) error {
	todoStore, err := newStore(&opts.store)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := todoStore.Close(); err != nil {
			log.WithError(err).Error("main: failed to close store")
		}
	}()

	srv := http.NewTodoServer(&http.Opts{
		Port:         opts.port,
		Store:        todoStore,
		AllowOrigins: opts.allowOrigins,
		Stage:        opts.stage,
	})

	if opts.lambda {
		lambda.New(srv.Handler()).Start()
		return nil
	}

	var g workgroup.Group

	g.Add(func(stop <-chan struct{}) error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-stop:
			srv.Stop()
			return <-errCh
		}
	})

	g.Add(func(stop <-chan struct{}) error {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(signalChan)

		select {
		case sig := <-signalChan:
			log.WithField("signal", sig.String()).Info("received a signal, shutting down...")
		case <-opts.stop:
		case <-stop:
		}
		return nil
	})

	return g.Run()
}

type StoreOpts struct {
	storeType string
	tableName string
	region    string
	endpoint  string
	dataDir   string
}

var newStore = setupStore

// setupStore - creates the store selected by opts. The store is shared by
// every request for the lifetime of the process.
func setupStore(opts *StoreOpts) (store.Store, error) {
	switch opts.storeType {
	case storeMemory:
		log.Warn("main: using in-memory store, todos are lost on restart")
		return memory.New(), nil
	case storeSQLite:
		path := filepath.Join(opts.dataDir, "todos.db")
		log.WithFields(log.Fields{
			"database_path": path,
			"type":          "sqlite3",
		}).Info("initializing database")
		return sql.New(sql.Opts{
			DatabaseType: "sqlite3",
			URI:          path,
		})
	default:
		if opts.tableName == "" {
			return nil, fmt.Errorf("%s env variable not set", constants.EnvTableName)
		}
		log.WithFields(log.Fields{
			"table":    opts.tableName,
			"region":   opts.region,
			"endpoint": opts.endpoint,
		}).Info("initializing DynamoDB store")
		return dynamo.New(dynamo.Opts{
			TableName: opts.tableName,
			Region:    opts.region,
			Endpoint:  opts.endpoint,
		})
	}
}
