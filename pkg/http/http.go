package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/negroni"

	"github.com/keel-hq/todoapi/constants"
	"github.com/keel-hq/todoapi/internal/identifier"
	"github.com/keel-hq/todoapi/pkg/store"
	"github.com/keel-hq/todoapi/types"
	"github.com/keel-hq/todoapi/version"

	log "github.com/sirupsen/logrus"
)

// Opts - http server options
type Opts struct {
	Port int

	Store store.Store

	// IDGenerator defaults to random UUIDs
	IDGenerator identifier.Generator

	// AllowOrigins - extra CORS origins (globs allowed), constants.DefaultAllowOrigin
	// is always allowed
	AllowOrigins []string

	// Stage - deployment stage, when set the API is also served under /{stage}
	Stage string
}

// TodoServer - todo API server
type TodoServer struct {
	port    int
	server  *http.Server
	router  *mux.Router
	handler http.Handler

	store       store.Store
	idGenerator identifier.Generator
	cors        *corsPolicy
	stage       string
}

// NewTodoServer - create new HTTP server, routes and middleware are set up
// right away so the handler can also be served by other runtimes (Lambda)
func NewTodoServer(opts *Opts) *TodoServer {
	idGenerator := opts.IDGenerator
	if idGenerator == nil {
		idGenerator = identifier.UUIDGenerator{}
	}

	s := &TodoServer{
		port:        opts.Port,
		router:      mux.NewRouter(),
		store:       opts.Store,
		idGenerator: idGenerator,
		cors:        newCORSPolicy(append([]string{constants.DefaultAllowOrigin}, opts.AllowOrigins...)),
		stage:       strings.Trim(opts.Stage, "/"),
	}

	s.registerRoutes(s.router)

	n := negroni.New(negroni.NewRecovery())
	n.Use(negroni.HandlerFunc(loggingMiddleware))
	n.Use(negroni.HandlerFunc(metricsMiddleware))
	n.Use(negroni.HandlerFunc(s.cors.middleware))
	n.Use(negroni.HandlerFunc(s.stagePrefixMiddleware))
	n.UseHandler(s.router)
	s.handler = n

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.handler,
	}

	return s
}

// Handler - full middleware chain and router
func (s *TodoServer) Handler() http.Handler {
	return s.handler
}

// Start - start server, blocks until the server is stopped. Returns nil
// right away when Stop was called first.
func (s *TodoServer) Start() error {
	log.WithFields(log.Fields{
		"port":  s.port,
		"stage": s.stage,
	}).Info("todo API server starting...")

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop - stop server, waits up to 10 seconds for in-flight requests
func (s *TodoServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http: server shutdown failed")
	}
}

func getID(req *http.Request) string {
	return mux.Vars(req)["id"]
}

func (s *TodoServer) registerRoutes(mux *mux.Router) {
	mux.HandleFunc("/todos", s.listTodosHandler).Methods("GET")
	mux.HandleFunc("/todos", s.createTodoHandler).Methods("POST")
	mux.HandleFunc("/todos/{id}", s.getTodoHandler).Methods("GET")
	mux.HandleFunc("/todos/{id}", s.updateTodoHandler).Methods("PUT")
	mux.HandleFunc("/todos/{id}", s.deleteTodoHandler).Methods("DELETE")

	// health endpoint for load balancers
	mux.HandleFunc("/healthz", s.healthHandler).Methods("GET")
	// version handler
	mux.HandleFunc("/version", s.versionHandler).Methods("GET")

	mux.Handle("/metrics", promhttp.Handler())

	mux.NotFoundHandler = http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		errorResponse(errRouteNotFound, resp, req)
	})
	mux.MethodNotAllowedHandler = http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		errorResponse(errMethodNotAllowed, resp, req)
	})
}

func (s *TodoServer) healthHandler(resp http.ResponseWriter, req *http.Request) {
	if !s.store.OK() {
		resp.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	resp.WriteHeader(http.StatusOK)
}

func (s *TodoServer) versionHandler(resp http.ResponseWriter, req *http.Request) {
	v := version.GetVersion()
	response(&v, http.StatusOK, nil, resp, req)
}

// stagePrefixMiddleware strips the /{stage} prefix that API Gateway
// deployments put in front of every route
func (s *TodoServer) stagePrefixMiddleware(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if s.stage != "" {
		prefix := "/" + s.stage
		if r.URL.Path == prefix || strings.HasPrefix(r.URL.Path, prefix+"/") {
			r.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
			r.URL.RawPath = ""
		}
	}
	next(rw, r)
}

// router errors
var (
	errRouteNotFound    = errors.New("route not found")
	errMethodNotAllowed = errors.New("method not allowed")
)

// APIError - error body, same shape for every error status
type APIError struct {
	Detail string `json:"detail"`
}

// validatable responses are checked before being written
type validatable interface {
	Validate() error
}

func response(obj interface{}, statusCode int, err error, resp http.ResponseWriter, req *http.Request) {
	// Check for an error
	if err != nil {
		errorResponse(err, resp, req)
		return
	}

	if v, ok := obj.(validatable); ok {
		if verr := v.Validate(); verr != nil {
			log.WithFields(log.Fields{
				"error": verr,
				"path":  req.URL.Path,
			}).Error("http: response does not match schema")
			writeJSON(&APIError{Detail: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError, resp)
			return
		}
	}

	writeJSON(obj, statusCode, resp)
}

// errorResponse maps err to a status code. Only validation messages reach
// the client, everything else gets a generic status text.
func errorResponse(err error, resp http.ResponseWriter, req *http.Request) {
	var (
		code   int
		detail string
	)

	switch {
	case errors.Is(err, types.ErrMalformedBody):
		code, detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, types.ErrValidation):
		code, detail = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, store.ErrRecordNotFound):
		code, detail = http.StatusNotFound, "Todo not found"
	case errors.Is(err, errRouteNotFound):
		code, detail = http.StatusNotFound, http.StatusText(http.StatusNotFound)
	case errors.Is(err, errMethodNotAllowed):
		code, detail = http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)
	default:
		code, detail = http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
		log.WithFields(log.Fields{
			"error":  err,
			"method": req.Method,
			"path":   req.URL.Path,
		}).Error("http: request failed")
	}

	writeJSON(&APIError{Detail: detail}, code, resp)
}

func writeJSON(obj interface{}, statusCode int, resp http.ResponseWriter) {
	encoded, err := json.Marshal(obj)
	if err != nil {
		log.WithError(err).Error("http: failed to marshal response")
		resp.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(statusCode)
	resp.Write(encoded)
}
