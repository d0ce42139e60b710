// Package lambda serves an http.Handler from AWS Lambda behind an API Gateway
// REST API proxy integration.
package lambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	log "github.com/sirupsen/logrus"
)

// Proxy - translates API Gateway proxy events to HTTP requests
type Proxy struct {
	adapter *httpadapter.HandlerAdapter
}

// New - creates new proxy for the given handler
func New(handler http.Handler) *Proxy {
	return &Proxy{adapter: httpadapter.New(handler)}
}

// Start - hands control to the Lambda runtime, never returns
func (p *Proxy) Start() {
	log.Info("lambda: starting proxy handler")
	awslambda.Start(p.Handle)
}

// Handle - serves a single API Gateway event. Events that cannot be turned
// into a request (bad base64 body, unparsable path) return an error.
func (p *Proxy) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp, err := p.adapter.ProxyWithContext(ctx, event)
	if err != nil {
		log.WithFields(log.Fields{
			"error":  err,
			"method": event.HTTPMethod,
			"path":   event.Path,
		}).Error("lambda: failed to proxy event")
	}
	return resp, err
}
