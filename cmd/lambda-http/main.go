// Lambda entrypoint for the HTTP API. API Gateway v2 events are proxied
// into the gin router; the app is built once per execution environment
// and reused across warm invocations.
//
// Build:
//
//	GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http
package main

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"interview-backend/internal/bootstrap"
	"interview-backend/internal/shared/config"
)

var (
	buildOnce sync.Once
	buildErr  error
	proxy     *ginadapter.GinLambdaV2
)

func buildProxy() {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		buildErr = err
		return
	}
	proxy = ginadapter.NewV2(app.Router)
}

func handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	buildOnce.Do(buildProxy)
	if buildErr != nil || proxy == nil {
		log.Printf("bootstrap failed: %v", buildErr)
		return events.APIGatewayV2HTTPResponse{
			StatusCode: 500,
			Body:       `{"error":"bootstrap failed"}`,
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, buildErr
	}
	return proxy.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handle)
}
