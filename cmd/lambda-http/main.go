// Command lambda-http serves the API behind an API Gateway HTTP API
// (payload format 2.0).
//
//	GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -tags lambda.norpc -o bootstrap ./cmd/lambda-http
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"resumeflow/internal/bootstrap"
	"resumeflow/internal/shared/config"
	"resumeflow/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("lambda.config_invalid", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Configure(cfg.Env, cfg.LogLevel)

	// Cold start: everything below runs once per execution environment.
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	adapter := ginadapter.NewV2(app.Router)

	lambda.StartWithOptions(
		func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		},
		lambda.WithEnableSIGTERM(app.Close),
	)
}
