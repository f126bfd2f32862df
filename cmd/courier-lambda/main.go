// Command courier-lambda serves the Courier HTTP API from AWS Lambda behind API Gateway.
//
// Lambda containers do not share memory, so deployments should set COURIER_STORE_BACKEND=redis
// and a shared claims backend (redis or dynamodb).
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/courier"
	"github.com/aretw0/courier/internal/logging"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

func main() {
	ctx := context.Background()

	cfg, err := courier.LoadConfig(os.Getenv("COURIER_CONFIG"), os.Environ())
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	// CloudWatch indexes JSON lines.
	logger := logging.New(level, "json")

	a, err := courier.New(ctx, cfg, courier.WithLogger(logger))
	if err != nil {
		log.Fatalf("failed to init courier: %v", err)
	}
	defer a.Close()

	handler, err := a.Handler()
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	// RUN_LOCAL=true serves plain HTTP for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		logger.Info("Running local server", "addr", cfg.Addr)
		if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := httpadapter.New(handler)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
