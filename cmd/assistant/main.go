package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"pill-dispenser/handler"
	appconfig "pill-dispenser/internal/config"
	"pill-dispenser/internal/integrations/iot"
	"pill-dispenser/internal/integrations/paramstore"
	"pill-dispenser/internal/repository"
	"pill-dispenser/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := appconfig.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if err := cfg.ValidateAssistant(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	// ---- AWS SDK config ----
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	store, err := repository.New(awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		o.Region = cfg.DDBRegion
	}), cfg.EventsTable, cfg.UserTable)
	if err != nil {
		slog.Error("failed to create event store", "err", err)
		os.Exit(1)
	}

	iotOpts := []func(*iotdataplane.Options){func(o *iotdataplane.Options) { o.Region = cfg.IoTRegion }}
	if cfg.IoTEndpointParam != "" {
		params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		endpoint, err := params.EndpointURL(ctx, cfg.IoTEndpointParam)
		if err != nil {
			slog.Error("failed to resolve IoT endpoint", "param", cfg.IoTEndpointParam, "err", err)
			os.Exit(1)
		}
		iotOpts = append(iotOpts, iot.WithEndpoint(endpoint))
	}
	device, err := iot.New(iotdataplane.NewFromConfig(awsCfg, iotOpts...))
	if err != nil {
		slog.Error("failed to create IoT client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	assistant, err := usecase.NewAssistant(store, store, device, cfg.Location(), usecase.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create assistant", "err", err)
		os.Exit(1)
	}
	devices, err := usecase.NewDeviceEvents(store, usecase.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create device event recorder", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(assistant, devices)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
