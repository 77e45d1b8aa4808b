package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"pill-dispenser/handler"
	appconfig "pill-dispenser/internal/config"
	"pill-dispenser/internal/integrations/archive"
	"pill-dispenser/internal/integrations/forwarder"
	"pill-dispenser/internal/usecase"
)

func main() {
	ctx := context.Background()

	cfg, err := appconfig.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if err := cfg.ValidateProxy(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	bucket, err := archive.New(awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.Region = cfg.ArchiveRegion
	}), cfg.ArchiveBucket)
	if err != nil {
		slog.Error("failed to create archive client", "err", err)
		os.Exit(1)
	}
	fwd, err := forwarder.New(awslambda.NewFromConfig(awsCfg, func(o *awslambda.Options) {
		o.Region = cfg.MainFunctionRegion
	}), cfg.MainFunctionName)
	if err != nil {
		slog.Error("failed to create forwarder", "err", err)
		os.Exit(1)
	}

	archiver, err := usecase.NewArchiver(bucket, usecase.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create archiver", "err", err)
		os.Exit(1)
	}
	proxy, err := usecase.NewProxy(archiver, fwd, usecase.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create proxy", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewProxyHandler(proxy)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
