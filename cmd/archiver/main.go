package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"pill-dispenser/handler"
	appconfig "pill-dispenser/internal/config"
	"pill-dispenser/internal/integrations/archive"
	"pill-dispenser/internal/usecase"
)

// One deployment per category; ARCHIVE_CATEGORY selects the body shape.
func main() {
	ctx := context.Background()

	cfg, err := appconfig.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if err := cfg.ValidateArchiver(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	category, ok := usecase.ParseCategory(cfg.ArchiveCategory)
	if !ok {
		slog.Error("unknown archive category", "category", cfg.ArchiveCategory)
		os.Exit(1)
	}

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
	archiver, err := usecase.NewArchiver(bucket, usecase.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create archiver", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewArchiveHandler(archiver, category)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
