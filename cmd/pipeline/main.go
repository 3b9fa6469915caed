package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/atlas-data/atlas-pipeline/cmd/pipeline/cli"
	"github.com/atlas-data/atlas-pipeline/internal/app"
	"github.com/atlas-data/atlas-pipeline/internal/generator"
	"github.com/atlas-data/atlas-pipeline/internal/pipeline"
	"github.com/atlas-data/atlas-pipeline/internal/platform/objstore"
	"github.com/atlas-data/atlas-pipeline/internal/storage"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 {
		if err := runCommand(ctx, cfg, logger, os.Args[1], os.Args[2:]); err != nil {
			logger.Error("command failed", slog.String("command", os.Args[1]), slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if err := runPipeline(ctx, cfg, logger); err != nil {
		logger.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func runPipeline(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	if err := cfg.ValidateObjectStore(); err != nil {
		return err
	}

	start, end := cfg.Window()
	gen, err := generator.New(generator.Config{
		Rows:        cfg.Rows,
		Seed:        cfg.Seed,
		WindowStart: start,
		WindowEnd:   end,
	}, logger)
	if err != nil {
		return err
	}

	client, err := objstore.New(objstore.Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		URLStyle:  cfg.S3URLStyle,
	})
	if err != nil {
		return err
	}

	uploader := storage.NewUploader(client, logger,
		storage.WithMaxRetries(cfg.UploadMaxRetries),
		storage.WithRetryInterval(cfg.UploadRetryInterval),
	)

	p := pipeline.New(logger, gen, uploader, pipeline.Config{
		DataDir:      cfg.DataDir,
		Bucket:       cfg.S3Bucket,
		ArtifactName: cfg.ArtifactName,
	})

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("pipeline finished",
		slog.String("run_id", result.RunID),
		slog.Int("rows", result.Rows),
		slog.Int("artifacts", len(result.Artifacts)),
	)
	return nil
}

func runCommand(ctx context.Context, cfg *app.Config, logger *slog.Logger, name string, args []string) error {
	switch name {
	case "run":
		return runPipeline(ctx, cfg, logger)
	case "verify":
		if len(args) != 1 {
			return fmt.Errorf("usage: pipeline verify <artifact.parquet>")
		}
		report, err := cli.NewVerifyCLI().VerifyParquet(args[0])
		if err != nil {
			return err
		}
		logger.Info("artifact verified",
			slog.String("path", report.Path),
			slog.Int("rows", report.Rows),
			slog.Int("unique_keys", report.UniqueKeys),
		)
		return nil
	case "inspect":
		if len(args) != 1 {
			return fmt.Errorf("usage: pipeline inspect <object-key>")
		}
		if err := cfg.ValidateObjectStore(); err != nil {
			return err
		}
		client, err := objstore.New(objstore.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			URLStyle:  cfg.S3URLStyle,
		})
		if err != nil {
			return err
		}
		report, err := cli.NewInspectCLI(client).StatArtifact(ctx, cfg.S3Bucket, args[0])
		if err != nil {
			return err
		}
		logger.Info("artifact present",
			slog.String("key", report.Key),
			slog.Int64("bytes", report.Size),
			slog.Time("last_modified", report.LastModified),
		)
		return nil
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}
