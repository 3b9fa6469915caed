package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/atlas-data/atlas-pipeline/internal/dataset"
	"github.com/atlas-data/atlas-pipeline/internal/export"
	"github.com/atlas-data/atlas-pipeline/internal/generator"
)

// Generator produces one batch of synthetic records.
type Generator interface {
	Generate(ctx context.Context) (generator.Batch, error)
}

// Store is the object storage surface the pipeline uploads through.
type Store interface {
	EnsureBucket(ctx context.Context, bucket string) error
	UploadFile(ctx context.Context, bucket, key, path, contentType string) error
}

// Config carries the run parameters the pipeline itself needs.
type Config struct {
	DataDir      string
	Bucket       string
	ArtifactName string
}

// Result reports what a completed run produced.
type Result struct {
	RunID     string
	Rows      int
	Artifacts []string
	Elapsed   time.Duration
}

// Pipeline executes one batch run: generate, assemble and validate,
// export, upload. Stages run strictly in that order and any stage
// error stops the run before the next stage begins. Each run is
// independent; no state survives between invocations.
type Pipeline struct {
	logger *slog.Logger
	gen    Generator
	store  Store
	cfg    Config
}

// New wires a Pipeline from its stage dependencies.
func New(logger *slog.Logger, gen Generator, store Store, cfg Config) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ArtifactName == "" {
		cfg.ArtifactName = "simulated_api_data"
	}
	return &Pipeline{logger: logger, gen: gen, store: store, cfg: cfg}
}

// Run performs a single forward pass and returns the run result.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With(slog.String("run_id", runID))

	stage := time.Now()
	batch, err := p.gen.Generate(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: generate: %w", err)
	}
	logger.Info("stage complete", slog.String("stage", "generate"), slog.Duration("took", time.Since(stage)))

	stage = time.Now()
	table, err := dataset.Assemble(batch)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: assemble: %w", err)
	}
	dataset.Enrich(table)
	if err := dataset.Validate(table); err != nil {
		return Result{}, fmt.Errorf("pipeline: validate: %w", err)
	}
	summary := table.Summarize()
	logger.Info("stage complete", slog.String("stage", "validate"), slog.Duration("took", time.Since(stage)),
		slog.Int("rows", summary.Rows),
		slog.Int("active_users", summary.ActiveUsers),
		slog.Float64("avg_price", summary.AveragePrice),
	)

	stage = time.Now()
	paths, err := p.exportArtifacts(table)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: export: %w", err)
	}
	logger.Info("stage complete", slog.String("stage", "export"), slog.Duration("took", time.Since(stage)))

	stage = time.Now()
	keys, err := p.uploadArtifacts(ctx, runID, paths)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: upload: %w", err)
	}
	logger.Info("stage complete", slog.String("stage", "upload"), slog.Duration("took", time.Since(stage)))

	result := Result{
		RunID:     runID,
		Rows:      summary.Rows,
		Artifacts: keys,
		Elapsed:   time.Since(started),
	}
	logger.Info("run complete", slog.Int("rows", result.Rows), slog.Duration("elapsed", result.Elapsed))
	return result, nil
}

type artifact struct {
	path        string
	contentType string
}

func (p *Pipeline) exportArtifacts(table *dataset.Table) ([]artifact, error) {
	if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	parquetPath := filepath.Join(p.cfg.DataDir, p.cfg.ArtifactName+".parquet")
	if err := export.WriteParquet(parquetPath, table.Rows); err != nil {
		return nil, err
	}

	csvPath := filepath.Join(p.cfg.DataDir, p.cfg.ArtifactName+".csv")
	if err := writeWith(csvPath, table, export.WriteCSV); err != nil {
		return nil, err
	}

	jsonPath := filepath.Join(p.cfg.DataDir, p.cfg.ArtifactName+".json")
	if err := writeWith(jsonPath, table, export.WriteJSON); err != nil {
		return nil, err
	}

	return []artifact{
		{path: parquetPath, contentType: "application/vnd.apache.parquet"},
		{path: csvPath, contentType: "text/csv"},
		{path: jsonPath, contentType: "application/json"},
	}, nil
}

func writeWith(path string, table *dataset.Table, write func(w io.Writer, rows []dataset.Record) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, table.Rows); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// uploadArtifacts pushes every exported file under a run-scoped prefix
// and refreshes the stable latest/ alias consumed by the modeling tool.
func (p *Pipeline) uploadArtifacts(ctx context.Context, runID string, artifacts []artifact) ([]string, error) {
	if err := p.store.EnsureBucket(ctx, p.cfg.Bucket); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(artifacts)*2)
	for _, a := range artifacts {
		name := filepath.Base(a.path)
		for _, key := range []string{
			fmt.Sprintf("runs/%s/%s", runID, name),
			fmt.Sprintf("latest/%s", name),
		} {
			if err := p.store.UploadFile(ctx, p.cfg.Bucket, key, a.path, a.contentType); err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}
