package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoResult is returned by Export before any file has been accepted.
	ErrNoResult = errors.New("no payroll result available")

	// ErrEmptyFile is returned for uploads without a header row.
	ErrEmptyFile = errors.New("empty file")
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Rules         []OverrideRule
	Encoder       *Encoder
	Recorder      RunRecorder
	MaxConcurrent int
	MaxWait       time.Duration
	Logger        *slog.Logger
}

// Service runs accepted files through the pipeline and holds the result.
type Service struct {
	pipeline *Pipeline
	encoder  *Encoder
	limiter  *UploadLimiter
	recorder RunRecorder
	results  ResultHolder
	logger   *slog.Logger
}

// NewService creates a Service. Nil options fall back to DefaultRules,
// NewEncoder and NopRecorder; a non-nil empty Rules list disables overrides.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	enc := opts.Encoder
	if enc == nil {
		enc = NewEncoder()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = NopRecorder{}
	}

	return &Service{
		pipeline: NewPipeline(rules, logger),
		encoder:  enc,
		limiter:  NewUploadLimiter(opts.MaxConcurrent, opts.MaxWait),
		recorder: rec,
		logger:   logger,
	}
}

// Process decodes an uploaded file, transforms it, and makes the outcome
// the current result set. The previous result is replaced wholesale.
func (s *Service) Process(ctx context.Context, fileName string, r io.Reader) (*Run, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	logger := s.logger.With("file", fileName)

	counter := NewCountingReader(r)
	decoded, err := Decode(FormatForFile(fileName), counter)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileName, err)
	}
	if len(decoded.Meta.Fields) == 0 {
		return nil, fmt.Errorf("decode %s: %w", fileName, ErrEmptyFile)
	}

	rows, stats := s.pipeline.Transform(decoded)

	run := &Run{
		ID:               uuid.NewString(),
		FileName:         fileName,
		Decoded:          stats.Decoded,
		Kept:             stats.Kept,
		OverridesApplied: stats.OverridesApplied,
		Errors:           decoded.Errors,
		Rows:             rows,
		CreatedAt:        start.UTC(),
		Duration:         time.Since(start),
		Bytes:            counter.BytesRead,
	}
	s.results.Replace(run)

	logger.Info("payroll processed",
		"run_id", run.ID,
		"decoded", run.Decoded,
		"kept", run.Kept,
		"decode_errors", len(run.Errors),
		"bytes", run.Bytes,
		"duration_ms", run.Duration.Milliseconds(),
	)

	if err := s.recorder.RecordRun(ctx, run.Record(ctx)); err != nil {
		logger.Warn("failed to record run", "run_id", run.ID, "error", err)
	}

	return run, nil
}

// Current returns the current result set, or nil before the first upload.
func (s *Service) Current() *Run {
	return s.results.Current()
}

// Reset discards the current result set.
func (s *Service) Reset() {
	s.results.Clear()
}

// Export encodes the current result set, trailer row included.
func (s *Service) Export(w io.Writer, format Format) error {
	run := s.results.Current()
	if run == nil {
		return ErrNoResult
	}
	return s.encoder.Encode(w, format, run.ExportRows())
}

// ExportFilename returns the download name for a format.
func (s *Service) ExportFilename(format Format) string {
	return s.encoder.Filename(format)
}

// Rules returns the active override rules.
func (s *Service) Rules() []OverrideRule {
	return s.pipeline.Rules()
}

// History returns up to limit of the most recent runs.
func (s *Service) History(ctx context.Context, limit int) ([]RunRecord, error) {
	return s.recorder.RecentRuns(ctx, limit)
}

// LimiterStatus reports upload slot usage.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
