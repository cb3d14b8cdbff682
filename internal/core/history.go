package core

import (
	"context"
	"time"
)

// RunRecord is the history entry kept for a Run.
// It carries counts only: no names, SSNs or other row data.
type RunRecord struct {
	ID               string    `json:"id"`
	FileName         string    `json:"file_name"`
	Decoded          int       `json:"decoded"`
	Kept             int       `json:"kept"`
	OverridesApplied int       `json:"overrides_applied"`
	DecodeErrors     int       `json:"decode_errors"`
	IPAddress        string    `json:"ip_address,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
	DurationMS       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// RunRecorder stores run history.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

// NopRecorder discards history. Used when no database is configured.
type NopRecorder struct{}

// RecordRun implements RunRecorder.
func (NopRecorder) RecordRun(context.Context, RunRecord) error { return nil }

// RecentRuns implements RunRecorder.
func (NopRecorder) RecentRuns(context.Context, int) ([]RunRecord, error) { return nil, nil }

// Record builds the history entry for a run, taking client metadata from ctx.
func (r *Run) Record(ctx context.Context) RunRecord {
	return RunRecord{
		ID:               r.ID,
		FileName:         r.FileName,
		Decoded:          r.Decoded,
		Kept:             r.Kept,
		OverridesApplied: r.OverridesApplied,
		DecodeErrors:     len(r.Errors),
		IPAddress:        IPAddressFromContext(ctx),
		UserAgent:        UserAgentFromContext(ctx),
		DurationMS:       r.Duration.Milliseconds(),
		CreatedAt:        r.CreatedAt,
	}
}
