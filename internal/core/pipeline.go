package core

import (
	"log/slog"
)

// Pipeline turns decoded payroll rows into the cleaned, ordered row set.
// It performs no I/O apart from logging and is safe for concurrent use.
type Pipeline struct {
	rules  []OverrideRule
	logger *slog.Logger
}

// NewPipeline creates a pipeline with the given override rules.
// A nil logger uses slog.Default().
func NewPipeline(rules []OverrideRule, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		rules:  rules,
		logger: logger,
	}
}

// Rules returns the override rules applied by the pipeline.
func (p *Pipeline) Rules() []OverrideRule {
	return p.rules
}

// TransformStats counts what a single Transform pass did.
type TransformStats struct {
	Decoded          int
	Kept             int
	OverridesApplied int
}

// Transform runs filter, normalize, sort and override over a decoded file.
//
// Decode errors are diagnostics only: the first one is logged and the rows
// that did decode are processed as usual.
func (p *Pipeline) Transform(res DecodeResult) ([]PayrollRow, TransformStats) {
	if len(res.Errors) > 0 {
		first := res.Errors[0]
		p.logger.Warn("decode error",
			"message", first.Message,
			"type", first.Type,
			"code", first.Code,
			"row", first.Row,
			"total", len(res.Errors),
		)
	}

	stats := TransformStats{Decoded: len(res.Data)}

	filtered := FilterRows(res.Data)
	for i := range filtered {
		filtered[i] = NormalizeRow(filtered[i])
	}
	SortByTeamMember(filtered)

	rows := make([]PayrollRow, len(filtered))
	for i, r := range filtered {
		rows[i] = PayrollRow{InputRow: r}
		stats.OverridesApplied += ApplyOverrides(&rows[i], p.rules)
	}
	stats.Kept = len(rows)

	p.logger.Debug("payroll transformed",
		"decoded", stats.Decoded,
		"kept", stats.Kept,
		"overrides", stats.OverridesApplied,
	)
	return rows, stats
}
