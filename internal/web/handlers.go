package web

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/payroll/internal/core"
	"github.com/JonMunkholm/payroll/internal/logging"
	"github.com/JonMunkholm/payroll/internal/web/templates"
	"github.com/a-h/templ"
)

// historyPageSize is how many runs the index page lists.
const historyPageSize = 10

// handleIndex renders the upload page with the current result set.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, nil, http.StatusOK)
}

// renderIndex renders the upload page, optionally with an error alert.
func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, msg *core.UserMessage, status int) {
	ctx := r.Context()

	history, err := s.service.History(ctx, historyPageSize)
	if err != nil {
		logging.FromContext(ctx).Warn("failed to load run history", "error", err)
	}

	page := templates.IndexPage(templates.IndexParams{
		Run:         s.service.Current(),
		History:     history,
		Error:       msg,
		MaxUploadMB: s.cfg.Upload.MaxFileSize >> 20,
	})
	templ.Handler(page, templ.WithStatus(status)).ServeHTTP(w, r)
}

// payrollResponse is the JSON view of the current result set.
type payrollResponse struct {
	RunID            string              `json:"run_id"`
	FileName         string              `json:"file_name"`
	Decoded          int                 `json:"decoded"`
	Kept             int                 `json:"kept"`
	OverridesApplied int                 `json:"overrides_applied"`
	Bytes            int64               `json:"bytes"`
	Columns          []string            `json:"columns"`
	Rows             []map[string]string `json:"rows"`
	Errors           []core.DecodeError  `json:"errors"`
	CreatedAt        time.Time           `json:"created_at"`
}

// handlePayroll returns the current result set as JSON.
func (s *Server) handlePayroll(w http.ResponseWriter, r *http.Request) {
	run := s.service.Current()
	if run == nil {
		s.respondError(w, r, core.ErrNoResult, http.StatusNotFound)
		return
	}

	exportRows := make([]core.ExportRow, len(run.Rows))
	rows := make([]map[string]string, len(run.Rows))
	for i, row := range run.Rows {
		exportRows[i] = core.DataRow{PayrollRow: row}
		rows[i] = row.Map()
	}

	errs := run.Errors
	if errs == nil {
		errs = []core.DecodeError{}
	}

	writeJSON(r.Context(), w, http.StatusOK, payrollResponse{
		RunID:            run.ID,
		FileName:         run.FileName,
		Decoded:          run.Decoded,
		Kept:             run.Kept,
		OverridesApplied: run.OverridesApplied,
		Bytes:            run.Bytes,
		Columns:          core.ExportHeader(exportRows),
		Rows:             rows,
		Errors:           errs,
		CreatedAt:        run.CreatedAt,
	})
}

// handleExport downloads the current result set with the sign-off trailer.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	// Encode fully before writing so a failure can still change the status.
	var buf bytes.Buffer
	if err := s.service.Export(&buf, format); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	filename := s.service.ExportFilename(format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "error", err)
		return
	}

	if run := s.service.Current(); run != nil {
		logging.WithFields(r.Context(), "run_id", run.ID).Info("export served",
			"format", format,
			"rows", len(run.Rows),
		)
	}
}

// handleHistory lists recent runs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", historyPageSize)

	runs, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []core.RunRecord{}
	}

	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"runs": runs})
}

// handleRules lists the active override rules.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"rules": s.service.Rules()})
}

// handleHealth reports liveness and upload slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":  "ok",
		"uploads": s.service.LimiterStatus(),
	})
}
