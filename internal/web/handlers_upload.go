package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/payroll/internal/core"
)

// errNoFile is returned when the multipart form has no "file" part.
var errNoFile = errors.New("no file provided")

// uploadResponse is the JSON body returned for an accepted upload.
type uploadResponse struct {
	RunID   string             `json:"run_id"`
	Rows    int                `json:"rows"`
	Decoded int                `json:"decoded"`
	Errors  []core.DecodeError `json:"errors"`
}

// handleUpload accepts a payroll file and returns the run summary as JSON.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	run, err := s.processUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	errs := run.Errors
	if errs == nil {
		errs = []core.DecodeError{}
	}
	writeJSON(r.Context(), w, http.StatusOK, uploadResponse{
		RunID:   run.ID,
		Rows:    run.Kept,
		Decoded: run.Decoded,
		Errors:  errs,
	})
}

// handleUploadPage accepts the upload form and redirects back to the page.
func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.processUpload(w, r); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// processUpload reads the "file" part of a multipart request and runs it
// through the service, replacing the current result set.
func (s *Server) processUpload(w http.ResponseWriter, r *http.Request) (*core.Run, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	// Multipart overhead is small; anything past maxSize spills to disk.
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, fmt.Errorf("file too large: %w", err)
		}
		return nil, fmt.Errorf("invalid upload form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(WithRequestMetadata(r.Context(), r), s.cfg.Upload.Timeout)
	defer cancel()

	return s.service.Process(ctx, header.Filename, file)
}
