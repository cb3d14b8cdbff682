package web

import (
	"net/http"

	"github.com/JonMunkholm/payroll/internal/logging"
)

// handleReset discards the current result set. Run history is kept.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.service.Reset()
	logging.FromContext(r.Context()).Info("payroll result reset", "ip", clientIP(r))
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "reset"})
}
