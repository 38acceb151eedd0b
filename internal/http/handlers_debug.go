package http

import (
	"log/slog"
	"net/http"

	"paragony/internal/stats"
	"paragony/internal/storage"
)

// handleDuplicateReceipts flags receipts sharing the same (payment date,
// payer, shop, transaction type) tuple. Read-only.
func (s *Server) handleDuplicateReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.repo.ListReceipts(r.Context(), accountID(r), storage.ReceiptFilter{})
	if err != nil {
		slog.ErrorContext(r.Context(), "Duplicate scan failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while checking duplicates")
		return
	}

	groups := stats.FindDuplicates(receipts)
	if len(groups) == 0 {
		respondJSON(w, http.StatusOK, map[string]string{"status": "no duplicates"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "duplicates found",
		"duplicates": groups,
	})
}
