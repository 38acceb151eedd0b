package http

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	searchMinRunes = 3
	searchLimit    = 10
)

type shopResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type predictionResult struct {
	Name      string `json:"name"`
	Frequency int64  `json:"frequency"`
}

type searchResponse[T any] struct {
	Results []T `json:"results"`
}

// handleSearchRecentShops serves shop-name autocomplete. An empty query
// returns every shop ordered by name; a query below the minimum length
// returns no results at all rather than an error.
func (s *Server) handleSearchRecentShops(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query != "" && utf8.RuneCountInString(query) < searchMinRunes {
		respondJSON(w, http.StatusOK, searchResponse[shopResult]{Results: []shopResult{}})
		return
	}

	shops, err := s.repo.SearchRecentShops(r.Context(), accountID(r), query, searchLimit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent shop search failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while searching shops")
		return
	}

	results := make([]shopResult, 0, len(shops))
	for _, shop := range shops {
		results = append(results, shopResult{ID: shop.ID, Name: capitalize(shop.Name)})
	}
	respondJSON(w, http.StatusOK, searchResponse[shopResult]{Results: results})
}

// handleRebuildRecentShops rescans receipt shops, optionally adding names
// sent in the request body, and upserts them all.
func (s *Server) handleRebuildRecentShops(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NewShops []string `json:"new_shops"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &body); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	account := accountID(r)
	n, err := s.service.RebuildRecentShops(r.Context(), account)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent shop rebuild failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while updating shops")
		return
	}
	for _, shop := range body.NewShops {
		if err := s.repo.UpsertRecentShop(r.Context(), account, shop); err != nil {
			slog.ErrorContext(r.Context(), "Recent shop upsert failed", "shop", shop, "error", err)
			respondError(w, http.StatusInternalServerError, "error while updating shops")
			return
		}
		n++
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":       "Shops updated successfully.",
		"updated_count": n,
	})
}

func (s *Server) handleDeleteRecentShops(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteRecentShops(r.Context(), accountID(r)); err != nil {
		slog.ErrorContext(r.Context(), "Recent shop delete failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while deleting shops")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "All recent shops have been deleted."})
}

// handleSearchItemPredictions serves item-description autocomplete ordered
// by frequency for queried searches and by description otherwise.
func (s *Server) handleSearchItemPredictions(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if query != "" && utf8.RuneCountInString(query) < searchMinRunes {
		respondJSON(w, http.StatusOK, searchResponse[predictionResult]{Results: []predictionResult{}})
		return
	}

	predictions, err := s.repo.SearchItemPredictions(r.Context(), accountID(r), query)
	if err != nil {
		slog.ErrorContext(r.Context(), "Item prediction search failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while searching predictions")
		return
	}

	results := make([]predictionResult, 0, len(predictions))
	for _, p := range predictions {
		results = append(results, predictionResult{Name: capitalize(p.Description), Frequency: p.Frequency})
	}
	respondJSON(w, http.StatusOK, searchResponse[predictionResult]{Results: results})
}

func (s *Server) handleRebuildItemPredictions(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.RebuildItemPredictions(r.Context(), accountID(r)); err != nil {
		slog.ErrorContext(r.Context(), "Item prediction rebuild failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while updating predictions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "ItemPrediction table updated."})
}

func (s *Server) handleDeleteItemPredictions(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteItemPredictions(r.Context(), accountID(r)); err != nil {
		slog.ErrorContext(r.Context(), "Item prediction delete failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while deleting predictions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "All predictions have been deleted."})
}
