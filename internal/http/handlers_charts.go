package http

import (
	"log/slog"
	"net/http"

	"paragony/internal/core"
	"paragony/internal/stats"
	"paragony/internal/storage"
)

type payerSumResponse struct {
	Payer              int64   `json:"payer"`
	ExpenseSum         float64 `json:"expense_sum"`
	ReceiptIDs         []int64 `json:"receipt_ids"`
	TopOutlierReceipts []int64 `json:"top_outlier_receipts"`
}

type barPersonsResponse struct {
	SharedExpenses []payerSumResponse `json:"shared_expenses"`
	NotOwnExpenses []payerSumResponse `json:"not_own_expenses"`
}

func toPayerSumResponses(sums []stats.PayerSum) []payerSumResponse {
	out := make([]payerSumResponse, 0, len(sums))
	for _, ps := range sums {
		ids := ps.ReceiptIDs
		if ids == nil {
			ids = []int64{}
		}
		outliers := ps.TopOutliers
		if outliers == nil {
			outliers = []int64{}
		}
		out = append(out, payerSumResponse{
			Payer:              ps.PayerID,
			ExpenseSum:         core.CentsToValue(ps.SumCents),
			ReceiptIDs:         ids,
			TopOutlierReceipts: outliers,
		})
	}
	return out
}

// handleBarPersons aggregates the month's expenses per payer: shared items
// (payer among multiple owners, full value) and not-own items (payer not an
// owner at all).
func (s *Server) handleBarPersons(w http.ResponseWriter, r *http.Request) {
	month, year, err := parseMonthYear(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	categories := queryList(r, "category")

	receipts, err := s.repo.ListMonthReceipts(r.Context(), accountID(r), year, month, core.Expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Bar persons query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while fetching bar persons")
		return
	}

	shared, notOwn := stats.ExpensesByPayer(receipts, categories)
	respondJSON(w, http.StatusOK, barPersonsResponse{
		SharedExpenses: toPayerSumResponses(shared),
		NotOwnExpenses: toPayerSumResponses(notOwn),
	})
}

type shopSumResponse struct {
	Shop       string  `json:"shop"`
	ExpenseSum float64 `json:"expense_sum"`
}

// handleBarShops sums the month's expenses by shop, restricted to a category
// set (default shopping categories) and to items assigned to the requested
// owners.
func (s *Server) handleBarShops(w http.ResponseWriter, r *http.Request) {
	month, year, err := parseMonthYear(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	owners, err := queryIDList(r, "owners")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(owners) == 0 {
		respondError(w, http.StatusBadRequest, "missing parameter: owners")
		return
	}
	categories := queryList(r, "category")
	if len(categories) == 0 {
		categories = core.ShoppingCategories
	}

	sums, err := s.repo.ShopExpenseSums(r.Context(), accountID(r), year, month, categories, owners)
	if err != nil {
		slog.ErrorContext(r.Context(), "Bar shops query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while fetching bar shops")
		return
	}

	out := make([]shopSumResponse, 0, len(sums))
	for _, e := range sums {
		out = append(out, shopSumResponse{Shop: e.Shop, ExpenseSum: core.CentsToValue(e.SumCents)})
	}
	respondJSON(w, http.StatusOK, out)
}

// handleLineSums builds the cumulative daily series for one owner. Multiple
// owners may be passed for interface symmetry; only the first is used.
func (s *Server) handleLineSums(w http.ResponseWriter, r *http.Request) {
	month, year, err := parseMonthYear(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	owners, err := queryIDList(r, "owners")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(owners) == 0 {
		respondError(w, http.StatusBadRequest, "missing parameter: owners")
		return
	}
	ownerID := owners[0]

	filter := storage.ReceiptFilter{Year: year, Month: month, OwnerIDs: []int64{ownerID}}
	receipts, err := s.repo.ListReceipts(r.Context(), accountID(r), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Line sums query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while fetching line sums")
		return
	}

	respondJSON(w, http.StatusOK, stats.DailySeries(receipts, year, month, ownerID))
}

type categorySumResponse struct {
	Category   string  `json:"category"`
	ExpenseSum float64 `json:"expense_sum"`
	Fill       string  `json:"fill"`
}

// handlePieCategories sums the month's expenses by category, each row
// carrying the frontend's CSS color token.
func (s *Server) handlePieCategories(w http.ResponseWriter, r *http.Request) {
	month, year, err := parseMonthYear(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	owners, err := queryIDList(r, "owners")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sums, err := s.repo.CategoryExpenseSums(r.Context(), accountID(r), year, month, owners)
	if err != nil {
		slog.ErrorContext(r.Context(), "Pie categories query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while fetching pie categories")
		return
	}

	out := make([]categorySumResponse, 0, len(sums))
	for _, e := range sums {
		out = append(out, categorySumResponse{
			Category:   e.Category,
			ExpenseSum: core.CentsToValue(e.SumCents),
			Fill:       "var(--color-" + e.Category + ")",
		})
	}
	respondJSON(w, http.StatusOK, out)
}
