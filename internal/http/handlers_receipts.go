package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"paragony/internal/core"
	"paragony/internal/services"
	"paragony/internal/storage"
)

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f storage.ReceiptFilter

	for _, p := range []struct {
		key string
		dst *int
	}{
		{"year", &f.Year},
		{"month", &f.Month},
		{"day", &f.Day},
	} {
		if v := q.Get(p.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid value for parameter: "+p.key)
				return
			}
			*p.dst = n
		}
	}
	if v := q.Get("payer"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid value for parameter: payer")
			return
		}
		f.PayerID = id
	}
	if v := q.Get("transaction_type"); v != "" {
		f.TransactionType = core.TransactionType(v)
		if err := f.TransactionType.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, "invalid value for parameter: transaction_type")
			return
		}
	}
	f.Shop = q.Get("shop")
	owners, err := queryIDList(r, "owners")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.OwnerIDs = owners
	f.Categories = queryList(r, "category")

	receipts, err := s.repo.ListReceipts(r.Context(), accountID(r), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "List receipts failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while fetching receipts")
		return
	}
	respondJSON(w, http.StatusOK, toReceiptResponses(receipts))
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := s.repo.GetReceipt(r.Context(), accountID(r), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "receipt not found")
			return
		}
		slog.ErrorContext(r.Context(), "Get receipt failed", "error", err, "receipt_id", id)
		respondError(w, http.StatusInternalServerError, "error while fetching receipt")
		return
	}
	respondJSON(w, http.StatusOK, toReceiptResponse(*rec))
}

func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	var p receiptPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := p.toReceipt()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.CreateReceipt(r.Context(), accountID(r), rec); err != nil {
		s.writeReceiptError(w, r, err, "error while creating receipt")
		return
	}
	respondJSON(w, http.StatusCreated, toReceiptResponse(*rec))
}

func (s *Server) handleUpdateReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p receiptPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := p.toReceipt()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec.ID = id

	if err := s.service.UpdateReceipt(r.Context(), accountID(r), rec); err != nil {
		s.writeReceiptError(w, r, err, "error while updating receipt")
		return
	}
	respondJSON(w, http.StatusOK, toReceiptResponse(*rec))
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.service.DeleteReceipt(r.Context(), accountID(r), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "receipt not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete receipt failed", "error", err, "receipt_id", id)
		respondError(w, http.StatusInternalServerError, "error while deleting receipt")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeReceiptError maps service errors to API statuses. Validation
// problems are the client's fault; everything else is a 500.
func (s *Server) writeReceiptError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "receipt not found")
	case errors.Is(err, services.ErrUnknownOwner),
		errors.Is(err, services.ErrNotAPayer),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidValue),
		errors.Is(err, core.ErrInvalidTransaction),
		errors.Is(err, core.ErrEmptyShop),
		errors.Is(err, core.ErrNoPayer),
		errors.Is(err, core.ErrNoOwners),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrDescriptionTooLong):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Receipt write failed", "error", err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
