package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"paragony/internal/storage"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	var ownerID int64
	if v := r.URL.Query().Get("owner"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid value for parameter: owner")
			return
		}
		ownerID = id
	}

	items, err := s.repo.ListItems(r.Context(), accountID(r), ownerID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List items failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while fetching items")
		return
	}

	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := s.repo.GetItem(r.Context(), accountID(r), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		slog.ErrorContext(r.Context(), "Get item failed", "error", err, "item_id", id)
		respondError(w, http.StatusInternalServerError, "error while fetching item")
		return
	}
	respondJSON(w, http.StatusOK, toItemResponse(*item))
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var p itemPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := p.toItem()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := item.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	account := accountID(r)
	if ok, err := s.repo.OwnersExist(r.Context(), account, item.OwnerIDs); err != nil || !ok {
		if err != nil {
			slog.ErrorContext(r.Context(), "Owner check failed", "error", err)
			respondError(w, http.StatusInternalServerError, "error while creating item")
			return
		}
		respondError(w, http.StatusBadRequest, "owner does not exist")
		return
	}

	if err := s.repo.CreateItem(r.Context(), account, &item); err != nil {
		slog.ErrorContext(r.Context(), "Create item failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while creating item")
		return
	}
	respondJSON(w, http.StatusCreated, toItemResponse(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p itemPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := p.toItem()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.ID = id
	if err := item.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.UpdateItem(r.Context(), accountID(r), &item); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		slog.ErrorContext(r.Context(), "Update item failed", "error", err, "item_id", id)
		respondError(w, http.StatusInternalServerError, "error while updating item")
		return
	}
	respondJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.DeleteItem(r.Context(), accountID(r), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete item failed", "error", err, "item_id", id)
		respondError(w, http.StatusInternalServerError, "error while deleting item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
