package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"paragony/internal/core"
	"paragony/internal/storage"
)

func (s *Server) handleListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := s.repo.ListOwners(r.Context(), accountID(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "List owners failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while fetching owners")
		return
	}

	out := make([]ownerPayload, 0, len(owners))
	for _, o := range owners {
		out = append(out, ownerPayload{ID: o.ID, Name: o.Name, Payer: o.Payer})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateOwner(w http.ResponseWriter, r *http.Request) {
	var p ownerPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		respondError(w, http.StatusBadRequest, "owner name is required")
		return
	}

	owner := &core.Owner{Name: strings.TrimSpace(p.Name), Payer: p.Payer}
	if err := s.repo.CreateOwner(r.Context(), accountID(r), owner); err != nil {
		slog.ErrorContext(r.Context(), "Create owner failed", "error", err)
		respondError(w, http.StatusInternalServerError, "error while creating owner")
		return
	}
	respondJSON(w, http.StatusCreated, ownerPayload{ID: owner.ID, Name: owner.Name, Payer: owner.Payer})
}

func (s *Server) handleUpdateOwner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var p ownerPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		respondError(w, http.StatusBadRequest, "owner name is required")
		return
	}

	owner := &core.Owner{ID: id, Name: strings.TrimSpace(p.Name), Payer: p.Payer}
	if err := s.repo.UpdateOwner(r.Context(), accountID(r), owner); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "owner not found")
			return
		}
		slog.ErrorContext(r.Context(), "Update owner failed", "error", err, "owner_id", id)
		respondError(w, http.StatusInternalServerError, "error while updating owner")
		return
	}
	respondJSON(w, http.StatusOK, ownerPayload{ID: owner.ID, Name: owner.Name, Payer: owner.Payer})
}

func (s *Server) handleDeleteOwner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.DeleteOwner(r.Context(), accountID(r), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "owner not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete owner failed", "error", err, "owner_id", id)
		respondError(w, http.StatusInternalServerError, "error while deleting owner")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
