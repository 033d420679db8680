package server

import (
	"net/http"

	"github.com/dyike/CortexHedge/models"
)

func (s *Server) handleListFlows(w http.ResponseWriter, r *http.Request) {
	includeTemplates := r.URL.Query().Get("include_templates") != "false"
	flows, err := s.store.ListFlows(r.Context(), includeTemplates)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flows)
}

func (s *Server) handleCreateFlow(w http.ResponseWriter, r *http.Request) {
	var f models.Flow
	if err := decodeBody(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.store.CreateFlow(r.Context(), &f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := s.store.GetFlow(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleUpdateFlow(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var f models.Flow
	if err := decodeBody(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.store.UpdateFlow(r.Context(), id, &f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteFlow(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type duplicateRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleDuplicateFlow(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body duplicateRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	dup, err := s.store.DuplicateFlow(r.Context(), id, body.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dup)
}
