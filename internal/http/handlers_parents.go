package http

import "net/http"

func (s *Server) handleListParents(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.parentList.Get(listKey); ok {
		_ = writeJSON(w, http.StatusOK, cached, nil)
		return
	}

	parents, err := s.parents.List(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}

	resp := make([]parentResponse, 0, len(parents))
	for _, p := range parents {
		resp = append(resp, toParentResponse(p))
	}
	s.parentList.Set(listKey, resp)
	_ = writeJSON(w, http.StatusOK, resp, nil)
}

func (s *Server) handleCreateParent(w http.ResponseWriter, r *http.Request) {
	var req parentRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.parents.Create(r.Context(), req.toParent())
	if err != nil {
		serviceError(w, r, err)
		return
	}

	s.invalidateParents()
	_ = writeJSON(w, http.StatusCreated, toParentResponse(created), nil)
}

func (s *Server) handleUpdateParent(w http.ResponseWriter, r *http.Request) {
	var req parentRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.parents.Update(r.Context(), r.PathValue("id"), req.toPatch())
	if err != nil {
		serviceError(w, r, err)
		return
	}

	s.invalidateParents()
	_ = writeJSON(w, http.StatusOK, toParentResponse(updated), nil)
}

func (s *Server) handleDeleteParent(w http.ResponseWriter, r *http.Request) {
	if err := s.parents.Delete(r.Context(), r.PathValue("id")); err != nil {
		serviceError(w, r, err)
		return
	}

	s.invalidateParents()
	w.WriteHeader(http.StatusNoContent)
}
