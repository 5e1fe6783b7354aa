package http

import "net/http"

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.childList.Get(listKey); ok {
		_ = writeJSON(w, http.StatusOK, cached, nil)
		return
	}

	children, err := s.children.List(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}

	resp := make([]childResponse, 0, len(children))
	for _, c := range children {
		resp = append(resp, toChildResponse(c))
	}
	s.childList.Set(listKey, resp)
	_ = writeJSON(w, http.StatusOK, resp, nil)
}

func (s *Server) handleCreateChild(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	child, err := req.toChild()
	if err != nil {
		serviceError(w, r, err)
		return
	}

	created, err := s.children.Create(r.Context(), child)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	s.invalidateChildren()
	_ = writeJSON(w, http.StatusCreated, toChildResponse(created), nil)
}

func (s *Server) handleUpdateChild(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		serviceError(w, r, err)
		return
	}

	updated, err := s.children.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	s.invalidateChildren()
	_ = writeJSON(w, http.StatusOK, toChildResponse(updated), nil)
}

func (s *Server) handleDeleteChild(w http.ResponseWriter, r *http.Request) {
	if err := s.children.Delete(r.Context(), r.PathValue("id")); err != nil {
		serviceError(w, r, err)
		return
	}

	s.invalidateChildren()
	w.WriteHeader(http.StatusNoContent)
}
