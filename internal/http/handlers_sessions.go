package http

import "net/http"

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.sessionList.Get(listKey); ok {
		_ = writeJSON(w, http.StatusOK, cached, nil)
		return
	}

	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		resp = append(resp, toSessionResponse(sess))
	}
	s.sessionList.Set(listKey, resp)
	_ = writeJSON(w, http.StatusOK, resp, nil)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := req.toSession()
	if err != nil {
		serviceError(w, r, err)
		return
	}

	created, err := s.sessions.Create(r.Context(), session)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	s.invalidateSessions()
	_ = writeJSON(w, http.StatusCreated, toSessionResponse(created), nil)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		serviceError(w, r, err)
		return
	}

	updated, err := s.sessions.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	s.invalidateSessions()
	_ = writeJSON(w, http.StatusOK, toSessionResponse(updated), nil)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		serviceError(w, r, err)
		return
	}

	s.invalidateSessions()
	w.WriteHeader(http.StatusNoContent)
}
