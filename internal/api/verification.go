package api

import (
	"net/http"

	"collabquest/internal/verification"
)

func (s *Server) startVerification(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.deps.Store.GetUser(r.Context(), req.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Verification.Start(r.Context(), req.UserID, req.Skill)
	if err != nil {
		s.writeError(w, r, verification.ToStandardError(err, "", req.Skill))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) submitVerification(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Verification.Submit(r.Context(), req.SessionID, req.Answers)
	if err != nil {
		s.writeError(w, r, verification.ToStandardError(err, req.SessionID, ""))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
