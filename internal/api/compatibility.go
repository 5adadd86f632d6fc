package api

import (
	"net/http"

	"collabquest/internal/models"
	"collabquest/internal/partners"
	"collabquest/internal/userstore"
)

type compareResponse struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
	User1  string  `json:"user1"`
	User2  string  `json:"user2"`
}

func (s *Server) computeCompatibility(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.scorePair(r, req.User1, req.User2)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// compatibilityScore is the query-string form: ?username1=&username2=.
func (s *Server) compatibilityScore(w http.ResponseWriter, r *http.Request) {
	req := computeRequest{
		User1: r.URL.Query().Get("username1"),
		User2: r.URL.Query().Get("username2"),
	}
	if err := validated(req.Validate()); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.scorePair(r, req.User1, req.User2)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) compareCompatibility(w http.ResponseWriter, r *http.Request) {
	user1, user2 := r.PathValue("user1"), r.PathValue("user2")

	res, err := s.scorePair(r, user1, user2)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{
		Score:  res.Score,
		Reason: res.Reason,
		User1:  user1,
		User2:  user2,
	})
}

func (s *Server) scorePair(r *http.Request, ident1, ident2 string) (models.CompatibilityResult, error) {
	users, err := userstore.ResolveAll(r.Context(), s.deps.Store, ident1, ident2)
	if err != nil {
		return models.CompatibilityResult{}, err
	}
	return s.deps.Scorer.Score(r.Context(), skillsValue(users[0]), skillsValue(users[1])), nil
}

func (s *Server) rankedCompatibility(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", partners.DefaultRankedLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Ranker.Ranked(r.Context(), r.PathValue("username"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) compatiblePartners(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", partners.DefaultPartnersLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Ranker.Partners(r.Context(), r.PathValue("username"), r.URL.Query().Get("department"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// skillsValue decodes stored skills; an undecodable set scores as empty.
func skillsValue(u *models.User) interface{} {
	v, err := u.Skills.Value()
	if err != nil {
		return nil
	}
	return v
}
