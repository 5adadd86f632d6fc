package api

import (
	"errors"
	"net/http"
	"time"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/models"
	"collabquest/internal/userstore"
)

type skillStatusResponse struct {
	UserID   string `json:"user_id"`
	Skill    string `json:"skill"`
	Verified bool   `json:"verified"`
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Store.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) getUserSkills(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Store.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	verified := user.VerifiedSkills
	if verified == nil {
		verified = map[string]models.SkillVerification{}
	}
	skills := user.Skills
	if skills.IsZero() {
		skills = models.NewSkillList()
	}
	writeJSON(w, http.StatusOK, models.UserSkills{UserID: user.ID, Skills: skills, VerifiedSkills: verified})
}

func (s *Server) verifySkill(w http.ResponseWriter, r *http.Request) {
	userID, skill := r.PathValue("id"), r.PathValue("skill")
	record := models.SkillVerification{
		Verified:   true,
		VerifiedAt: s.now().UTC().Format(time.RFC3339),
		VerifierID: r.URL.Query().Get("verifier_id"),
		Method:     models.VerificationMethodManual,
	}

	if err := s.deps.Store.MarkSkillVerified(r.Context(), userID, skill, record); err != nil {
		s.writeError(w, r, skillWriteError(userID, skill, err))
		return
	}
	writeJSON(w, http.StatusOK, skillStatusResponse{UserID: userID, Skill: skill, Verified: true})
}

func (s *Server) unverifySkill(w http.ResponseWriter, r *http.Request) {
	userID, skill := r.PathValue("id"), r.PathValue("skill")

	if err := s.deps.Store.UnverifySkill(r.Context(), userID, skill); err != nil {
		s.writeError(w, r, skillWriteError(userID, skill, err))
		return
	}
	writeJSON(w, http.StatusOK, skillStatusResponse{UserID: userID, Skill: skill, Verified: false})
}

// skillWriteError keeps 404 for unknown users and reports anything else as a
// failed skill write.
func skillWriteError(userID, skill string, err error) error {
	if errors.Is(err, userstore.ErrUserNotFound) {
		return err
	}
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodeSkillVerificationWriteFailed {
		return stdErr
	}
	return apperrors.NewSkillVerificationWriteFailedError(userID, skill, err)
}
