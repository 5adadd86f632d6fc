package models

// User is a collaborator profile as held by the user store.
type User struct {
	ID             string                       `json:"user_id" db:"id"`
	Username       string                       `json:"username" db:"username"`
	Name           string                       `json:"name" db:"name"`
	Department     string                       `json:"department" db:"department"`
	College        string                       `json:"college,omitempty" db:"college"`
	Year           int                          `json:"year,omitempty" db:"year"`
	Email          string                       `json:"email,omitempty" db:"email"`
	Skills         SkillSet                     `json:"skills" db:"skills"`
	VerifiedSkills map[string]SkillVerification `json:"verified_skills" db:"verified_skills"`
}

// UserFilter narrows ListUsers. Empty fields match everything.
type UserFilter struct {
	Department string
	Limit      int
}

type UserSkills struct {
	UserID         string                       `json:"user_id"`
	Skills         SkillSet                     `json:"skills"`
	VerifiedSkills map[string]SkillVerification `json:"verified_skills"`
}
