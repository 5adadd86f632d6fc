package models

// Category groups related skill tokens.
type Category string

const (
	CategoryProgramming Category = "programming"
	CategoryWeb         Category = "web"
	CategoryDataAI      Category = "data_ai"
	CategoryDatabase    Category = "database"
	CategoryDevOps      Category = "devops"
	CategoryMobile      Category = "mobile"
	CategoryOther       Category = "other"
)

type CompatibilityResult struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// PartnerMatch is one entry of a ranked compatibility listing.
type PartnerMatch struct {
	UserID         string                       `json:"user_id"`
	Username       string                       `json:"username"`
	Name           string                       `json:"name"`
	Department     string                       `json:"department"`
	Score          float64                      `json:"score"`
	Reason         string                       `json:"reason"`
	VerifiedSkills map[string]SkillVerification `json:"verified_skills,omitempty"`
}

type RankedPartners struct {
	User    string         `json:"user"`
	Results []PartnerMatch `json:"results"`
}
