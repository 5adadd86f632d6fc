package compatibility

import (
	"strings"

	"collabquest/internal/models"
)

type categoryRule struct {
	category models.Category
	keywords []string
}

// Evaluated in order; the first rule with a keyword contained in the token wins.
// The single-letter "r" and "go" match inside many words, so most tokens
// containing an r land in programming.
var categoryRules = []categoryRule{
	{models.CategoryProgramming, []string{
		"python", "java", "c++", "javascript", "typescript", "rust", "go", "kotlin", "swift", "r", "matlab", "ruby", "php",
	}},
	{models.CategoryWeb, []string{
		"react", "vue", "angular", "html", "css", "node", "express", "django", "flask", "fastapi", "web",
	}},
	{models.CategoryDataAI, []string{
		"ml", "machine learning", "deep learning", "neural", "ai", "nlp", "data", "analytics", "pandas", "numpy", "tensorflow", "pytorch",
	}},
	{models.CategoryDatabase, []string{
		"sql", "mysql", "postgres", "mongodb", "firebase", "database", "redis",
	}},
	{models.CategoryDevOps, []string{
		"docker", "kubernetes", "aws", "azure", "gcp", "devops", "ci", "cd", "git", "github",
	}},
	{models.CategoryMobile, []string{
		"android", "ios", "flutter", "react native", "mobile",
	}},
}

// Categorize maps a normalized token to its skill category.
func Categorize(token string) models.Category {
	token = strings.ToLower(token)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(token, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}
