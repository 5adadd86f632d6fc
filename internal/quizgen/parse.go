package quizgen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"collabquest/internal/common/validation"
	"collabquest/internal/models"
)

var quizSchema = validation.MustCompile(`{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["question", "options", "correct_answer"],
    "properties": {
      "id": {"type": ["string", "integer"]},
      "question": {"type": "string", "minLength": 1},
      "options": {
        "type": "array",
        "minItems": 2,
        "items": {"type": "string"}
      },
      "correct_answer": {"type": "string", "minLength": 1}
    }
  }
}`)

// CleanJSON strips markdown fences and trims text around the outermost JSON
// array or object.
func CleanJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return text
	}
	end := strings.LastIndexAny(text, "]}")
	if end < start {
		return text[start:]
	}
	return text[start : end+1]
}

type rawQuestion struct {
	ID            interface{} `json:"id"`
	Question      string      `json:"question"`
	Options       []string    `json:"options"`
	CorrectAnswer string      `json:"correct_answer"`
}

// ParseQuestions decodes a model answer into questions. It accepts a bare
// array or an object wrapping the array under "questions".
func ParseQuestions(text string) ([]models.QuizQuestion, error) {
	cleaned := CleanJSON(text)

	var doc interface{}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	if obj, ok := doc.(map[string]interface{}); ok {
		inner, found := obj["questions"]
		if !found {
			return nil, fmt.Errorf("%w: object without questions", ErrInvalidQuiz)
		}
		doc = inner
	}

	result, err := quizSchema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuiz, strings.Join(result.GetErrorMessages(), "; "))
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	var raw []rawQuestion
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}

	questions := make([]models.QuizQuestion, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		id := questionID(r.ID)
		if id == "" || seen[id] {
			id = freeID(seen, i)
		}
		seen[id] = true
		questions[i] = models.QuizQuestion{
			ID:            id,
			Question:      r.Question,
			Options:       r.Options,
			CorrectAnswer: r.CorrectAnswer,
		}
	}
	return questions, nil
}

func questionID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

// freeID returns q<i+1>, suffixed until it does not collide.
func freeID(seen map[string]bool, i int) string {
	id := fmt.Sprintf("q%d", i+1)
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("q%d_%d", i+1, n)
	}
	return id
}
