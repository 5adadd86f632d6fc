// internal/workers/matching/compute-compatibility/models.go
package computecompatibility

import "encoding/json"

// Input names two users by username or id. When both skill sets are carried
// in the process variables the store is not consulted.
type Input struct {
	User1   string          `json:"user1"`
	User2   string          `json:"user2"`
	Skills1 json.RawMessage `json:"skills1,omitempty"`
	Skills2 json.RawMessage `json:"skills2,omitempty"`
}

type Output struct {
	CompatibilityScore  float64 `json:"compatibilityScore"`
	CompatibilityReason string  `json:"compatibilityReason"`
}
