package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SkillSet is a skill collection exactly as it arrived: a JSON array of names,
// an object keyed by skill name, null, or anything else. Object key order is kept.
type SkillSet struct {
	raw json.RawMessage
}

// NewSkillList builds a SkillSet holding a JSON array of names.
func NewSkillList(names ...string) SkillSet {
	if names == nil {
		names = []string{}
	}
	raw, _ := json.Marshal(names)
	return SkillSet{raw: raw}
}

// SkillSetFromJSON wraps an already-encoded JSON value.
func SkillSetFromJSON(raw []byte) SkillSet {
	if len(bytes.TrimSpace(raw)) == 0 {
		return SkillSet{}
	}
	return SkillSet{raw: append(json.RawMessage(nil), raw...)}
}

// IsZero reports whether no value (or JSON null) was supplied.
func (s SkillSet) IsZero() bool {
	trimmed := bytes.TrimSpace(s.raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func (s SkillSet) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("null"), nil
	}
	return s.raw, nil
}

func (s *SkillSet) UnmarshalJSON(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("skill set: invalid JSON")
	}
	s.raw = append(s.raw[:0], data...)
	return nil
}

// Value decodes the set into plain Go values: nil for null, []interface{} for
// an array, []string of keys (in document order) for an object, or the scalar.
func (s SkillSet) Value() (interface{}, error) {
	if s.IsZero() {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(s.raw)
	if trimmed[0] != '{' {
		var v interface{}
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, fmt.Errorf("skill set: %w", err)
		}
		return v, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("skill set: %w", err)
	}
	keys := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("skill set: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("skill set: unexpected key %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("skill set: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// SkillVerification records how and when a skill was verified.
type SkillVerification struct {
	Verified   bool   `json:"verified"`
	VerifiedAt string `json:"verified_at,omitempty"` // RFC3339
	VerifierID string `json:"verifier_id,omitempty"`
	Method     string `json:"method,omitempty"` // quiz | manual
}

const (
	VerificationMethodQuiz   = "quiz"
	VerificationMethodManual = "manual"
)
