package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingMCQs  = errors.New("quiz data missing mcqs key")
	ErrMissingMixed = errors.New("quiz data missing mixed_questions key")
)

// Parse strips an optional markdown code fence from a model response,
// unmarshals the JSON and validates it. Both top-level keys must be present;
// every item must pass Validate.
func Parse(response string) (*Data, error) {
	body := StripCodeFence(response)

	// Pointer slices distinguish an absent key from an empty list.
	var raw struct {
		MCQs           *[]MCQ           `json:"mcqs"`
		MixedQuestions *[]MixedQuestion `json:"mixed_questions"`
	}

	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode quiz JSON: %w", err)
	}

	if raw.MCQs == nil {
		return nil, ErrMissingMCQs
	}
	if raw.MixedQuestions == nil {
		return nil, ErrMissingMixed
	}

	data := &Data{
		MCQs:           *raw.MCQs,
		MixedQuestions: *raw.MixedQuestions,
	}

	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz data: %w", err)
	}

	return data, nil
}

// StripCodeFence removes a leading ```json (or bare ```) fence and the
// matching trailing fence, when present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}

	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}

	return s
}
