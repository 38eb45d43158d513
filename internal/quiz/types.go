// Package quiz defines the generated quiz wire format, its validating
// parser, and the grading function.
package quiz

import (
	"fmt"
	"strings"
)

const (
	TypeTrueFalse   = "true_false"
	TypeFillInBlank = "fill_in_the_blank"
)

// Data is the persisted quiz shape: a list of four-option MCQs plus a mixed
// list of true/false and fill-in-the-blank questions.
type Data struct {
	MCQs           []MCQ           `json:"mcqs"`
	MixedQuestions []MixedQuestion `json:"mixed_questions"`
}

// MCQ has exactly four options labeled "A." through "D." and a correct
// option letter.
type MCQ struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// MixedQuestion is a true/false or fill-in-the-blank question, distinguished
// by Type.
type MixedQuestion struct {
	Type          string `json:"type"`
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
}

// Total is the number of gradable items.
func (d *Data) Total() int {
	return len(d.MCQs) + len(d.MixedQuestions)
}

// CorrectOption resolves the full option string for the stored correct
// letter, e.g. "B" -> "B. London". Empty when no option carries the prefix.
func (m *MCQ) CorrectOption() string {
	prefix := m.CorrectAnswer + "."
	for _, opt := range m.Options {
		if strings.HasPrefix(opt, prefix) {
			return opt
		}
	}
	return ""
}

// Validate rejects structurally broken quizzes at parse time so that no
// per-item lookup can fail later during rendering or grading.
func (d *Data) Validate() error {
	for i, m := range d.MCQs {
		if strings.TrimSpace(m.Question) == "" {
			return fmt.Errorf("mcq %d: empty question", i)
		}
		if len(m.Options) != 4 {
			return fmt.Errorf("mcq %d: expected 4 options, got %d", i, len(m.Options))
		}
		switch m.CorrectAnswer {
		case "A", "B", "C", "D":
		default:
			return fmt.Errorf("mcq %d: correct answer %q is not one of A-D", i, m.CorrectAnswer)
		}
		if m.CorrectOption() == "" {
			return fmt.Errorf("mcq %d: no option carries the %q prefix", i, m.CorrectAnswer+".")
		}
	}

	for i, q := range d.MixedQuestions {
		if q.Type != TypeTrueFalse && q.Type != TypeFillInBlank {
			return fmt.Errorf("mixed question %d: unknown type %q", i, q.Type)
		}
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("mixed question %d: empty question", i)
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return fmt.Errorf("mixed question %d: empty correct answer", i)
		}
	}

	return nil
}
