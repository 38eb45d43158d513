package quiz

import (
	"fmt"
	"strings"
)

// ItemResult is the graded outcome of one question.
type ItemResult struct {
	Key           string `json:"key"`
	Question      string `json:"question"`
	Submitted     string `json:"submitted"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

// Result is the outcome of grading one answer map against one quiz.
type Result struct {
	Score int          `json:"score"`
	Total int          `json:"total"`
	Items []ItemResult `json:"items"`
}

// AnswerKey returns the answer-map key for a question: "mcq_<i>" for MCQs,
// "mixed_<i>" for mixed questions.
func AnswerKey(section string, index int) string {
	return fmt.Sprintf("%s_%d", section, index)
}

// Grade is a pure function of (quiz data, submitted answers). Unanswered
// questions count as incorrect.
//
// MCQ matching is case-sensitive: the trimmed submission must string-equal
// the trimmed option resolved from the stored correct letter, prefix
// included. True/false and fill-in-the-blank compare case-insensitively
// with no further normalization.
func Grade(data *Data, answers map[string]string) *Result {
	result := &Result{
		Total: data.Total(),
		Items: make([]ItemResult, 0, data.Total()),
	}

	for i, mcq := range data.MCQs {
		key := AnswerKey("mcq", i)
		submitted := answers[key]
		correctOption := mcq.CorrectOption()

		correct := submitted != "" &&
			strings.TrimSpace(submitted) == strings.TrimSpace(correctOption)
		if correct {
			result.Score++
		}

		result.Items = append(result.Items, ItemResult{
			Key:           key,
			Question:      mcq.Question,
			Submitted:     submitted,
			CorrectAnswer: correctOption,
			Correct:       correct,
		})
	}

	for i, q := range data.MixedQuestions {
		key := AnswerKey("mixed", i)
		submitted := answers[key]

		correct := submitted != "" && strings.EqualFold(submitted, q.CorrectAnswer)
		if correct {
			result.Score++
		}

		result.Items = append(result.Items, ItemResult{
			Key:           key,
			Question:      q.Question,
			Submitted:     submitted,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
		})
	}

	return result
}
