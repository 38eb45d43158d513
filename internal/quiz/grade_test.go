package quiz

import (
	"fmt"
	"reflect"
	"testing"
)

func capitalQuiz() *Data {
	return &Data{
		MCQs: []MCQ{
			{
				Question:      "What is the capital of the United Kingdom?",
				Options:       []string{"A. Paris", "B. London", "C. Rome", "D. Berlin"},
				CorrectAnswer: "B",
			},
		},
		MixedQuestions: []MixedQuestion{
			{Type: TypeTrueFalse, Question: "The Thames flows through London.", CorrectAnswer: "True"},
			{Type: TypeFillInBlank, Question: "The powerhouse of the cell is the _______.", CorrectAnswer: "mitochondria"},
		},
	}
}

func TestGradeMCQCaseSensitive(t *testing.T) {
	data := capitalQuiz()

	tests := []struct {
		name      string
		submitted string
		want      bool
	}{
		{"exact match", "B. London", true},
		{"surrounding whitespace trimmed", "  B. London  ", true},
		{"lowercase rejected", "b. london", false},
		{"wrong option", "A. Paris", false},
		{"unanswered", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Grade(data, map[string]string{"mcq_0": tt.submitted})
			if got := result.Items[0].Correct; got != tt.want {
				t.Errorf("Grade(%q) correct = %v, want %v", tt.submitted, got, tt.want)
			}
		})
	}
}

func TestGradeTrueFalseCaseInsensitive(t *testing.T) {
	data := capitalQuiz()

	result := Grade(data, map[string]string{"mixed_0": "true"})
	if !result.Items[1].Correct {
		t.Error("lowercase true/false answer should be correct")
	}

	result = Grade(data, map[string]string{"mixed_0": "False"})
	if result.Items[1].Correct {
		t.Error("wrong true/false answer should be incorrect")
	}
}

func TestGradeFillInBlank(t *testing.T) {
	data := capitalQuiz()

	result := Grade(data, map[string]string{"mixed_1": "Mitochondria"})
	if !result.Items[2].Correct {
		t.Error("case-insensitive fill-in-the-blank match should be correct")
	}

	result = Grade(data, map[string]string{"mixed_1": "mitochondrion"})
	if result.Items[2].Correct {
		t.Error("near-miss fill-in-the-blank answer should be incorrect")
	}
}

func TestGradeUnansweredDoesNotPanic(t *testing.T) {
	data := capitalQuiz()

	result := Grade(data, map[string]string{})
	if result.Score != 0 {
		t.Errorf("score = %d, want 0", result.Score)
	}
	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
	for _, item := range result.Items {
		if item.Correct {
			t.Errorf("unanswered item %s marked correct", item.Key)
		}
	}
}

func TestGradeFullQuizPerfectScore(t *testing.T) {
	data := &Data{}
	answers := make(map[string]string)

	letters := []string{"A", "B", "C", "D"}
	for i := 0; i < 10; i++ {
		correct := letters[i%4]
		options := make([]string, 4)
		for j, l := range letters {
			options[j] = fmt.Sprintf("%s. Option %d-%d", l, i, j)
		}
		data.MCQs = append(data.MCQs, MCQ{
			Question:      fmt.Sprintf("Question %d?", i),
			Options:       options,
			CorrectAnswer: correct,
		})
		answers[AnswerKey("mcq", i)] = fmt.Sprintf("%s. Option %d-%d", correct, i, i%4)
	}

	for i := 0; i < 5; i++ {
		data.MixedQuestions = append(data.MixedQuestions, MixedQuestion{
			Type:          TypeTrueFalse,
			Question:      fmt.Sprintf("Statement %d?", i),
			CorrectAnswer: "True",
		})
		answers[AnswerKey("mixed", i)] = "true"
	}
	for i := 5; i < 10; i++ {
		data.MixedQuestions = append(data.MixedQuestions, MixedQuestion{
			Type:          TypeFillInBlank,
			Question:      fmt.Sprintf("Fill %d: _______", i),
			CorrectAnswer: fmt.Sprintf("answer%d", i),
		})
		answers[AnswerKey("mixed", i)] = fmt.Sprintf("ANSWER%d", i)
	}

	result := Grade(data, answers)
	if result.Score != 20 || result.Total != 20 {
		t.Errorf("score = %d/%d, want 20/20", result.Score, result.Total)
	}
}

func TestGradeIdempotent(t *testing.T) {
	data := capitalQuiz()
	answers := map[string]string{
		"mcq_0":   "B. London",
		"mixed_0": "False",
		"mixed_1": "mitochondria",
	}

	first := Grade(data, answers)
	second := Grade(data, answers)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("grading is not idempotent: %+v != %+v", first, second)
	}
	if first.Score != 2 {
		t.Errorf("score = %d, want 2", first.Score)
	}
}
