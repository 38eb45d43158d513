package quiz

import (
	"errors"
	"reflect"
	"testing"
)

const validQuizJSON = `{
	"mcqs": [
		{
			"question": "What is the capital of France?",
			"options": ["A. Paris", "B. London", "C. Rome", "D. Berlin"],
			"correct_answer": "A"
		}
	],
	"mixed_questions": [
		{"type": "true_false", "question": "Paris is in France.", "correct_answer": "True"},
		{"type": "fill_in_the_blank", "question": "The Seine flows through _______.", "correct_answer": "Paris"}
	]
}`

func TestParseValid(t *testing.T) {
	data, err := Parse(validQuizJSON)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(data.MCQs) != 1 || len(data.MixedQuestions) != 2 {
		t.Errorf("got %d mcqs, %d mixed; want 1, 2", len(data.MCQs), len(data.MixedQuestions))
	}
	if data.Total() != 3 {
		t.Errorf("Total() = %d, want 3", data.Total())
	}
}

func TestParseStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + validQuizJSON + "\n```"

	direct, err := Parse(validQuizJSON)
	if err != nil {
		t.Fatalf("Parse(direct) returned error: %v", err)
	}
	wrapped, err := Parse(fenced)
	if err != nil {
		t.Fatalf("Parse(fenced) returned error: %v", err)
	}

	if !reflect.DeepEqual(direct, wrapped) {
		t.Error("fenced and direct parses differ")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMissingTopLevelKeys(t *testing.T) {
	if _, err := Parse(`{"mixed_questions": []}`); !errors.Is(err, ErrMissingMCQs) {
		t.Errorf("missing mcqs: got %v, want ErrMissingMCQs", err)
	}
	if _, err := Parse(`{"mcqs": []}`); !errors.Is(err, ErrMissingMixed) {
		t.Errorf("missing mixed_questions: got %v, want ErrMissingMixed", err)
	}
}

func TestParseRejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			"three options",
			`{"mcqs":[{"question":"Q?","options":["A. x","B. y","C. z"],"correct_answer":"A"}],"mixed_questions":[]}`,
		},
		{
			"correct letter out of range",
			`{"mcqs":[{"question":"Q?","options":["A. x","B. y","C. z","D. w"],"correct_answer":"E"}],"mixed_questions":[]}`,
		},
		{
			"no option with correct prefix",
			`{"mcqs":[{"question":"Q?","options":["1. x","2. y","3. z","4. w"],"correct_answer":"A"}],"mixed_questions":[]}`,
		},
		{
			"unknown mixed type",
			`{"mcqs":[],"mixed_questions":[{"type":"essay","question":"Q?","correct_answer":"x"}]}`,
		},
		{
			"empty mixed answer",
			`{"mcqs":[],"mixed_questions":[{"type":"true_false","question":"Q?","correct_answer":""}]}`,
		},
		{
			"not json",
			"this is not a quiz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.body); err == nil {
				t.Error("Parse accepted invalid quiz data")
			}
		})
	}
}

func TestParseAcceptsEmptyLists(t *testing.T) {
	data, err := Parse(`{"mcqs":[],"mixed_questions":[]}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if data.Total() != 0 {
		t.Errorf("Total() = %d, want 0", data.Total())
	}
}
