package models

import "testing"

func TestQuestionValid(t *testing.T) {
	tests := []struct {
		name  string
		q     Question
		valid bool
	}{
		{name: "four answers, index in range", q: Question{Answers: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 3}, valid: true},
		{name: "five answers, index in range", q: Question{Answers: []string{"a", "b", "c", "d", "e"}, CorrectAnswerIndex: 4}, valid: true},
		{name: "too few answers", q: Question{Answers: []string{"a", "b", "c"}, CorrectAnswerIndex: 0}, valid: false},
		{name: "no answers", q: Question{}, valid: false},
		{name: "index past the answers", q: Question{Answers: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 4}, valid: false},
		{name: "negative index", q: Question{Answers: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: -1}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
