package handlers

import "testing"

func Test_answersMatch(t *testing.T) {
	tests := []struct {
		name    string
		message string
		answer  string
		want    bool
	}{
		{name: "exact match", message: "pikachu", answer: "pikachu", want: true},
		{name: "case insensitive", message: "PIKACHU", answer: "pikachu", want: true},
		{name: "surrounding whitespace ignored", message: "  pikachu ", answer: "pikachu", want: true},
		{name: "wrong answer", message: "raichu", answer: "pikachu", want: false},
		{name: "partial answer", message: "pika", answer: "pikachu", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answersMatch(tt.message, tt.answer); got != tt.want {
				t.Errorf("answersMatch(%q, %q) = %v, want %v", tt.message, tt.answer, got, tt.want)
			}
		})
	}
}

func TestStaticQuestionProvider_cycles(t *testing.T) {
	questions := []Question{
		{Prompt: "a", Answer: "1"},
		{Prompt: "b", Answer: "2"},
	}
	p := NewStaticQuestionProvider(questions)

	for i := 0; i < 5; i++ {
		q, ok := p.Next()
		if !ok {
			t.Fatalf("Next() exhausted at %d", i)
		}
		if want := questions[i%2]; q != want {
			t.Errorf("Next() #%d = %+v, want %+v", i, q, want)
		}
	}
}

func TestStaticQuestionProvider_empty(t *testing.T) {
	p := NewStaticQuestionProvider(nil)
	if _, ok := p.Next(); ok {
		t.Error("Next() on empty provider returned a question")
	}
}
