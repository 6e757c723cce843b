package quiz_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quizcraft/grammarquiz/internal/genai"
	"github.com/quizcraft/grammarquiz/internal/quiz"
)

var articleQuestion = quiz.Question{
	Question:      "___ sun rises in the east.",
	Type:          quiz.TypeFillBlanks,
	CorrectAnswer: "The",
}

func TestEvaluateText_ParsesVerdict(t *testing.T) {
	model := &fakeModel{textReplies: []string{
		"```json\n{\"is_correct\": true, \"score\": 9, \"feedback\": \"Correct use of the definite article.\"}\n```",
	}}
	eval := quiz.NewEvaluator(model)

	ev, err := eval.EvaluateText(context.Background(), articleQuestion, "The")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ev.IsCorrect || ev.Score != 9 {
		t.Fatalf("unexpected verdict: %+v", ev)
	}
	if ev.Feedback == "" {
		t.Fatal("expected feedback text")
	}
}

func TestEvaluateText_PromptEmbedsAnswer(t *testing.T) {
	model := &fakeModel{textReplies: []string{`{"is_correct": false, "score": 2, "feedback": "no"}`}}
	eval := quiz.NewEvaluator(model)

	if _, err := eval.EvaluateText(context.Background(), articleQuestion, "An"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := model.prompts[0]
	for _, want := range []string{articleQuestion.Question, "Correct Answer: The", "User's Answer: An"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestEvaluateText_ClampsScore(t *testing.T) {
	for reply, want := range map[string]int{
		`{"is_correct": true, "score": 14, "feedback": "x"}`:  10,
		`{"is_correct": false, "score": -3, "feedback": "x"}`: 0,
	} {
		model := &fakeModel{textReplies: []string{reply}}
		eval := quiz.NewEvaluator(model)
		ev, err := eval.EvaluateText(context.Background(), articleQuestion, "The")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Score != want {
			t.Fatalf("expected clamped score %d, got %d", want, ev.Score)
		}
	}
}

func TestEvaluateImage_ExtractsAnswer(t *testing.T) {
	model := &fakeModel{visionReplies: []string{
		`{"extracted_answer": "The", "is_correct": true, "score": 8, "feedback": "legible and correct"}`,
	}}
	eval := quiz.NewEvaluator(model)

	ev, err := eval.EvaluateImage(context.Background(), articleQuestion, []byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ExtractedAnswer != "The" {
		t.Fatalf("expected extracted answer, got %+v", ev)
	}
	if !strings.Contains(model.prompts[0], "uploaded an image") {
		t.Error("image prompt missing extraction instruction")
	}
}

func TestEvaluate_MalformedVerdict(t *testing.T) {
	model := &fakeModel{textReplies: []string{"the answer is probably fine"}}
	eval := quiz.NewEvaluator(model)

	_, err := eval.EvaluateText(context.Background(), articleQuestion, "The")
	if !errors.Is(err, quiz.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestEvaluate_RateLimit(t *testing.T) {
	model := &fakeModel{textErr: &genai.APIError{Kind: genai.KindRateLimited, StatusCode: 429, Message: "quota"}}
	eval := quiz.NewEvaluator(model)

	_, err := eval.EvaluateText(context.Background(), articleQuestion, "The")
	if !errors.Is(err, quiz.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}
