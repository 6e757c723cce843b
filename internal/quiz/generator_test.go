package quiz_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/quizcraft/grammarquiz/internal/genai"
	"github.com/quizcraft/grammarquiz/internal/quiz"
)

// fakeModel satisfies quiz.ModelClient. Replies are consumed in order so a
// test can script a whole quiz run.
type fakeModel struct {
	textReplies   []string
	textErr       error
	visionReplies []string
	visionErr     error
	prompts       []string
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.textErr != nil {
		return "", f.textErr
	}
	if len(f.textReplies) == 0 {
		return "", errors.New("fakeModel: no reply scripted")
	}
	r := f.textReplies[0]
	f.textReplies = f.textReplies[1:]
	return r, nil
}

func (f *fakeModel) GenerateVision(_ context.Context, prompt string, _ []byte, _ string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.visionErr != nil {
		return "", f.visionErr
	}
	if len(f.visionReplies) == 0 {
		return "", errors.New("fakeModel: no vision reply scripted")
	}
	r := f.visionReplies[0]
	f.visionReplies = f.visionReplies[1:]
	return r, nil
}

func mcqBatchJSON(t *testing.T, count int) string {
	t.Helper()
	items := make([]quiz.Question, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, quiz.Question{
			Question:      fmt.Sprintf("Pick the article for sentence %d", i+1),
			Type:          quiz.TypeMCQ,
			Options:       []string{"a", "an", "the", "no article"},
			CorrectAnswer: "the",
			Explanation:   "definite reference",
			Difficulty:    quiz.DifficultyEasy,
		})
	}
	buf, err := json.Marshal(items)
	if err != nil {
		t.Fatal(err)
	}
	return string(buf)
}

func TestGenerate_ReturnsExactlyCount(t *testing.T) {
	model := &fakeModel{textReplies: []string{mcqBatchJSON(t, 10)}}
	gen := quiz.NewGenerator(model)

	questions, err := gen.Generate(context.Background(), "Articles (a, an, the)", quiz.TypeMCQ, quiz.DifficultyEasy, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if len(q.Options) != 4 {
			t.Fatalf("question %d: expected 4 options, got %d", i, len(q.Options))
		}
	}
}

func TestGenerate_StripsCodeFences(t *testing.T) {
	body := mcqBatchJSON(t, 2)
	for _, wrapped := range []string{
		"```json\n" + body + "\n```",
		"```\n" + body + "\n```",
		"  " + body + "  ",
	} {
		model := &fakeModel{textReplies: []string{wrapped}}
		gen := quiz.NewGenerator(model)
		questions, err := gen.Generate(context.Background(), "Prepositions", quiz.TypeMCQ, quiz.DifficultyMedium, 2)
		if err != nil {
			t.Fatalf("reply %q: unexpected error: %v", wrapped[:10], err)
		}
		if len(questions) != 2 {
			t.Fatalf("expected 2 questions, got %d", len(questions))
		}
	}
}

func TestGenerate_PromptEmbedsInputs(t *testing.T) {
	model := &fakeModel{textReplies: []string{mcqBatchJSON(t, 3)}}
	gen := quiz.NewGenerator(model)

	if _, err := gen.Generate(context.Background(), "Passive Voice", quiz.TypeMCQ, quiz.DifficultyHard, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := model.prompts[0]
	for _, want := range []string{"Passive Voice", "Multiple Choice (MCQ)", "Hard", "3 unique"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerate_WrongCountIsMalformed(t *testing.T) {
	model := &fakeModel{textReplies: []string{mcqBatchJSON(t, 7)}}
	gen := quiz.NewGenerator(model)

	_, err := gen.Generate(context.Background(), "Tenses (General)", quiz.TypeMCQ, quiz.DifficultyEasy, 10)
	if !errors.Is(err, quiz.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerate_MCQWithoutFourOptionsIsMalformed(t *testing.T) {
	reply := `[{"question":"Pick one","type":"Multiple Choice (MCQ)","options":["a","b"],"correct_answer":"a"}]`
	model := &fakeModel{textReplies: []string{reply}}
	gen := quiz.NewGenerator(model)

	_, err := gen.Generate(context.Background(), "Pronouns", quiz.TypeMCQ, quiz.DifficultyEasy, 1)
	if !errors.Is(err, quiz.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerate_NonJSONReplyIsMalformed(t *testing.T) {
	model := &fakeModel{textReplies: []string{"Sorry, I cannot help with that."}}
	gen := quiz.NewGenerator(model)

	_, err := gen.Generate(context.Background(), "Conditionals", quiz.TypeShortAnswer, quiz.DifficultyEasy, 5)
	if !errors.Is(err, quiz.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerate_RateLimitClassification(t *testing.T) {
	model := &fakeModel{textErr: &genai.APIError{Kind: genai.KindRateLimited, StatusCode: 429, Message: "quota exceeded"}}
	gen := quiz.NewGenerator(model)

	_, err := gen.Generate(context.Background(), "Modal Verbs", quiz.TypeMCQ, quiz.DifficultyEasy, 10)
	if !errors.Is(err, quiz.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if errors.Is(err, quiz.ErrAPIFailure) {
		t.Fatal("rate limit must not classify as generic API failure")
	}
}

func TestGenerate_GenericFailureClassification(t *testing.T) {
	model := &fakeModel{textErr: &genai.APIError{Kind: genai.KindAPIFailure, StatusCode: 500, Message: "boom"}}
	gen := quiz.NewGenerator(model)

	_, err := gen.Generate(context.Background(), "Punctuation", quiz.TypeMCQ, quiz.DifficultyEasy, 10)
	if !errors.Is(err, quiz.ErrAPIFailure) {
		t.Fatalf("expected ErrAPIFailure, got %v", err)
	}
}
