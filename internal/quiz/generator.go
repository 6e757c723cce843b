package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ModelClient is the slice of the genai client the quiz layer needs.
type ModelClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

const DefaultQuestionCount = 10

// Generator builds one instruction prompt per quiz and parses the model's
// JSON array reply. No retry; failures surface immediately.
type Generator struct {
	model ModelClient
}

func NewGenerator(m ModelClient) *Generator { return &Generator{model: m} }

func (g *Generator) Generate(ctx context.Context, topic string, qtype QuestionType, difficulty Difficulty, count int) ([]Question, error) {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	prompt := buildGenerationPrompt(topic, qtype, difficulty, count)

	raw, err := g.model.GenerateText(ctx, prompt)
	if err != nil {
		return nil, classifyModelErr(err)
	}

	var questions []Question
	if err := json.Unmarshal([]byte(stripFences(raw)), &questions); err != nil {
		return nil, malformed(err)
	}
	if err := validateQuestions(questions, qtype, count); err != nil {
		return nil, malformed(err)
	}
	return questions, nil
}

func buildGenerationPrompt(topic string, qtype QuestionType, difficulty Difficulty, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d unique English grammar questions about '%s'.\n\n", count, topic)
	fmt.Fprintf(&sb, "Question Type: %s\n", qtype)
	fmt.Fprintf(&sb, "Difficulty Level: %s\n\n", difficulty)
	fmt.Fprintf(&sb, "Provide the response as a JSON array with %d questions in this format:\n", count)
	fmt.Fprintf(&sb, `[
  {
    "question": "The question text",
    "type": "%s",
    "options": ["option1", "option2", "option3", "option4"],
    "correct_answer": "The correct answer",
    "explanation": "Brief explanation of the correct answer",
    "difficulty": "%s"
  }
]
`, qtype, difficulty)
	sb.WriteString("\nMake sure:\n")
	fmt.Fprintf(&sb, "- All %d questions are unique and educational\n", count)
	sb.WriteString("- The \"options\" field is present only for Multiple Choice questions, with exactly 4 options\n")
	fmt.Fprintf(&sb, "- Questions match the %s difficulty level\n", difficulty)
	fmt.Fprintf(&sb, "- Questions are diverse and cover different aspects of '%s'\n", topic)
	sb.WriteString("- The reply is raw JSON with no surrounding prose\n")
	return sb.String()
}

func validateQuestions(questions []Question, qtype QuestionType, count int) error {
	if len(questions) != count {
		return fmt.Errorf("expected %d questions, got %d", count, len(questions))
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d: empty question text", i+1)
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return fmt.Errorf("question %d: empty correct answer", i+1)
		}
		if qtype == TypeMCQ && len(q.Options) != 4 {
			return fmt.Errorf("question %d: MCQ must carry exactly 4 options, got %d", i+1, len(q.Options))
		}
	}
	return nil
}

// stripFences removes optional markdown code-fence markers around the reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
