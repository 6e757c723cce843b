package quiz

import (
	"context"
	"encoding/json"
	"fmt"
)

// Evaluator grades one answer per call by delegating to the model. Text and
// image answers are mutually exclusive; the image path additionally asks the
// model to extract the written answer before grading it.
type Evaluator struct {
	model ModelClient
}

func NewEvaluator(m ModelClient) *Evaluator { return &Evaluator{model: m} }

func (e *Evaluator) EvaluateText(ctx context.Context, q Question, userAnswer string) (Evaluation, error) {
	prompt := fmt.Sprintf(`Evaluate this answer:

Question: %s
Correct Answer: %s
User's Answer: %s

Evaluate and respond in JSON format:
{
    "is_correct": true/false,
    "score": score out of 10,
    "feedback": "detailed feedback with explanation"
}`, q.Question, q.CorrectAnswer, userAnswer)

	raw, err := e.model.GenerateText(ctx, prompt)
	if err != nil {
		return Evaluation{}, classifyModelErr(err)
	}
	return parseEvaluation(raw)
}

func (e *Evaluator) EvaluateImage(ctx context.Context, q Question, image []byte, mimeType string) (Evaluation, error) {
	prompt := fmt.Sprintf(`The question was: %s

The correct answer is: %s

The user has uploaded an image as their answer. Analyze the image and:
1. Extract the text/answer from the image
2. Evaluate if it's correct
3. Provide feedback and a score out of 10

Respond in JSON format:
{
    "extracted_answer": "text from image",
    "is_correct": true/false,
    "score": score out of 10,
    "feedback": "detailed feedback"
}`, q.Question, q.CorrectAnswer)

	raw, err := e.model.GenerateVision(ctx, prompt, image, mimeType)
	if err != nil {
		return Evaluation{}, classifyModelErr(err)
	}
	return parseEvaluation(raw)
}

func parseEvaluation(raw string) (Evaluation, error) {
	var ev Evaluation
	if err := json.Unmarshal([]byte(stripFences(raw)), &ev); err != nil {
		return Evaluation{}, malformed(err)
	}
	if ev.Score < 0 {
		ev.Score = 0
	}
	if ev.Score > 10 {
		ev.Score = 10
	}
	return ev, nil
}
