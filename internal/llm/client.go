package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/study-agent/backend/internal/quiz"
	"github.com/study-agent/backend/pkg/circuitbreaker"
	"github.com/study-agent/backend/pkg/logger"
	"github.com/study-agent/backend/pkg/retry"
)

const summarySystemPrompt = `You are an expert study notes summarizer. Summarize the provided study material in the requested style. Focus on key concepts, examples, and important details. Use headings, bullet points, or numbered lists. Avoid placeholder text. Return only the summary text.`

const quizSystemPrompt = `You are an expert quiz generator. Based on the provided study material, create a comprehensive quiz containing:
1. 10 multiple choice questions (MCQs), each with 4 options (A, B, C, D) and a single correct answer.
2. 5 true/false questions with 'True' or 'False' as the correct answer.
3. 5 fill-in-the-blank questions, each with exactly one blank represented by '_______' and a single correct answer.

Format the entire quiz as a JSON object with two top-level keys: "mcqs" (a list of MCQ objects) and "mixed_questions" (a list of mixed question objects).

Each MCQ object must have:
- "question": the question text.
- "options": a list of 4 strings, e.g. ["A. Option 1", "B. Option 2", "C. Option 3", "D. Option 4"].
- "correct_answer": the letter (A, B, C, or D) of the correct option.

Each mixed question object must have:
- "type": "true_false" or "fill_in_the_blank".
- "question": the question text.
- "correct_answer": the correct answer ("True", "False", or the word/phrase for the blank).

Ensure the questions cover important concepts, definitions, and facts from the material. Do NOT include any introductory or concluding remarks, only the JSON output.`

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized", zap.String("model", model))

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: userPrompt,
		},
	}

	var content string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: c.temperature,
					MaxTokens:   c.maxTokens,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			logger.Debug("Completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			content = resp.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		return "", err
	}

	return content, nil
}

// Summarize renders the summary prompt for the given style and returns the
// model's response text verbatim.
func (c *Client) Summarize(ctx context.Context, text, style string) (string, error) {
	userPrompt := fmt.Sprintf("Summarize the following study material in %s style.\n\nStudy Material:\n%s", style, text)

	summary, err := c.complete(ctx, summarySystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	logger.Info("Summary generated",
		zap.String("style", style),
		zap.Int("summary_length", len(summary)),
	)

	return summary, nil
}

// GenerateQuiz requests the fixed-shape quiz JSON and runs it through the
// validating parser. Nothing is persisted here; a malformed response is an
// error the caller surfaces.
func (c *Client) GenerateQuiz(ctx context.Context, text string) (*quiz.Data, error) {
	userPrompt := fmt.Sprintf("Study Material:\n%s", text)

	response, err := c.complete(ctx, quizSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}

	data, err := quiz.Parse(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated quiz: %w", err)
	}

	logger.Info("Quiz generated",
		zap.Int("mcqs", len(data.MCQs)),
		zap.Int("mixed_questions", len(data.MixedQuestions)),
	)

	return data, nil
}
