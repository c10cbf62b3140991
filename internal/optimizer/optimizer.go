// Package optimizer wraps the Gemini API for prompt improvement.
//
// The optimizer is an OPTIONAL collaborator: without an API key the server
// still runs, and the AI endpoints answer 503 instead of failing at start.
package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"google.golang.org/genai"

	"github.com/sakif/promptmaster/internal/apperror"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// systemInstruction steers the model into prompt-engineer mode. The output
// contract matters: the response must be ONLY the optimized prompt, because
// it is pasted verbatim into the editor.
const systemInstruction = `You are an expert Prompt Engineer. Your goal is to take a raw, potentially vague user idea and transform it into a highly effective, structured, and clear prompt suitable for Large Language Models (LLMs).

Guidelines:
1. Clarity & Specificity: Remove ambiguity. Specify the persona, context, task, and constraints.
2. Structure: Use markdown (bullet points, headers) if complex.
3. Output Format: Explicitly state how the output should look (JSON, code, table, essay, etc.).
4. Tone: Define the desired tone (professional, witty, academic, etc.).
5. Language: If the input is in Chinese, the output MUST be in Chinese. If the input is English, the output must be English.

Input: The user's draft prompt.
Output: ONLY the optimized prompt text. Do not add conversational filler like "Here is your optimized prompt:".`

const (
	maxAttempts = 3
	retryDelay  = 500 * time.Millisecond
)

// Optimizer calls Gemini to rewrite draft prompts and suggest ideas.
// A zero-configured Optimizer (no API key) is valid and answers every call
// with an unavailable error.
type Optimizer struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// New creates an Optimizer. An empty apiKey yields a disabled instance, not
// an error — AI assistance is a feature, not a requirement.
func New(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Optimizer, error) {
	o := &Optimizer{model: model, logger: logger}
	if o.model == "" {
		o.model = DefaultModel
	}
	if apiKey == "" {
		logger.Info("AI optimizer disabled: no API key configured")
		return o, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("optimizer: creating genai client: %w", err)
	}
	o.client = client
	return o, nil
}

// Enabled reports whether an API key was configured.
func (o *Optimizer) Enabled() bool {
	return o.client != nil
}

// Optimize rewrites a draft prompt into a structured, unambiguous one.
func (o *Optimizer) Optimize(ctx context.Context, draft string) (string, error) {
	if !o.Enabled() {
		return "", apperror.Unavailable("AI assistance is not configured")
	}
	if strings.TrimSpace(draft) == "" {
		return "", apperror.ValidationFailed("prompt", "prompt cannot be empty")
	}

	text, err := o.generate(ctx, draft, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateIdeas asks for five prompt ideas on a topic, as a JSON array of
// strings. Responses that fail to parse degrade to an empty list.
func (o *Optimizer) GenerateIdeas(ctx context.Context, topic string) ([]string, error) {
	if !o.Enabled() {
		return nil, apperror.Unavailable("AI assistance is not configured")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, apperror.ValidationFailed("topic", "topic cannot be empty")
	}

	request := fmt.Sprintf(
		`Generate 5 creative and useful prompt ideas related to the topic: %q. `+
			`Return them as a simple JSON array of strings. If the topic is Chinese, return Chinese ideas.`,
		topic)

	text, err := o.generate(ctx, request, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	return parseIdeas(text), nil
}

// generate performs one Gemini call with retries. Transient API failures
// (rate limits, flaky networking) get up to three attempts with a short
// delay; a cancelled context stops retrying immediately.
func (o *Optimizer) generate(ctx context.Context, content string, cfg *genai.GenerateContentConfig) (string, error) {
	var text string
	err := retry.Do(
		func() error {
			resp, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(content), cfg)
			if err != nil {
				return err
			}
			text = resp.Text()
			if text == "" {
				return fmt.Errorf("empty response from model %s", o.model)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(retryDelay),
		retry.OnRetry(func(n uint, err error) {
			o.logger.Warn("Gemini call failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("optimizer: generating content: %w", err)
	}
	return text, nil
}

// parseIdeas decodes the model's JSON array, dropping blanks. Models
// occasionally wrap JSON in a markdown fence despite the response MIME
// type, so strip one if present.
func parseIdeas(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var raw []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return []string{}
	}

	ideas := make([]string, 0, len(raw))
	for _, idea := range raw {
		if idea = strings.TrimSpace(idea); idea != "" {
			ideas = append(ideas, idea)
		}
	}
	return ideas
}
