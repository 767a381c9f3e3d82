package textgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/c360studio/plantask/metrics"
)

// Image payload budgets in bytes: the first attempt shrinks anything
// above firstAttemptBudget, and the single size-reduction retry
// shrinks further to retryBudget.
const (
	firstAttemptBudget = 600 * 1024
	retryBudget        = 400 * 1024
)

// GeminiClient implements Generator on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiClient creates a Gemini-backed generator.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model, logger: logger}, nil
}

// Generate runs a single generation request. An oversized-payload
// rejection triggers exactly one retry with the image shrunk to the
// smaller budget; any other failure is terminal for this request.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts Options, image []byte) (string, error) {
	payload := image
	if len(payload) > 0 {
		var err error
		payload, err = shrinkImage(payload, firstAttemptBudget)
		if err != nil {
			c.logger.Warn("Image preprocessing failed, sending prompt without image", "error", err)
			payload = nil
		}
	}

	text, err := c.generateOnce(ctx, prompt, opts, payload)
	if err == nil {
		return text, nil
	}

	if len(payload) > 0 && IsRecoverable(err) {
		c.logger.Warn("Payload rejected as too large, retrying with smaller image",
			"image_bytes", len(payload))
		metrics.GenerationRetries.Inc()

		smaller, shrinkErr := shrinkImage(payload, retryBudget)
		if shrinkErr != nil {
			return "", NewTerminalError(fmt.Errorf("shrink image for retry: %w", shrinkErr))
		}
		text, retryErr := c.generateOnce(ctx, prompt, opts, smaller)
		if retryErr != nil {
			return "", NewTerminalError(retryErr)
		}
		return text, nil
	}

	return "", err
}

func (c *GeminiClient) generateOnce(ctx context.Context, prompt string, opts Options, image []byte) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image, "image/jpeg"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: opts.MaxOutputTokens,
		Temperature:     genai.Ptr(opts.Temperature),
		TopP:            genai.Ptr(opts.TopP),
		TopK:            genai.Ptr(opts.TopK),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", NewTerminalError(fmt.Errorf("model returned no text"))
	}
	return text, nil
}

// classifyError sorts backend failures into the recoverable
// oversized-payload case and everything else.
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "413") ||
		strings.Contains(msg, "payload") && strings.Contains(msg, "large") ||
		strings.Contains(msg, "request entity too large") ||
		strings.Contains(msg, "exceeds the maximum") {
		return NewRecoverableError(err)
	}
	return NewTerminalError(err)
}
