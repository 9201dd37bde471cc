package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// defaultVisionPrompt instructs the model to transcribe, not interpret.
const defaultVisionPrompt = `Transcribe every piece of text visible on this bank statement page.
Preserve the reading order and line breaks. Keep numbers, dates and amounts
exactly as printed. Output plain text only, with no commentary.`

// VisionRecognizer performs OCR through a vision-capable LLM. Useful where
// Tesseract struggles (low-contrast scans, unusual layouts).
type VisionRecognizer struct {
	model     llms.Model
	provider  string
	prompt    string
	maxTokens int
	logger    *slog.Logger
}

// VisionConfig configures the vision-LLM recognizer.
type VisionConfig struct {
	// Provider selects the image wire format: openai-compatible providers
	// take a data URL, the rest take binary parts.
	Provider  string
	Prompt    string
	MaxTokens int
}

// NewVisionRecognizer wraps an already-constructed model.
func NewVisionRecognizer(model llms.Model, cfg VisionConfig, logger *slog.Logger) *VisionRecognizer {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = defaultVisionPrompt
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionRecognizer{
		model:     model,
		provider:  strings.ToLower(cfg.Provider),
		prompt:    prompt,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

// RecognizePage sends the page bitmap to the vision model and returns the
// transcription.
func (r *VisionRecognizer) RecognizePage(ctx context.Context, img image.Image, pageIndex int) (string, error) {
	data, err := EncodeJPEG(img)
	if err != nil {
		return "", err
	}

	var imagePart llms.ContentPart
	switch r.provider {
	case "openai", "mistral":
		imagePart = llms.ImageURLPart("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data))
	default:
		imagePart = llms.BinaryPart("image/jpeg", data)
	}

	opts := []llms.CallOption{llms.WithTemperature(0)}
	if r.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(r.maxTokens))
	}

	resp, err := r.model.GenerateContent(ctx, []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{imagePart, llms.TextPart(r.prompt)},
		},
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("vision model: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision model returned no choices for page %d", pageIndex+1)
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	r.logger.Debug("vision recognition complete", "page", pageIndex+1, "chars", len(text))
	return text, nil
}
