package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model answered without any content.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Client analyzes receipt images with a Gemini model.
type Client struct {
	genai *genai.Client
	model string
	debug bool
}

// NewClient constructs a new Gemini client. An empty baseURL selects the
// public Generative Language endpoint and an empty model selects DefaultModel.
func NewClient(ctx context.Context, apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		genai: gc,
		model: model,
		debug: os.Getenv("ENV") == "development",
	}, nil
}

// AnalyzeReceipt sends the receipt image with instruction and decodes the
// structured analysis.
func (c *Client) AnalyzeReceipt(ctx context.Context, image []byte, mimeType, instruction string) (*ReceiptAnalysis, error) {
	if len(image) == 0 {
		return nil, errors.New("gemini: empty image")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   receiptSchema,
	}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	if c.debug {
		log.Debug().
			Str("model", c.model).
			Dur("latency", time.Since(start)).
			Err(err).
			Msg("[GEMINI] generateContent")
	}
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	var analysis ReceiptAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &analysis, nil
}

// responseText returns the text of the first part of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
		return ""
	}
	return cand.Content.Parts[0].Text
}
