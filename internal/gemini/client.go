// Package gemini is the boundary to the Gemini generative API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"

	"postcraft/internal/faults"
	"postcraft/internal/imaging"
	"postcraft/internal/logging"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultImageModel = "gemini-3-pro-image-preview"
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageSize  = "1K"
)

// Config configures a Client.
type Config struct {
	APIKey     string
	ImageModel string
	TextModel  string
	ImageSize  string
	BaseURL    string
	Timeout    time.Duration // zero means no timeout
	HTTPClient *http.Client
}

// TokenRecorder receives token counts reported by the API.
type TokenRecorder interface {
	AddTokens(model string, input, output int)
}

// ImageRequest is one image generation call. Images are sent before the text.
type ImageRequest struct {
	Prompt      string
	Images      []imaging.Inline
	AspectRatio string
	ImageSize   string
}

// Client implements image and text generation over genai.
type Client struct {
	models     *genai.Models
	imageModel string
	textModel  string
	imageSize  string

	// Tokens is optional.
	Tokens TokenRecorder
}

// New creates a client. An empty key is an API key fault.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, faults.New(faults.KindAPIKey, "Gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		cc.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	c := &Client{
		models:     client.Models,
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		imageSize:  cfg.ImageSize,
	}
	if c.imageModel == "" {
		c.imageModel = DefaultImageModel
	}
	if c.textModel == "" {
		c.textModel = DefaultTextModel
	}
	if c.imageSize == "" {
		c.imageSize = DefaultImageSize
	}
	return c, nil
}

// ImageModel returns the model used for images.
func (c *Client) ImageModel() string { return c.imageModel }

// TextModel returns the model used for text.
func (c *Client) TextModel() string { return c.textModel }

// GenerateImage returns the first generated image as a PNG data URI.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	timer := logging.StartTimer(logging.CategoryAPI, "GenerateImage")
	defer timer.Stop()

	parts := make([]*genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	size := req.ImageSize
	if size == "" {
		size = c.imageSize
	}
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: req.AspectRatio,
			ImageSize:   size,
		},
	}

	logging.APIDebug("image request: model=%s aspect=%s refs=%d prompt_len=%d", c.imageModel, req.AspectRatio, len(req.Images), len(req.Prompt))

	resp, err := c.models.GenerateContent(ctx, c.imageModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return "", convert(err)
	}
	c.recordTokens(c.imageModel, resp)

	if err := blocked(resp); err != nil {
		return "", err
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return imaging.DataURI("image/png", p.InlineData.Data), nil
			}
		}
	}
	return "", faults.New(faults.KindGeneration, "No image generated.")
}

// GenerateText returns the text of the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	timer := logging.StartTimer(logging.CategoryAPI, "GenerateText")
	defer timer.Stop()

	resp, err := c.models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", convert(err)
	}
	c.recordTokens(c.textModel, resp)

	if err := blocked(resp); err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *Client) recordTokens(model string, resp *genai.GenerateContentResponse) {
	if c.Tokens == nil || resp == nil || resp.UsageMetadata == nil {
		return
	}
	c.Tokens.AddTokens(model, int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
}

func blocked(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return faults.New(faults.KindGeneration, "empty response")
	}
	if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" {
		return faults.New(faults.KindGeneration, fmt.Sprintf("prompt blocked: %s (SAFETY)", pf.BlockReason))
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		reason := string(cand.FinishReason)
		if cand.FinishReason == genai.FinishReasonSafety || strings.HasSuffix(reason, "SAFETY") {
			return faults.New(faults.KindGeneration, fmt.Sprintf("response blocked: %s", reason))
		}
	}
	return nil
}

// convert turns a genai or transport error into a structured fault.
func convert(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		logging.Get(logging.CategoryAPI).Warn("gemini api error: code=%d status=%s msg=%s", apiErr.Code, apiErr.Status, apiErr.Message)
		return faults.Wrap(kindForAPIError(apiErr), apiErr.Message, err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return faults.Wrap(faults.KindNetwork, "network error", err)
	}
	if faults.IsEntityNotFound(err) {
		return faults.Wrap(faults.KindEntityNotFound, err.Error(), err)
	}
	return err
}

func kindForAPIError(e genai.APIError) faults.Kind {
	msg := strings.ToLower(e.Message)
	switch {
	case e.Code == http.StatusNotFound || e.Status == "NOT_FOUND" ||
		strings.Contains(e.Message, "Requested entity was not found"):
		return faults.KindEntityNotFound
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden ||
		e.Status == "UNAUTHENTICATED" || e.Status == "PERMISSION_DENIED":
		return faults.KindAPIKey
	case e.Code == http.StatusBadRequest && (strings.Contains(msg, "api key") || strings.Contains(e.Message, "API_KEY_INVALID")):
		return faults.KindAPIKey
	case e.Code == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED":
		return faults.KindQuota
	case e.Code == http.StatusBadRequest:
		return faults.KindInvalidInput
	default:
		return faults.KindGeneration
	}
}
