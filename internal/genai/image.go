package genai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrImagesDisabled is returned when image generation is turned off in
// the current configuration.
var ErrImagesDisabled = errors.New("image generation is disabled in the current configuration")

// ImageClient renders illustration prompts through an OpenAI-compatible
// image API, returning base64-encoded images.
type ImageClient struct {
	api     *openai.Client
	model   string
	enabled bool
}

// NewImageClient creates an image generation client. A disabled client is
// still constructed so the rest of the app has one object to ask.
func NewImageClient(baseURL, apiKey, modelName string, enabled bool) *ImageClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &ImageClient{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		enabled: enabled,
	}
}

// Enabled reports whether image generation is turned on.
func (c *ImageClient) Enabled() bool { return c.enabled }

// Generate renders one image for the prompt and returns it base64-encoded.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", ErrImagesDisabled
	}
	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return "", fmt.Errorf("image API call: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("image API returned no data")
	}
	return resp.Data[0].B64JSON, nil
}
