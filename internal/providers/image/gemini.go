package image

import (
	"context"

	"promptstudio/internal/providers/genai"
)

// ImageClient is the slice of the Gemini client the generator needs.
type ImageClient interface {
	GenerateImages(ctx context.Context, req genai.ImageRequest) ([]string, error)
}

type GeminiGenerator struct {
	client ImageClient
}

func NewGeminiGenerator(client ImageClient) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) ([]string, error) {
	return g.client.GenerateImages(ctx, genai.ImageRequest{
		Prompt:         req.Prompt,
		AspectRatio:    req.AspectRatio,
		NumberOfImages: ImagesPerRequest,
		MimeType:       "image/jpeg",
	})
}

var _ Generator = (*GeminiGenerator)(nil)
