package image

import "context"

// ImagesPerRequest is the fixed batch size requested from the image model.
const ImagesPerRequest = 4

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
}

// Generator is the contract implemented by all image providers. Images are
// returned base64-encoded, in provider order.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]string, error)
}
