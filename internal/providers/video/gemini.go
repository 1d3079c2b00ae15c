package video

import (
	"context"

	"promptstudio/internal/domain"
	"promptstudio/internal/providers/genai"
)

// VideosPerJob is the number of videos requested per job.
const VideosPerJob = 1

// Generator drives a provider's long-running video job.
type Generator interface {
	Start(ctx context.Context, prompt string) (domain.Operation, error)
	Refresh(ctx context.Context, op domain.Operation) (domain.Operation, error)
	Open(ctx context.Context, link string) (*genai.Download, error)
}

// VideoClient is the slice of the Gemini client the generator needs.
type VideoClient interface {
	GenerateVideos(ctx context.Context, req genai.VideoRequest) (domain.Operation, error)
	GetVideosOperation(ctx context.Context, op domain.Operation) (domain.Operation, error)
	OpenDownload(ctx context.Context, link string) (*genai.Download, error)
}

type GeminiGenerator struct {
	client VideoClient
}

func NewGeminiGenerator(client VideoClient) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Start(ctx context.Context, prompt string) (domain.Operation, error) {
	return g.client.GenerateVideos(ctx, genai.VideoRequest{Prompt: prompt, NumberOfVideos: VideosPerJob})
}

func (g *GeminiGenerator) Refresh(ctx context.Context, op domain.Operation) (domain.Operation, error) {
	return g.client.GetVideosOperation(ctx, op)
}

func (g *GeminiGenerator) Open(ctx context.Context, link string) (*genai.Download, error) {
	return g.client.OpenDownload(ctx, link)
}

var _ Generator = (*GeminiGenerator)(nil)
