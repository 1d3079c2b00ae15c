package image

import (
	"context"
	"testing"

	"promptstudio/internal/providers/genai"
)

type fakeImageClient struct {
	got genai.ImageRequest
}

func (f *fakeImageClient) GenerateImages(ctx context.Context, req genai.ImageRequest) ([]string, error) {
	f.got = req
	return []string{"a", "b", "c", "d"}, nil
}

func TestGeminiGeneratorRequestsFourJPEGs(t *testing.T) {
	client := &fakeImageClient{}
	images, err := NewGeminiGenerator(client).Generate(context.Background(), GenerateRequest{Prompt: "cat", AspectRatio: "9:16"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(images) != ImagesPerRequest {
		t.Fatalf("len(images) = %d, want %d", len(images), ImagesPerRequest)
	}
	if client.got.NumberOfImages != 4 || client.got.MimeType != "image/jpeg" || client.got.AspectRatio != "9:16" {
		t.Fatalf("unexpected request: %#v", client.got)
	}
}
