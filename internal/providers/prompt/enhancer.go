package prompt

import (
	"context"
	"fmt"
	"strings"

	"promptstudio/internal/providers/genai"
)

const (
	enhanceTemperature  = 0.8
	rephraseTemperature = 0.7

	// DefaultTone marks a rephrase request that needs no rewrite.
	DefaultTone = "Default"
)

const enhanceSystemInstruction = `You are an expert prompt engineer for an advanced AI image generation model. A user will provide a basic idea, an artistic style, and a specific aspect ratio. Your primary and most critical task is to construct a detailed prompt that FORCES the generated image to strictly adhere to the requested aspect ratio. Start the prompt by explicitly stating the composition, for example: 'A cinematic, ultra-widescreen (16:9) shot of...', or 'A full-body vertical portrait (9:16) of...', or 'A perfectly square (1:1) centered image of...'. Then, elaborate on the user's idea, adding rich details about the subject, environment, lighting, and mood that are appropriate for that composition and style. Do not suggest any details that would contradict the requested aspect ratio. Your output must be ONLY the final, detailed prompt text.`

const rephraseSystemInstruction = `You are a speech writer for a text-to-speech engine. A user will provide a piece of text and a desired tone. Your task is to rewrite the text to sound natural and engaging when read aloud in that specific tone. Adjust sentence structure, word choice, and add appropriate pauses or emphasis where needed, but do not change the core meaning of the text. If the tone is 'Default', make only minor corrections for flow. Your output must be ONLY the rewritten text, ready for synthesis.`

type EnhanceRequest struct {
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspectRatio"`
}

type RephraseRequest struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

// Enhancer rewrites user text before it reaches a generation model.
type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (string, error)
	Rephrase(ctx context.Context, req RephraseRequest) (string, error)
}

// TextGenerator is the slice of the Gemini client the enhancer needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, req genai.TextRequest) (string, error)
}

type GeminiEnhancer struct {
	client TextGenerator
}

func NewGeminiEnhancer(client TextGenerator) *GeminiEnhancer {
	return &GeminiEnhancer{client: client}
}

// Enhance asks the text model for a prompt biased toward the requested aspect
// ratio and style.
func (g *GeminiEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (string, error) {
	return g.client.GenerateText(ctx, genai.TextRequest{
		SystemInstruction: enhanceSystemInstruction,
		Contents:          fmt.Sprintf(`User prompt: "%s", Style: "%s", Aspect Ratio: "%s"`, req.Prompt, req.Style, req.AspectRatio),
		Temperature:       enhanceTemperature,
	})
}

// Rephrase rewrites text for speech in the given tone. The default tone
// returns the text as-is without calling the model.
func (g *GeminiEnhancer) Rephrase(ctx context.Context, req RephraseRequest) (string, error) {
	if req.Tone == DefaultTone {
		return req.Text, nil
	}
	text, err := g.client.GenerateText(ctx, genai.TextRequest{
		SystemInstruction: rephraseSystemInstruction,
		Contents:          fmt.Sprintf(`User text: "%s", Desired Tone: "%s"`, req.Text, req.Tone),
		Temperature:       rephraseTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

var _ Enhancer = (*GeminiEnhancer)(nil)
