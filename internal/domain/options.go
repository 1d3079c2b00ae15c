package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultAspectRatio = "1:1"
	DefaultStyle       = "Photorealistic"
	DefaultTone        = "Default"
)

// Option is one entry of a picker shown to the user.
type Option struct {
	Value string
	Label string
}

var AspectRatios = []Option{
	{Value: "1:1", Label: "Square"},
	{Value: "16:9", Label: "Widescreen"},
	{Value: "9:16", Label: "Portrait"},
	{Value: "4:3", Label: "Landscape"},
	{Value: "3:4", Label: "Tall"},
}

var Styles = []Option{
	{Value: "Photorealistic", Label: "Realistic"},
	{Value: "Anime", Label: "Anime"},
	{Value: "Cartoon", Label: "Cartoon"},
	{Value: "Fantasy Art", Label: "Fantasy Art"},
	{Value: "Minimalist", Label: "Minimalist"},
	{Value: "Cyberpunk", Label: "Cyberpunk"},
}

var Tones = []Option{
	{Value: "Default", Label: "Default"},
	{Value: "Friendly", Label: "Friendly"},
	{Value: "Professional", Label: "Professional"},
	{Value: "Excited", Label: "Excited"},
	{Value: "Calm", Label: "Calm"},
}

// IsAspectRatio reports whether ratio is one of the supported aspect ratios.
func IsAspectRatio(ratio string) bool {
	for _, opt := range AspectRatios {
		if opt.Value == ratio {
			return true
		}
	}
	return false
}

// NormalizeAspectRatio accepts either the ratio ("16:9") or its label
// ("widescreen") and returns the canonical ratio.
func NormalizeAspectRatio(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return DefaultAspectRatio
	}
	for _, opt := range AspectRatios {
		if opt.Value == input || strings.EqualFold(opt.Label, input) {
			return opt.Value
		}
	}
	return input
}

// NormalizeStyle maps free-form input onto a known style value, matching
// case-insensitively against values and labels. Unknown styles are title-cased
// and passed through since the prompt enhancer accepts any style.
func NormalizeStyle(input string) string {
	return normalizeOption(Styles, input, DefaultStyle)
}

// NormalizeTone maps free-form input onto a known tone value. "default" in any
// casing becomes DefaultTone so the rephrase short-circuit still applies.
func NormalizeTone(input string) string {
	return normalizeOption(Tones, input, DefaultTone)
}

func normalizeOption(options []Option, input, fallback string) string {
	input = strings.Join(strings.Fields(input), " ")
	if input == "" {
		return fallback
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Value, input) || strings.EqualFold(opt.Label, input) {
			return opt.Value
		}
	}
	return cases.Title(language.English).String(input)
}
