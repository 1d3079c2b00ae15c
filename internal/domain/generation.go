package domain

import (
	"fmt"
	"strings"
)

// Modality identifies what kind of artifact a request produces.
type Modality string

const (
	ModalityImage Modality = "image"
	ModalityVideo Modality = "video"
	ModalityAudio Modality = "audio"
)

// GenerationRequest is what the user submits from the prompt form. It is
// consumed once and never stored.
type GenerationRequest struct {
	Prompt      string
	Modality    Modality
	AspectRatio string
	Style       string
	Tone        string
}

// Validate checks the request before it is dispatched. Unknown styles and
// tones are allowed through; only the aspect ratio has to be one the image
// model accepts.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: please enter a prompt", ErrInvalidRequest)
	}
	switch r.Modality {
	case ModalityImage, ModalityVideo:
		if !IsAspectRatio(r.AspectRatio) {
			return fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidRequest, r.AspectRatio)
		}
	case ModalityAudio:
	default:
		return fmt.Errorf("%w: unknown modality %q", ErrInvalidRequest, r.Modality)
	}
	return nil
}
