package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"promptstudio/internal/domain"
	"promptstudio/internal/middleware"
	"promptstudio/internal/providers/image"
	"promptstudio/internal/providers/prompt"
)

const (
	ActionEnhancePrompt  = "enhancePrompt"
	ActionRephraseText   = "rephraseText"
	ActionGenerateImages = "generateImages"
	ActionStartVideo     = "startVideo"
)

type generateRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type textResponse struct {
	Text string `json:"text"`
}

type imagesResponse struct {
	Images []string `json:"images"`
}

type startVideoPayload struct {
	Prompt string `json:"prompt"`
}

type operationResponse struct {
	Operation domain.Operation `json:"operation"`
}

// Generate dispatches a named action to the matching provider.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	switch req.Action {
	case ActionEnhancePrompt:
		a.enhancePrompt(w, r, req.Payload)
	case ActionRephraseText:
		a.rephraseText(w, r, req.Payload)
	case ActionGenerateImages:
		a.generateImages(w, r, req.Payload)
	case ActionStartVideo:
		a.startVideo(w, r, req.Payload)
	default:
		a.error(w, http.StatusBadRequest, "Invalid action")
	}
}

func (a *App) enhancePrompt(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var payload prompt.EnhanceRequest
	if !a.decodePayload(w, raw, &payload) {
		return
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "prompt is required")
		return
	}
	text, err := a.Prompts.Enhance(r.Context(), payload)
	a.Metrics.ProviderCall(ActionEnhancePrompt, err)
	if err != nil {
		a.providerError(w, r, ActionEnhancePrompt, err)
		return
	}
	a.json(w, http.StatusOK, textResponse{Text: strings.TrimSpace(text)})
}

func (a *App) rephraseText(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var payload prompt.RephraseRequest
	if !a.decodePayload(w, raw, &payload) {
		return
	}
	if payload.Tone == prompt.DefaultTone {
		a.json(w, http.StatusOK, textResponse{Text: payload.Text})
		return
	}
	text, err := a.Prompts.Rephrase(r.Context(), payload)
	a.Metrics.ProviderCall(ActionRephraseText, err)
	if err != nil {
		a.providerError(w, r, ActionRephraseText, err)
		return
	}
	a.json(w, http.StatusOK, textResponse{Text: text})
}

func (a *App) generateImages(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var payload image.GenerateRequest
	if !a.decodePayload(w, raw, &payload) {
		return
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "prompt is required")
		return
	}
	images, err := a.Images.Generate(r.Context(), payload)
	a.Metrics.ProviderCall(ActionGenerateImages, err)
	if err != nil {
		a.providerError(w, r, ActionGenerateImages, err)
		return
	}
	a.json(w, http.StatusOK, imagesResponse{Images: images})
}

func (a *App) startVideo(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var payload startVideoPayload
	if !a.decodePayload(w, raw, &payload) {
		return
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "prompt is required")
		return
	}
	op, err := a.Videos.Start(r.Context(), payload.Prompt)
	a.Metrics.ProviderCall(ActionStartVideo, err)
	if err != nil {
		a.providerError(w, r, ActionStartVideo, err)
		return
	}
	a.json(w, http.StatusOK, operationResponse{Operation: op})
}

func (a *App) decodePayload(w http.ResponseWriter, raw json.RawMessage, dst any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		a.error(w, http.StatusBadRequest, "payload is required")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid payload.")
		return false
	}
	return true
}

func (a *App) providerError(w http.ResponseWriter, r *http.Request, action string, err error) {
	a.Logger.Error().
		Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("action", action).
		Msg("generate: provider call failed")
	a.error(w, http.StatusInternalServerError, errorMessage(err))
}
