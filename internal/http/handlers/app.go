package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"promptstudio/internal/infra"
	"promptstudio/internal/metrics"
	"promptstudio/internal/providers/image"
	"promptstudio/internal/providers/prompt"
	"promptstudio/internal/providers/video"
)

const (
	maxRequestBodyBytes = 1 << 20

	genericErrorMessage = "An internal server error occurred."
)

// App carries the proxy's dependencies. Providers are the only parts that see
// the API key; handlers never touch it.
type App struct {
	Prompts prompt.Enhancer
	Images  image.Generator
	Videos  video.Generator
	Logger  infra.Logger
	Metrics *metrics.Metrics
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	if strings.TrimSpace(message) == "" {
		message = genericErrorMessage
	}
	a.json(w, code, errorResponse{Error: message})
}

// decode reads a size-limited JSON body into dst.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// MethodNotAllowed answers with the JSON error envelope instead of chi's plain text.
func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusNotFound, "Not Found")
}

func errorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return "Request body too large."
	}
	return err.Error()
}
