package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"promptstudio/internal/domain"
	"promptstudio/internal/middleware"
)

const (
	defaultVideoContentType = "video/mp4"
	streamBufferSize        = 64 << 10
)

type videoStatusRequest struct {
	Operation domain.Operation `json:"operation"`
}

// VideoStatus refreshes an in-flight operation. The client sends back the
// whole document it last received.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	var req videoStatusRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "Operation object is required.")
		return
	}
	if req.Operation.IsZero() {
		a.error(w, http.StatusBadRequest, "Operation object is required.")
		return
	}

	updated, err := a.Videos.Refresh(r.Context(), req.Operation)
	a.Metrics.ProviderCall("videoStatus", err)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, err.Error())
			return
		}
		a.Logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("operation", req.Operation.Name()).
			Msg("video-status: refresh failed")
		a.error(w, http.StatusInternalServerError, errorMessage(err))
		return
	}
	a.json(w, http.StatusOK, operationResponse{Operation: updated})
}

// DownloadVideo streams a generated asset from the provider. The API key is
// attached upstream and never reaches the caller.
func (a *App) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	link := strings.TrimSpace(r.URL.Query().Get("link"))
	if link == "" {
		a.error(w, http.StatusBadRequest, "A valid download link is required.")
		return
	}

	download, err := a.Videos.Open(r.Context(), link)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, err.Error())
			return
		}
		a.Logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("download-video: upstream fetch failed")
		a.error(w, http.StatusInternalServerError, errorMessage(err))
		return
	}
	defer download.Body.Close()

	contentType := download.ContentType
	if contentType == "" {
		contentType = defaultVideoContentType
	}
	w.Header().Set("Content-Type", contentType)
	if download.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(download.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := io.CopyBuffer(newFlushWriter(w), download.Body, make([]byte, streamBufferSize))
	a.Metrics.DownloadBytes(n)
	if err != nil {
		a.Logger.Warn().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Int64("bytes", n).
			Msg("download-video: stream interrupted")
	}
}

// flushWriter pushes every chunk to the client as soon as it is written.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func newFlushWriter(w http.ResponseWriter) *flushWriter {
	return &flushWriter{w: w, rc: http.NewResponseController(w)}
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	if err := f.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return n, err
	}
	return n, nil
}
