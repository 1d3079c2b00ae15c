package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptstudio/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadServerURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://host", "http://"} {
		_, err := New(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, raw)
	}
}

func TestInvokeSendsActionEnvelope(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"text":"  rewritten  "}`)
	})

	text := c.EnhancePrompt(context.Background(), "cat", "Anime", "16:9")

	require.Equal(t, "rewritten", text)
	require.Equal(t, "enhancePrompt", got["action"])
	require.Equal(t, map[string]any{"prompt": "cat", "style": "Anime", "aspectRatio": "16:9"}, got["payload"])
}

func TestEnhancePromptFallsBackOnFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	})

	require.Equal(t, "a cat, Anime, 1:1", c.EnhancePrompt(context.Background(), "a cat", "Anime", "1:1"))
}

func TestRephraseTextFallsBackToOriginal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	require.Equal(t, "Hello world", c.RephraseText(context.Background(), "Hello world", "Calm"))
}

func TestGenerateImagesReturnsDataURLsInOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"images":["AAEC","AwQF","BgcI","CQoL"]}`)
	})

	urls, err := c.GenerateImages(context.Background(), "cat", "1:1")
	require.NoError(t, err)
	require.Equal(t, []string{
		"data:image/jpeg;base64,AAEC",
		"data:image/jpeg;base64,AwQF",
		"data:image/jpeg;base64,BgcI",
		"data:image/jpeg;base64,CQoL",
	}, urls)

	raw, err := DecodeImage(urls[0])
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1, 2}, raw)
}

func TestRequestFailedMessageNormalization(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"Invalid action"}`, want: "Invalid action"},
		{name: "json without error", status: http.StatusInternalServerError, body: `{"detail":"x"}`, want: "API request failed with status 500"},
		{name: "blank error", status: http.StatusServiceUnavailable, body: `{"error":""}`, want: "API request failed with status 503"},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: "An unknown error occurred."},
		{name: "empty body", status: http.StatusInternalServerError, body: ``, want: "An unknown error occurred."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := c.GenerateImages(context.Background(), "cat", "1:1")

			require.ErrorIs(t, err, domain.ErrRequestFailed)
			var rf *RequestFailedError
			require.True(t, errors.As(err, &rf))
			require.Equal(t, tc.status, rf.Status)
			require.Equal(t, tc.want, rf.Message)
		})
	}
}

func TestTransportErrorIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := New(srv.URL)
	require.NoError(t, err)
	srv.Close()

	err = c.Invoke(context.Background(), ActionStartVideo, map[string]string{"prompt": "x"}, nil)
	require.ErrorIs(t, err, domain.ErrRequestFailed)
}

func TestStatusCheckRoundTripsWholeOperation(t *testing.T) {
	sent := `{"name":"ops/1","done":false,"metadata":{"token":"abc"}}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/video-status", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"operation":`+sent+`}`, string(body))
		_, _ = io.WriteString(w, `{"operation":{"name":"ops/1","done":true}}`)
	})
	op, err := domain.NewOperation([]byte(sent))
	require.NoError(t, err)

	updated, err := c.StatusCheck(context.Background(), op)
	require.NoError(t, err)
	require.True(t, updated.Done())
}

func TestFetchResolvesLocatorAgainstServer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/download-video", r.URL.Path)
		assert.Equal(t, "https://provider/x", r.URL.Query().Get("link"))
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = io.WriteString(w, "mp4")
	})

	resp, err := c.Fetch(context.Background(), DownloadLocator("https://provider/x"))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "mp4", string(body))
}

func TestFetchNormalizesErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"A valid download link is required."}`)
	})

	_, err := c.Fetch(context.Background(), "/api/download-video?link=")
	require.ErrorIs(t, err, domain.ErrRequestFailed)
	require.EqualError(t, err, "A valid download link is required.")
}
