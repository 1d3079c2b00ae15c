package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeProxy plays the server side of every studio command.
type fakeProxy struct {
	mu      sync.Mutex
	actions []string
	polls   int
}

func (f *fakeProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.URL.Path {
	case "/api/generate":
		var req struct {
			Action  string            `json:"action"`
			Payload map[string]string `json:"payload"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.actions = append(f.actions, req.Action)
		switch req.Action {
		case "enhancePrompt":
			_, _ = io.WriteString(w, `{"text":"enhanced: `+req.Payload["prompt"]+` / `+req.Payload["style"]+` / `+req.Payload["aspectRatio"]+`"}`)
		case "rephraseText":
			_, _ = io.WriteString(w, `{"text":"`+strings.ToUpper(req.Payload["text"])+`"}`)
		case "generateImages":
			_, _ = io.WriteString(w, `{"images":["AAEC","AwQF","BgcI","CQoL"]}`)
		case "startVideo":
			_, _ = io.WriteString(w, `{"operation":{"name":"ops/1","done":false}}`)
		}
	case "/api/video-status":
		f.polls++
		_, _ = io.WriteString(w, `{"operation":{"name":"ops/1","done":true,"response":{"generatedVideos":[{"video":{"uri":"https://provider/x"}}]}}}`)
	case "/api/download-video":
		if r.URL.Query().Get("link") != "https://provider/x" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"unexpected link"}`)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = io.WriteString(w, "fake mp4 bytes")
	default:
		http.NotFound(w, r)
	}
}

func runStudio(t *testing.T, proxy http.Handler, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STUDIO_SERVER", "")
	t.Setenv("STUDIO_OUTPUT_DIR", "")
	srv := httptest.NewServer(proxy)
	t.Cleanup(srv.Close)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("poll_interval_seconds = 1\n"), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--server", srv.URL, "--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSpeakDefaultToneSkipsServer(t *testing.T) {
	proxy := &fakeProxy{}
	out, _, err := runStudio(t, proxy, "speak", "hello", "world")

	require.NoError(t, err)
	require.Equal(t, "hello world\n", out)
	require.Empty(t, proxy.actions)
}

func TestSpeakWithToneRephrases(t *testing.T) {
	proxy := &fakeProxy{}
	out, _, err := runStudio(t, proxy, "speak", "--tone", "friendly", "hello")

	require.NoError(t, err)
	require.Equal(t, "HELLO\n", out)
	require.Equal(t, []string{"rephraseText"}, proxy.actions)
}

func TestEnhanceNormalizesOptions(t *testing.T) {
	proxy := &fakeProxy{}
	out, _, err := runStudio(t, proxy, "enhance", "--style", "fantasy art", "--aspect", "16:9", "a castle")

	require.NoError(t, err)
	require.Equal(t, "enhanced: a castle / Fantasy Art / 16:9\n", out)
}

func TestImageSavesFourFiles(t *testing.T) {
	proxy := &fakeProxy{}
	outDir := t.TempDir()
	out, _, err := runStudio(t, proxy, "--out", outDir, "image", "a cat")

	require.NoError(t, err)
	require.Equal(t, []string{"enhancePrompt", "generateImages"}, proxy.actions)
	files, err := filepath.Glob(filepath.Join(outDir, "images", "*.jpg"))
	require.NoError(t, err)
	require.Len(t, files, 4)
	require.Equal(t, 4, strings.Count(out, "Saved "))
}

func TestImageRejectsUnknownAspectRatio(t *testing.T) {
	proxy := &fakeProxy{}
	_, _, err := runStudio(t, proxy, "image", "--aspect", "2:1", "a cat")

	require.ErrorContains(t, err, "unsupported aspect ratio")
	require.Empty(t, proxy.actions)
}

func TestVideoPollsAndDownloads(t *testing.T) {
	proxy := &fakeProxy{}
	outDir := t.TempDir()
	out, progress, err := runStudio(t, proxy, "--out", outDir, "video", "a red bicycle")

	require.NoError(t, err)
	require.Equal(t, []string{"enhancePrompt", "startVideo"}, proxy.actions)
	require.Equal(t, 1, proxy.polls)
	require.Contains(t, progress, "Starting video generation job...")
	require.Contains(t, progress, "Video is ready!")

	files, err := filepath.Glob(filepath.Join(outDir, "videos", "*.mp4"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	require.Equal(t, "fake mp4 bytes", string(data))
	require.Contains(t, out, "Saved ")
}

func TestOptionsListsCatalog(t *testing.T) {
	out, _, err := runStudio(t, http.NotFoundHandler(), "options")

	require.NoError(t, err)
	require.Contains(t, out, "Photorealistic")
	require.Contains(t, out, "9:16")
	require.Contains(t, out, "Excited")
}
