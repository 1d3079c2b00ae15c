package handlers

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"promptstudio/internal/domain"
	"promptstudio/internal/metrics"
	"promptstudio/internal/providers/genai"
	"promptstudio/internal/providers/image"
	"promptstudio/internal/providers/prompt"
)

type fakeEnhancer struct {
	mu            sync.Mutex
	enhanceCalls  int
	rephraseCalls int
	text          string
	err           error
}

func (f *fakeEnhancer) Enhance(ctx context.Context, req prompt.EnhanceRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enhanceCalls++
	return f.text, f.err
}

func (f *fakeEnhancer) Rephrase(ctx context.Context, req prompt.RephraseRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rephraseCalls++
	return f.text, f.err
}

type fakeImages struct {
	got    image.GenerateRequest
	images []string
	err    error
}

func (f *fakeImages) Generate(ctx context.Context, req image.GenerateRequest) ([]string, error) {
	f.got = req
	return f.images, f.err
}

type fakeVideos struct {
	startOp     string
	startErr    error
	refreshed   string
	refreshErr  error
	refreshSeen []string
	download    *genai.Download
	openErr     error
	openLink    string
}

func (f *fakeVideos) Start(ctx context.Context, p string) (domain.Operation, error) {
	if f.startErr != nil {
		return domain.Operation{}, f.startErr
	}
	return domain.NewOperation([]byte(f.startOp))
}

func (f *fakeVideos) Refresh(ctx context.Context, op domain.Operation) (domain.Operation, error) {
	f.refreshSeen = append(f.refreshSeen, string(op.Raw()))
	if f.refreshErr != nil {
		return domain.Operation{}, f.refreshErr
	}
	return domain.NewOperation([]byte(f.refreshed))
}

func (f *fakeVideos) Open(ctx context.Context, link string) (*genai.Download, error) {
	f.openLink = link
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.download, nil
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func newBody(s string) *closeTracker {
	return &closeTracker{Reader: strings.NewReader(s)}
}

func newTestApp(enh *fakeEnhancer, imgs *fakeImages, vids *fakeVideos) *App {
	if enh == nil {
		enh = &fakeEnhancer{}
	}
	if imgs == nil {
		imgs = &fakeImages{}
	}
	if vids == nil {
		vids = &fakeVideos{}
	}
	return &App{
		Prompts: enh,
		Images:  imgs,
		Videos:  vids,
		Logger:  zerolog.Nop(),
		Metrics: metrics.New(),
	}
}
