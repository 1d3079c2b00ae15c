package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"promptstudio/internal/domain"
	"promptstudio/internal/infra"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultTextModel  = "gemini-2.5-flash"
	defaultImageModel = "imagen-4.0-generate-001"
	defaultVideoModel = "veo-2.0-generate-001"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	VideoModel string
	// HTTPClient serves the short JSON calls. A nil client gets a 60s timeout.
	HTTPClient *http.Client
	// DownloadClient streams generated assets. It must not carry an overall
	// timeout or long videos get cut off mid-stream.
	DownloadClient *http.Client
	// DownloadHosts lists the hosts the API key may be sent to when resolving
	// download links. The BaseURL host is always included.
	DownloadHosts []string
	Logger        *infra.Logger
}

// Client is the only holder of the API key. Every provider call, including
// asset downloads, goes through it.
type Client struct {
	apiKey         string
	baseURL        string
	textModel      string
	imageModel     string
	videoModel     string
	httpClient     *http.Client
	downloadClient *http.Client
	downloadHosts  map[string]struct{}
	logger         *infra.Logger
}

// TextRequest is a single-turn generateContent call.
type TextRequest struct {
	SystemInstruction string
	Contents          string
	Temperature       float64
}

// ImageRequest asks the image model for a batch of images.
type ImageRequest struct {
	Prompt         string
	AspectRatio    string
	NumberOfImages int
	MimeType       string
}

// VideoRequest starts a long-running video generation.
type VideoRequest struct {
	Prompt         string
	NumberOfVideos int
}

// Download is an open upstream asset stream. The caller must close Body.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// APIError carries the provider's error message and status code.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini status %d", e.Status)
	}
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == domain.ErrProviderFailure
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature    *float64 `json:"temperature,omitempty"`
	CandidateCount int      `json:"candidateCount,omitempty"`
}

type geminiGenerateContentRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerateContentResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type promptInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	OutputMimeType string `json:"outputMimeType,omitempty"`
}

type imagenPredictRequest struct {
	Instances  []promptInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenPredictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
		RAIFilteredReason  string `json:"raiFilteredReason,omitempty"`
	} `json:"predictions"`
}

type veoParameters struct {
	SampleCount int `json:"sampleCount"`
}

type veoPredictRequest struct {
	Instances  []promptInstance `json:"instances"`
	Parameters veoParameters    `json:"parameters"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. The API key is
// mandatory.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("genai: invalid base url %q", opts.BaseURL)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	downloadClient := opts.DownloadClient
	if downloadClient == nil {
		downloadClient = &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 60 * time.Second,
		}}
	}

	hosts := map[string]struct{}{strings.ToLower(base.Hostname()): {}}
	for _, h := range opts.DownloadHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts[h] = struct{}{}
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}

	return &Client{
		apiKey:         apiKey,
		baseURL:        baseURL,
		textModel:      firstNonEmpty(opts.TextModel, defaultTextModel),
		imageModel:     firstNonEmpty(opts.ImageModel, defaultImageModel),
		videoModel:     firstNonEmpty(opts.VideoModel, defaultVideoModel),
		httpClient:     client,
		downloadClient: downloadClient,
		downloadHosts:  hosts,
		logger:         logger,
	}, nil
}

// GenerateText runs a single generateContent call and returns the trimmed
// text of the first candidate.
func (c *Client) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	temperature := req.Temperature
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Contents}},
		}},
		GenerationConfig: geminiGenerationConfig{Temperature: &temperature, CandidateCount: 1},
	}
	if strings.TrimSpace(req.SystemInstruction) != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction}}}
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, http.MethodPost, c.modelPath(c.textModel, "generateContent"), payload, &response); err != nil {
		return "", err
	}
	for _, candidate := range response.Candidates {
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			c.logger.Debug().Str("model", c.textModel).Int("chars", len(text)).Msg("genai: generated text")
			return text, nil
		}
	}
	if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		return "", &APIError{Status: http.StatusOK, Message: "prompt blocked: " + response.PromptFeedback.BlockReason}
	}
	return "", &APIError{Status: http.StatusOK, Message: "model returned no text"}
}

// GenerateImages returns the base64-encoded image bytes in provider order.
func (c *Client) GenerateImages(ctx context.Context, req ImageRequest) ([]string, error) {
	count := req.NumberOfImages
	if count <= 0 {
		count = 1
	}
	payload := imagenPredictRequest{
		Instances: []promptInstance{{Prompt: req.Prompt}},
		Parameters: imagenParameters{
			SampleCount:    count,
			AspectRatio:    req.AspectRatio,
			OutputMimeType: firstNonEmpty(req.MimeType, "image/jpeg"),
		},
	}

	var response imagenPredictResponse
	if err := c.invoke(ctx, http.MethodPost, c.modelPath(c.imageModel, "predict"), payload, &response); err != nil {
		return nil, err
	}

	images := make([]string, 0, count)
	for _, prediction := range response.Predictions {
		if prediction.BytesBase64Encoded == "" {
			continue
		}
		images = append(images, prediction.BytesBase64Encoded)
		if len(images) == count {
			break
		}
	}
	if len(images) == 0 {
		return nil, &APIError{Status: http.StatusOK, Message: "image model returned no images"}
	}

	c.logger.Debug().
		Str("model", c.imageModel).
		Int("requested", count).
		Int("returned", len(images)).
		Msg("genai: generated images")

	return images, nil
}

// GenerateVideos starts a long-running video job and returns the provider's
// operation document untouched.
func (c *Client) GenerateVideos(ctx context.Context, req VideoRequest) (domain.Operation, error) {
	count := req.NumberOfVideos
	if count <= 0 {
		count = 1
	}
	payload := veoPredictRequest{
		Instances:  []promptInstance{{Prompt: req.Prompt}},
		Parameters: veoParameters{SampleCount: count},
	}

	var raw json.RawMessage
	if err := c.invoke(ctx, http.MethodPost, c.modelPath(c.videoModel, "predictLongRunning"), payload, &raw); err != nil {
		return domain.Operation{}, err
	}
	op, err := domain.NewOperation(raw)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("decode gemini operation: %w", err)
	}

	c.logger.Info().
		Str("model", c.videoModel).
		Str("operation", op.Name()).
		Msg("genai: video job started")

	return op, nil
}

// GetVideosOperation refreshes an operation by its resource name.
func (c *Client) GetVideosOperation(ctx context.Context, op domain.Operation) (domain.Operation, error) {
	name := op.Name()
	if name == "" {
		return domain.Operation{}, fmt.Errorf("%w: operation name is required", domain.ErrInvalidRequest)
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "?#") || strings.Contains(name, "://") {
		return domain.Operation{}, fmt.Errorf("%w: invalid operation name", domain.ErrInvalidRequest)
	}

	var raw json.RawMessage
	if err := c.invoke(ctx, http.MethodGet, "/"+strings.TrimLeft(name, "/"), nil, &raw); err != nil {
		return domain.Operation{}, err
	}
	updated, err := domain.NewOperation(raw)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("decode gemini operation: %w", err)
	}

	c.logger.Debug().
		Str("operation", name).
		Bool("done", updated.Done()).
		Msg("genai: polled video job")

	return updated, nil
}

// OpenDownload resolves an upstream asset link with the API key attached and
// returns the open body for streaming.
func (c *Client) OpenDownload(ctx context.Context, link string) (*Download, error) {
	target, err := url.Parse(strings.TrimSpace(link))
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, fmt.Errorf("%w: a valid download link is required", domain.ErrInvalidRequest)
	}
	if _, ok := c.downloadHosts[strings.ToLower(target.Hostname())]; !ok {
		return nil, fmt.Errorf("%w: download host %q is not allowed", domain.ErrInvalidRequest, target.Hostname())
	}
	q := target.Query()
	q.Set("key", c.apiKey)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstreamFetchFailed, redactKey(err.Error(), c.apiKey))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: Failed to fetch video from Gemini. Status: %d", domain.ErrUpstreamFetchFailed, resp.StatusCode)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, domain.ErrNoResponseBody
	}

	return &Download{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

func (c *Client) modelPath(model, method string) string {
	return fmt.Sprintf("/models/%s:%s", url.PathEscape(model), method)
}

func (c *Client) invoke(ctx context.Context, method, path string, payload any, out any) error {
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %s", redactKey(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Error.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode gemini response: empty body")
		}
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
	return strings.ReplaceAll(msg, key, "REDACTED")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
