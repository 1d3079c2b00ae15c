// Package client is the caller side of the proxy: it dispatches generation
// actions and drives video jobs to completion. It never sees the API key.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
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
	generatePath    = "/api/generate"
	videoStatusPath = "/api/video-status"

	ActionEnhancePrompt  = "enhancePrompt"
	ActionRephraseText   = "rephraseText"
	ActionGenerateImages = "generateImages"
	ActionStartVideo     = "startVideo"

	unknownErrorMessage = "An unknown error occurred."
	imageDataURLPrefix  = "data:image/jpeg;base64,"
)

// RequestFailedError is returned for every failed round trip to the proxy.
type RequestFailedError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

func (e *RequestFailedError) Is(target error) bool {
	return target == domain.ErrRequestFailed
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Client talks to the proxy. The zero value is not usable; call New.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	logger       *infra.Logger
	pollInterval time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Downloads go through it too, so
// it should not carry an overall timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *infra.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPollInterval sets the delay between video status checks.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// New builds a client for the proxy at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid server url %q", domain.ErrInvalidRequest, baseURL)
	}
	c := &Client{
		baseURL:      base,
		httpClient:   &http.Client{Transport: http.DefaultTransport},
		logger:       infra.DiscardLogger(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type actionRequest struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

type textResult struct {
	Text string `json:"text"`
}

type imagesResult struct {
	Images []string `json:"images"`
}

type operationEnvelope struct {
	Operation domain.Operation `json:"operation"`
}

// Invoke posts one action to the proxy and decodes the success body into out.
// It makes exactly one round trip.
func (c *Client) Invoke(ctx context.Context, action string, payload any, out any) error {
	return c.post(ctx, generatePath, actionRequest{Action: action, Payload: payload}, out)
}

// EnhancePrompt asks the proxy to rewrite prompt. It never fails: on any error
// it falls back to a comma-joined prompt.
func (c *Client) EnhancePrompt(ctx context.Context, prompt, style, aspectRatio string) string {
	var res textResult
	err := c.Invoke(ctx, ActionEnhancePrompt, map[string]string{
		"prompt":      prompt,
		"style":       style,
		"aspectRatio": aspectRatio,
	}, &res)
	if err == nil && strings.TrimSpace(res.Text) != "" {
		return strings.TrimSpace(res.Text)
	}
	c.logger.Warn().Err(err).Msg("client: prompt enhancement failed, using fallback")
	return prompt + ", " + style + ", " + aspectRatio
}

// RephraseText asks the proxy to rewrite text in tone and falls back to the
// original text on error.
func (c *Client) RephraseText(ctx context.Context, text, tone string) string {
	var res textResult
	err := c.Invoke(ctx, ActionRephraseText, map[string]string{
		"text": text,
		"tone": tone,
	}, &res)
	if err != nil {
		c.logger.Warn().Err(err).Msg("client: rephrase failed, using original text")
		return text
	}
	return res.Text
}

// GenerateImages returns renderable data URLs in provider order.
func (c *Client) GenerateImages(ctx context.Context, prompt, aspectRatio string) ([]string, error) {
	var res imagesResult
	err := c.Invoke(ctx, ActionGenerateImages, map[string]string{
		"prompt":      prompt,
		"aspectRatio": aspectRatio,
	}, &res)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(res.Images))
	for _, img := range res.Images {
		urls = append(urls, imageDataURLPrefix+img)
	}
	return urls, nil
}

// StartVideo submits a video job and returns its initial operation.
func (c *Client) StartVideo(ctx context.Context, prompt string) (domain.Operation, error) {
	var res operationEnvelope
	if err := c.Invoke(ctx, ActionStartVideo, map[string]string{"prompt": prompt}, &res); err != nil {
		return domain.Operation{}, err
	}
	if res.Operation.IsZero() {
		return domain.Operation{}, &RequestFailedError{Status: http.StatusOK, Message: "response did not include an operation"}
	}
	return res.Operation, nil
}

// StatusCheck sends the whole operation back to the proxy and returns the
// refreshed one.
func (c *Client) StatusCheck(ctx context.Context, op domain.Operation) (domain.Operation, error) {
	var res operationEnvelope
	if err := c.post(ctx, videoStatusPath, operationEnvelope{Operation: op}, &res); err != nil {
		return domain.Operation{}, err
	}
	if res.Operation.IsZero() {
		return domain.Operation{}, &RequestFailedError{Status: http.StatusOK, Message: "response did not include an operation"}
	}
	return res.Operation, nil
}

// Fetch resolves a locator returned by SubmitAndAwaitVideo against the proxy
// and returns the open response. The caller must close the body.
func (c *Client) Fetch(ctx context.Context, locator string) (*http.Response, error) {
	ref, err := url.Parse(strings.TrimSpace(locator))
	if err != nil || locator == "" {
		return nil, fmt.Errorf("%w: invalid locator %q", domain.ErrInvalidRequest, locator)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create fetch request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestFailedError{Message: err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, failure(resp.StatusCode, body)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestFailedError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestFailedError{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RequestFailedError{Status: resp.StatusCode, Message: unknownErrorMessage, Err: err}
	}
	return nil
}

// failure turns an error response into a RequestFailedError, preferring the
// proxy's own message.
func failure(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &RequestFailedError{Status: status, Message: unknownErrorMessage}
	}
	if strings.TrimSpace(envelope.Error) == "" {
		return &RequestFailedError{Status: status, Message: fmt.Sprintf("API request failed with status %d", status)}
	}
	return &RequestFailedError{Status: status, Message: envelope.Error}
}

// DecodeImage strips the data URL prefix and returns the raw bytes.
func DecodeImage(dataURL string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(dataURL, imageDataURLPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: not a jpeg data url", domain.ErrInvalidRequest)
	}
	return base64.StdEncoding.DecodeString(encoded)
}
