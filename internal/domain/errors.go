package domain

import "errors"

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrRequestFailed         = errors.New("request failed")
	ErrMissingResult         = errors.New("video generation completed, but no download link was provided")
	ErrVideoGenerationFailed = errors.New("video generation failed")
	ErrUpstreamFetchFailed   = errors.New("upstream fetch failed")
	ErrNoResponseBody        = errors.New("video response body is empty")
	ErrProviderFailure       = errors.New("provider failure")
	ErrMissingAPIKey         = errors.New("API_KEY is not defined in environment variables")
)
