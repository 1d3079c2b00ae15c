package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"promptstudio/internal/domain"
)

// DefaultPollInterval is how long the poller waits between status checks.
const DefaultPollInterval = 10 * time.Second

const (
	downloadPath = "/api/download-video"

	startMessage = "Starting video generation job..."
	readyMessage = "Video is ready!"
)

// progressMessages rotate while a job runs. They are pacing only and say
// nothing about the provider's real progress.
var progressMessages = [...]string{
	"Warming up the digital director...",
	"Rendering the first few frames...",
	"Compositing the scene...",
	"Applying special effects...",
	"Adding cinematic lighting...",
	"Finalizing the audio mix (just kidding!)...",
	"This is taking a bit longer than usual, but good things are coming...",
	"Polishing the final cut...",
}

// ProgressFunc receives human-readable status updates.
type ProgressFunc func(message string)

// SubmitAndAwaitVideo starts a video job and polls it until it is done,
// returning a proxy locator for the finished asset. Failed status checks are
// logged and retried on the next tick; only ctx ends the wait early.
func (c *Client) SubmitAndAwaitVideo(ctx context.Context, prompt string, onProgress ProgressFunc) (string, error) {
	progress := func(msg string) {
		if onProgress != nil {
			onProgress(msg)
		}
	}

	progress(startMessage)
	op, err := c.StartVideo(ctx, prompt)
	if err != nil {
		return "", videoFailed(err)
	}
	c.logger.Info().Str("operation", op.Name()).Msg("client: video job submitted")

	for i := 0; !op.Done(); i++ {
		progress(progressMessages[i%len(progressMessages)])
		if err := sleep(ctx, c.pollInterval); err != nil {
			return "", videoFailed(err)
		}

		updated, err := c.StatusCheck(ctx, op)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", videoFailed(ctxErr)
			}
			c.logger.Warn().
				Err(err).
				Str("event", "transient_poll_error").
				Str("operation", op.Name()).
				Int("attempt", i+1).
				Msg("client: video status check failed, retrying")
			continue
		}
		op = updated
	}

	progress(readyMessage)

	uri, ok := op.VideoURI()
	if !ok {
		missing := domain.ErrMissingResult
		if msg := op.ErrorMessage(); msg != "" {
			return "", videoFailed(fmt.Errorf("%w: %s", missing, msg))
		}
		return "", videoFailed(missing)
	}
	return DownloadLocator(uri), nil
}

// DownloadLocator builds the proxy URL that streams uri.
func DownloadLocator(uri string) string {
	return downloadPath + "?link=" + url.QueryEscape(uri)
}

func videoFailed(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrVideoGenerationFailed, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
