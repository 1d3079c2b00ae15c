package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"promptstudio/internal/storage"
)

// saveWithProgress streams body into the store, drawing a byte progress bar
// when w is a terminal. size may be -1 when the length is unknown.
func saveWithProgress(ctx context.Context, w io.Writer, store *storage.FileStore, key string, body io.Reader, size int64) (int64, error) {
	if !isTerminal(w) {
		_, n, err := store.WriteStream(ctx, key, body)
		return n, err
	}

	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	_, n, err := store.WriteStream(ctx, key, io.TeeReader(body, bar))
	if err != nil {
		_ = bar.Exit()
		return n, err
	}
	_ = bar.Finish()
	return n, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
