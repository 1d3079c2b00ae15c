package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"promptstudio/internal/http/handlers"
	httpapi "promptstudio/internal/http/httpapi"
	"promptstudio/internal/infra"
	"promptstudio/internal/metrics"
	"promptstudio/internal/providers/genai"
	"promptstudio/internal/providers/image"
	"promptstudio/internal/providers/prompt"
	"promptstudio/internal/providers/video"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		boot := infra.NewLogger(os.Getenv("APP_ENV"))
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := infra.NewLogger(cfg.AppEnv)

	router, err := newRouter(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("text_model", cfg.TextModel).
			Str("image_model", cfg.ImageModel).
			Str("video_model", cfg.VideoModel).
			Msg("proxy listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newRouter wires the Gemini client, providers and metrics behind the HTTP
// routes.
func newRouter(cfg *infra.Config, logger infra.Logger) (http.Handler, error) {
	client, err := genai.NewClient(genai.Options{
		APIKey:        cfg.GeminiAPIKey,
		BaseURL:       cfg.GeminiBaseURL,
		TextModel:     cfg.TextModel,
		ImageModel:    cfg.ImageModel,
		VideoModel:    cfg.VideoModel,
		HTTPClient:    &http.Client{Timeout: cfg.UpstreamTimeout},
		DownloadHosts: cfg.DownloadHostAllowlist,
		Logger:        &logger,
	})
	if err != nil {
		return nil, err
	}

	app := &handlers.App{
		Prompts: prompt.NewGeminiEnhancer(client),
		Images:  image.NewGeminiGenerator(client),
		Videos:  video.NewGeminiGenerator(client),
		Logger:  logger,
		Metrics: metrics.New(),
	}

	return httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}), nil
}
