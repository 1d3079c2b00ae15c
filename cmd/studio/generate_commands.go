package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"promptstudio/internal/client"
	"promptstudio/internal/domain"
)

func newImageCommand(ctx *commandContext) *cobra.Command {
	var aspect, style string
	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Enhance a prompt and generate four images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.GenerationRequest{
				Prompt:      strings.Join(args, " "),
				Modality:    domain.ModalityImage,
				AspectRatio: domain.NormalizeAspectRatio(aspect),
				Style:       domain.NormalizeStyle(style),
			}
			if err := req.Validate(); err != nil {
				return err
			}
			c, err := ctx.newClient()
			if err != nil {
				return err
			}
			store, err := ctx.store()
			if err != nil {
				return err
			}

			enhanced := c.EnhancePrompt(cmd.Context(), req.Prompt, req.Style, req.AspectRatio)
			fmt.Fprintf(ctx.stdout, "Prompt: %s\n", enhanced)

			images, err := c.GenerateImages(cmd.Context(), enhanced, req.AspectRatio)
			if err != nil {
				return fmt.Errorf("generate images: %w", err)
			}
			stamp := time.Now().Format("20060102-150405")
			for i, dataURL := range images {
				raw, err := client.DecodeImage(dataURL)
				if err != nil {
					return fmt.Errorf("decode image %d: %w", i+1, err)
				}
				key, err := store.Write(cmd.Context(), fmt.Sprintf("images/%s-%d.jpg", stamp, i+1), raw)
				if err != nil {
					return err
				}
				path, _ := store.Path(key)
				fmt.Fprintf(ctx.stdout, "Saved %s (%s)\n", path, humanize.Bytes(uint64(len(raw))))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&aspect, "aspect", domain.DefaultAspectRatio, "Aspect ratio (1:1, 16:9, 9:16, 4:3, 3:4)")
	cmd.Flags().StringVar(&style, "style", domain.DefaultStyle, "Artistic style")
	return cmd
}

func newVideoCommand(ctx *commandContext) *cobra.Command {
	var aspect, style string
	cmd := &cobra.Command{
		Use:   "video <prompt>",
		Short: "Enhance a prompt, generate a video and download it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.GenerationRequest{
				Prompt:      strings.Join(args, " "),
				Modality:    domain.ModalityVideo,
				AspectRatio: domain.NormalizeAspectRatio(aspect),
				Style:       domain.NormalizeStyle(style),
			}
			if err := req.Validate(); err != nil {
				return err
			}
			c, err := ctx.newClient()
			if err != nil {
				return err
			}
			store, err := ctx.store()
			if err != nil {
				return err
			}

			enhanced := c.EnhancePrompt(cmd.Context(), req.Prompt, req.Style, req.AspectRatio)
			fmt.Fprintf(ctx.stdout, "Prompt: %s\n", enhanced)

			started := time.Now()
			locator, err := c.SubmitAndAwaitVideo(cmd.Context(), enhanced, func(msg string) {
				fmt.Fprintf(ctx.stderr, "  %s\n", msg)
			})
			if err != nil {
				return err
			}

			resp, err := c.Fetch(cmd.Context(), locator)
			if err != nil {
				return fmt.Errorf("download video: %w", err)
			}
			defer resp.Body.Close()

			key := fmt.Sprintf("videos/%s.mp4", started.Format("20060102-150405"))
			n, err := saveWithProgress(cmd.Context(), ctx.stderr, store, key, resp.Body, resp.ContentLength)
			if err != nil {
				return fmt.Errorf("save video: %w", err)
			}
			path, _ := store.Path(key)
			fmt.Fprintf(ctx.stdout, "Saved %s (%s, took %s)\n", path, humanize.Bytes(uint64(n)), time.Since(started).Round(time.Second))
			return nil
		},
	}
	cmd.Flags().StringVar(&aspect, "aspect", domain.DefaultAspectRatio, "Aspect ratio used to shape the prompt")
	cmd.Flags().StringVar(&style, "style", domain.DefaultStyle, "Artistic style")
	return cmd
}

func newSpeakCommand(ctx *commandContext) *cobra.Command {
	var tone string
	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Rephrase text so it reads well aloud in the chosen tone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.GenerationRequest{
				Prompt:   strings.Join(args, " "),
				Modality: domain.ModalityAudio,
				Tone:     domain.NormalizeTone(tone),
			}
			if err := req.Validate(); err != nil {
				return err
			}
			text := req.Prompt
			// Default needs no round trip.
			if req.Tone != domain.DefaultTone {
				c, err := ctx.newClient()
				if err != nil {
					return err
				}
				text = c.RephraseText(cmd.Context(), req.Prompt, req.Tone)
			}
			fmt.Fprintln(ctx.stdout, text)
			return nil
		},
	}
	cmd.Flags().StringVar(&tone, "tone", domain.DefaultTone, "Speaking tone (Default, Friendly, Professional, Excited, Calm)")
	return cmd
}

func newEnhanceCommand(ctx *commandContext) *cobra.Command {
	var aspect, style string
	cmd := &cobra.Command{
		Use:   "enhance <prompt>",
		Short: "Print the enhanced prompt without generating anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.GenerationRequest{
				Prompt:      strings.Join(args, " "),
				Modality:    domain.ModalityImage,
				AspectRatio: domain.NormalizeAspectRatio(aspect),
				Style:       domain.NormalizeStyle(style),
			}
			if err := req.Validate(); err != nil {
				return err
			}
			c, err := ctx.newClient()
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.stdout, c.EnhancePrompt(cmd.Context(), req.Prompt, req.Style, req.AspectRatio))
			return nil
		},
	}
	cmd.Flags().StringVar(&aspect, "aspect", domain.DefaultAspectRatio, "Aspect ratio")
	cmd.Flags().StringVar(&style, "style", domain.DefaultStyle, "Artistic style")
	return cmd
}

func newOptionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "options",
		Short:       "List the supported aspect ratios, styles and tones",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := []struct {
				title   string
				options []domain.Option
			}{
				{title: "Aspect ratios", options: domain.AspectRatios},
				{title: "Styles", options: domain.Styles},
				{title: "Tones", options: domain.Tones},
			}
			for _, g := range groups {
				fmt.Fprintf(ctx.stdout, "%s:\n", g.title)
				for _, opt := range g.options {
					fmt.Fprintf(ctx.stdout, "  %-14s %s\n", opt.Value, opt.Label)
				}
			}
			return nil
		},
	}
}
