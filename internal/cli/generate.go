package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/imagegen"
)

// generateOptions holds the flags of the generate command.
type generateOptions struct {
	prompt string
	gen    imagegen.Options
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := defaultExtractOptions()
	genOpts := generateOptions{gen: imagegen.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an image from a prompt and extract its dominant colours",
		Long: `Generate an image from a text prompt with Google Gen AI and extract its
dominant colours.

Generated images are cached by prompt and model, so running the same prompt
again reuses the existing image unless --cache-overwrite is given.

Backends:
  gemini-api  Gemini API, requires the GOOGLE_API_KEY environment variable
  vertex-ai   Vertex AI, uses application default credentials

Examples:
  # Palette of a generated landscape
  swatch generate --prompt "misty pine forest at dawn"

  # Square image, Imagen model, JSON output
  swatch generate --prompt "neon city" --model imagen-4.0-generate-001 \
    --aspect-ratio 1:1 -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, &genOpts, &opts)
		},
	}

	g := &genOpts.gen
	cmd.Flags().StringVarP(&genOpts.prompt, "prompt", "p", "", "text prompt describing the image (required)")
	cmd.Flags().StringVar(&g.Model, "model", g.Model, "image generation model")
	cmd.Flags().StringVar(&g.Backend, "genai-backend", g.Backend, "backend: gemini-api or vertex-ai")
	cmd.Flags().StringVar(&g.AspectRatio, "aspect-ratio", g.AspectRatio, "aspect ratio: 1:1, 3:4, 4:3, 9:16, 16:9, 21:9")
	cmd.Flags().StringVar(&g.ImageSize, "image-size", g.ImageSize, "image size: 1K or 2K (Imagen models only)")
	cmd.Flags().StringVar(&g.NegativePrompt, "negative-prompt", "", "what to avoid in the image")
	cmd.Flags().BoolVar(&g.CacheEnabled, "cache", g.CacheEnabled, "cache generated images")
	cmd.Flags().StringVar(&g.CacheDir, "cache-dir", g.CacheDir, "directory for cached images")
	cmd.Flags().StringVar(&g.CacheFilename, "cache-filename", "", "cache filename (default: derived from prompt and model)")
	cmd.Flags().BoolVar(&g.CacheOverwrite, "cache-overwrite", false, "regenerate even if a cached image exists")
	cmd.Flags().BoolVar(&g.NoExtendedPrompt, "no-extended-prompt", false, "send the prompt without wallpaper enhancements")
	cmd.Flags().BoolVar(&g.NoNegativePrompt, "no-negative-prompt", false, "do not send the default negative prompt")
	_ = cmd.MarkFlagRequired("prompt")

	opts.addFlags(cmd.Flags())

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, genOpts *generateOptions, opts *extractOptions) error {
	logger := root.logger(cmd.ErrOrStderr())

	extractor, err := opts.newExtractor(logger.Named("colour"))
	if err != nil {
		return err
	}

	gen, err := imagegen.New(genOpts.gen, logger.Named("imagegen"))
	if err != nil {
		return fmt.Errorf("invalid generation options: %w", err)
	}

	path, err := gen.Generate(cmd.Context(), genOpts.prompt)
	if err != nil {
		if errors.Is(err, imagegen.ErrMissingAPIKey) {
			return fmt.Errorf("%w (or use --genai-backend %s)", err, imagegen.BackendVertexAI)
		}
		return fmt.Errorf("failed to generate image: %w", err)
	}

	defer func() {
		if err := gen.Release(path); err != nil {
			logger.Warn("failed to clean up generated image", "path", path, "error", err)
		}
	}()

	r := extractOne(cmd.Context(), image.NewFileLoader(), extractor, path, opts, logger.Named("extract"))
	return writeReports(cmd, []report{r}, opts, logger)
}
