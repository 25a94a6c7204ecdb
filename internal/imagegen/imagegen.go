// Package imagegen generates source images from text prompts using Google's
// Gen AI image models, caching each result on disk.
package imagegen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/genai"
)

const (
	// wallpaperEnhancement steers generation towards full-bleed images whose
	// colours are not dominated by frames or borders.
	wallpaperEnhancement = ", high quality desktop wallpaper, edge-to-edge composition, full bleed, seamless edges, vibrant colors, no borders, no frames, no padding"

	defaultNegativePrompt = "white borders, black borders, gray borders, padding, margins, letterbox, pillarbox, black bars, frames, picture frames, border around image, vignette edges, faded edges, canvas texture, matting"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash-image"

	// BackendGeminiAPI selects the Gemini API backend (requires GOOGLE_API_KEY).
	BackendGeminiAPI = "gemini-api"

	// BackendVertexAI selects the Vertex AI backend (uses application default credentials).
	BackendVertexAI = "vertex-ai"

	apiKeyEnv = "GOOGLE_API_KEY"
)

var (
	// ErrMissingAPIKey is returned when the Gemini API backend has no API key.
	ErrMissingAPIKey = errors.New(apiKeyEnv + " environment variable is required")

	// ErrEmptyPrompt is returned when Generate is called without a prompt.
	ErrEmptyPrompt = errors.New("prompt is required")
)

// Options configures image generation and caching.
type Options struct {
	Model          string
	Backend        string
	AspectRatio    string
	ImageSize      string
	NegativePrompt string

	CacheEnabled   bool
	CacheDir       string
	CacheFilename  string
	CacheOverwrite bool

	NoExtendedPrompt bool
	NoNegativePrompt bool
}

// DefaultCacheDir returns the directory generated images are cached in.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "swatch", "genai")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "swatch", "genai")
	}
	return filepath.Join(".cache", "swatch", "genai")
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		Model:        DefaultModel,
		Backend:      BackendGeminiAPI,
		AspectRatio:  "16:9",
		ImageSize:    "2K",
		CacheEnabled: true,
		CacheDir:     DefaultCacheDir(),
	}
}

// Validate checks the option values that can be checked offline.
func (o Options) Validate() error {
	if o.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if o.Backend != BackendGeminiAPI && o.Backend != BackendVertexAI {
		return fmt.Errorf("invalid backend %q (valid: %s, %s)", o.Backend, BackendGeminiAPI, BackendVertexAI)
	}
	valid := []string{"1:1", "3:4", "4:3", "9:16", "16:9", "21:9"}
	if !slices.Contains(valid, o.AspectRatio) {
		return fmt.Errorf("invalid aspect ratio %q (valid: %v)", o.AspectRatio, valid)
	}
	if o.CacheEnabled && o.CacheDir == "" {
		return fmt.Errorf("cache directory cannot be empty when caching is enabled")
	}
	return nil
}

// Generator turns prompts into image files.
type Generator struct {
	opts   Options
	logger hclog.Logger

	// create writes the image for prompt to path.
	create func(ctx context.Context, prompt, path string) error
}

// New creates a Generator. A nil logger disables logging.
func New(opts Options, logger hclog.Logger) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	g := &Generator{opts: opts, logger: logger}
	g.create = g.generate
	return g, nil
}

// Generate returns the path of an image generated for prompt. A cached
// image is reused unless CacheOverwrite is set. With caching disabled the
// image is a temporary file; call Release once it has been read.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	path, err := g.ImagePath(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to determine image path: %w", err)
	}

	if g.opts.CacheEnabled && !g.opts.CacheOverwrite && fileExists(path) {
		g.logger.Info("using cached image", "path", path)
		return path, nil
	}

	g.logger.Info("generating image", "backend", g.opts.Backend, "model", g.opts.Model, "prompt", prompt)
	if err := g.create(ctx, prompt, path); err != nil {
		if rerr := g.Release(path); rerr != nil {
			g.logger.Warn("failed to remove temporary image", "path", path, "error", rerr)
		}
		return "", err
	}

	g.logger.Info("image generated", "path", path)
	return path, nil
}

// Release removes an image returned by Generate when it is not cached.
// Cached images are kept.
func (g *Generator) Release(path string) error {
	if g.opts.CacheEnabled || path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove temporary image: %w", err)
	}
	return nil
}

func (g *Generator) generate(ctx context.Context, prompt, path string) error {
	if isGeminiModel(g.opts.Model) {
		return g.generateWithGemini(ctx, prompt, path)
	}
	return g.generateWithImagen(ctx, prompt, path)
}

// ImagePath returns where the image for prompt is stored. With caching
// disabled a fresh temporary file is created.
func (g *Generator) ImagePath(prompt string) (string, error) {
	if !g.opts.CacheEnabled {
		tmp, err := os.CreateTemp("", "swatch-genai-*.png")
		if err != nil {
			return "", fmt.Errorf("failed to create temp file: %w", err)
		}
		tmp.Close()
		return tmp.Name(), nil
	}

	if err := os.MkdirAll(g.opts.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	filename := g.opts.CacheFilename
	if filename == "" {
		hash := sha256.Sum256([]byte(prompt + g.opts.Model))
		filename = fmt.Sprintf("genai-%s.png", hex.EncodeToString(hash[:])[:16])
	}
	return filepath.Join(g.opts.CacheDir, filename), nil
}

func (g *Generator) clientConfig() (*genai.ClientConfig, error) {
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if g.opts.Backend == BackendVertexAI {
		cfg.Backend = genai.BackendVertexAI
		return cfg, nil
	}

	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg.APIKey = apiKey
	return cfg, nil
}

func (g *Generator) client(ctx context.Context) (*genai.Client, error) {
	cfg, err := g.clientConfig()
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}
	return client, nil
}

func (g *Generator) enhancePrompt(prompt string) string {
	if g.opts.NoExtendedPrompt {
		return prompt
	}
	return prompt + wallpaperEnhancement
}

func buildNegativePrompt(userPrompt string) string {
	if userPrompt == "" {
		return defaultNegativePrompt
	}
	return fmt.Sprintf("%s, %s", userPrompt, defaultNegativePrompt)
}

// isGeminiModel reports whether model is served by GenerateContent rather
// than the Imagen GenerateImages endpoint.
func isGeminiModel(model string) bool {
	return model == "gemini-2.5-flash-image"
}

func (g *Generator) generateWithImagen(ctx context.Context, prompt, outputPath string) error {
	client, err := g.client(ctx)
	if err != nil {
		return err
	}

	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    g.opts.AspectRatio,
		OutputMIMEType: "image/png",
	}
	if g.opts.ImageSize != "" && (g.opts.Model == "imagen-4.0-generate-001" || g.opts.Model == "imagen-4.0-ultra-generate-001") {
		cfg.ImageSize = g.opts.ImageSize
	}

	// Negative prompts are only honoured by Vertex AI.
	if client.ClientConfig().Backend == genai.BackendVertexAI && !g.opts.NoNegativePrompt {
		cfg.NegativePrompt = buildNegativePrompt(g.opts.NegativePrompt)
	} else if g.opts.NegativePrompt != "" && !g.opts.NoNegativePrompt {
		g.logger.Warn("negative prompts are not supported with the Gemini API backend")
	}

	g.logger.Debug("calling GenerateImages", "model", g.opts.Model, "aspect_ratio", cfg.AspectRatio, "image_size", cfg.ImageSize)
	response, err := client.Models.GenerateImages(ctx, g.opts.Model, g.enhancePrompt(prompt), cfg)
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}
	if len(response.GeneratedImages) == 0 {
		return fmt.Errorf("no images generated in response")
	}

	generated := response.GeneratedImages[0]
	if generated.RAIFilteredReason != "" {
		return fmt.Errorf("image was filtered by safety system: %s", generated.RAIFilteredReason)
	}
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		return fmt.Errorf("generated image has no image data")
	}

	return g.write(outputPath, generated.Image.ImageBytes)
}

func (g *Generator) generateWithGemini(ctx context.Context, prompt, outputPath string) error {
	client, err := g.client(ctx)
	if err != nil {
		return err
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"Image"},
	}
	text := fmt.Sprintf("Generate an image with aspect ratio %s: %s", g.opts.AspectRatio, g.enhancePrompt(prompt))

	g.logger.Debug("calling GenerateContent", "model", g.opts.Model, "aspect_ratio", g.opts.AspectRatio)
	response, err := client.Models.GenerateContent(ctx, g.opts.Model, genai.Text(text), cfg)
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return fmt.Errorf("no image data in response")
	}

	for _, part := range response.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return g.write(outputPath, part.InlineData.Data)
		}
	}
	return fmt.Errorf("no inline image data found in response")
}

func (g *Generator) write(path string, data []byte) error {
	g.logger.Debug("received image data", "bytes", len(data))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write image to file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
