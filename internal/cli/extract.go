package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
	httputil "github.com/jmylchreest/swatch/internal/util/http"
)

// extractOptions holds the flags that control extraction and output.
type extractOptions struct {
	colours      int
	algorithm    string
	format       outputFormat
	output       string
	preview      previewMode
	maxDimension int
	minAlpha     int
	stride       int
	parallel     int
}

func defaultExtractOptions() extractOptions {
	return extractOptions{
		colours:      colour.DefaultExtractorConfig().ColorCount,
		algorithm:    string(colour.AlgorithmDominant),
		format:       formatText,
		preview:      previewAuto,
		maxDimension: image.DefaultMaxDimension,
		minAlpha:     colour.DefaultMinAlpha,
		stride:       colour.DefaultStride,
		parallel:     runtime.GOMAXPROCS(0),
	}
}

// addFlags registers the extraction and output flags on fs.
func (o *extractOptions) addFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&o.colours, "colours", "c", o.colours, "maximum number of colours to report (0-256)")
	fs.StringVarP(&o.algorithm, "algorithm", "a", o.algorithm, "extraction algorithm (dominant)")
	fs.VarP(&o.format, "format", "f", "output format (text, hex, rgb, json)")
	fs.StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
	fs.Var(&o.preview, "preview", "colour previews in text output (auto, always, never)")
	fs.IntVar(&o.maxDimension, "max-dimension", o.maxDimension, "downscale so the longest side is at most this many pixels (0 disables)")
	fs.IntVar(&o.minAlpha, "min-alpha", o.minAlpha, "ignore pixels whose alpha is below this value (0-255)")
	fs.IntVar(&o.stride, "stride", o.stride, "sample every Nth pixel")
}

// newExtractor validates the options and builds the configured extractor.
func (o *extractOptions) newExtractor(logger hclog.Logger) (colour.Extractor, error) {
	config := colour.ExtractorConfig{
		Algorithm:  colour.Algorithm(o.algorithm),
		ColorCount: o.colours,
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dominant := colour.DefaultDominantOptions()
	dominant.MinAlpha = o.minAlpha
	dominant.Stride = o.stride

	extractor, err := colour.NewExtractor(config.Algorithm, colour.ExtractorOptions{
		Dominant: dominant,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	return extractor, nil
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := defaultExtractOptions()

	cmd := &cobra.Command{
		Use:   "extract <image|dir|url>...",
		Short: "Extract the dominant colours of one or more images",
		Long: `Extract the dominant colours of one or more images.

Each image is downscaled to a working resolution, sampled, quantized into
colour buckets and merged into clusters of similar colours. The clusters
covering the most of the image are reported, largest first.

Directories are expanded to the supported images they contain. Multiple
images are processed concurrently and printed in argument order.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Five most dominant colours
  swatch extract wallpaper.jpg

  # Eight colours as JSON
  swatch extract -c 8 -f json wallpaper.png

  # Every image in a directory, hex codes only
  swatch extract -f hex ~/Pictures/wallpapers

  # Write the palette of a remote image to a file
  swatch extract -o palette.txt https://example.com/photo.webp`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, root, &opts)
		},
	}

	opts.addFlags(cmd.Flags())
	cmd.Flags().IntVar(&opts.parallel, "parallel", opts.parallel, "maximum number of images processed at once")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string, root *rootOptions, opts *extractOptions) error {
	logger := root.logger(cmd.ErrOrStderr())

	sources, err := image.ResolveSources(args)
	if err != nil {
		return err
	}

	extractor, err := opts.newExtractor(logger.Named("colour"))
	if err != nil {
		return err
	}

	logger.Debug("extracting colours", "sources", len(sources), "colours", opts.colours, "algorithm", opts.algorithm)

	loader := image.NewSmartLoader(httputil.FetchOptions{})
	reports := extractSources(cmd.Context(), loader, extractor, sources, opts, logger.Named("extract"))

	return writeReports(cmd, reports, opts, logger)
}

// report is the outcome of extracting one source.
type report struct {
	Source  string
	Width   int
	Height  int
	Palette *colour.Palette
	Err     error
}

// extractSources runs one independent extraction per source, at most
// opts.parallel at a time. Reports keep the order of sources.
func extractSources(ctx context.Context, loader image.Loader, extractor colour.Extractor, sources []string, opts *extractOptions, logger hclog.Logger) []report {
	reports := make([]report, len(sources))
	sem := make(chan struct{}, max(opts.parallel, 1))

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Go(func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			reports[i] = extractOne(ctx, loader, extractor, source, opts, logger)
		})
	}
	wg.Wait()

	return reports
}

func extractOne(ctx context.Context, loader image.Loader, extractor colour.Extractor, source string, opts *extractOptions, logger hclog.Logger) report {
	r := report{Source: source}
	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}

	img, err := loader.Load(ctx, source)
	if err != nil {
		r.Err = fmt.Errorf("failed to load image: %w", err)
		return r
	}

	working := image.Prepare(img, opts.maxDimension)
	r.Width, r.Height = working.Bounds().Dx(), working.Bounds().Dy()
	logger.Debug("prepared image",
		"source", source,
		"original", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"working", fmt.Sprintf("%dx%d", r.Width, r.Height),
	)

	palette, err := extractor.Extract(working, opts.colours)
	if err != nil {
		r.Err = fmt.Errorf("failed to extract colours: %w", err)
		return r
	}
	r.Palette = palette

	logger.Debug("extracted palette", "source", source, "colours", palette.Len(), "coverage", palette.Coverage())
	return r
}

// writeReports prints successful reports and returns the joined errors of
// the failed ones.
func writeReports(cmd *cobra.Command, reports []report, opts *extractOptions, logger hclog.Logger) error {
	var (
		errs []error
		ok   []report
	)
	for _, r := range reports {
		if r.Err != nil {
			logger.Error("extraction failed", "source", r.Source, "error", r.Err)
			errs = append(errs, fmt.Errorf("%s: %w", r.Source, r.Err))
			continue
		}
		ok = append(ok, r)
	}

	if len(ok) > 0 {
		out := cmd.OutOrStdout()
		preview := opts.output == "" && opts.preview.enabled(out)

		rendered, err := render(ok, opts.format, preview)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		if opts.output != "" {
			logger.Debug("writing output", "path", opts.output)
			if err := os.WriteFile(opts.output, []byte(rendered), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			logger.Info("wrote palette", "path", opts.output)
		} else {
			fmt.Fprint(out, rendered)
		}
	}

	return errors.Join(errs...)
}
