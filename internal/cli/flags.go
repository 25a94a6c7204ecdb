package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// outputFormat selects how extracted palettes are printed.
type outputFormat string

const (
	formatText outputFormat = "text"
	formatHex  outputFormat = "hex"
	formatRGB  outputFormat = "rgb"
	formatJSON outputFormat = "json"
)

var outputFormats = []outputFormat{formatText, formatHex, formatRGB, formatJSON}

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string { return string(*f) }

// Set implements pflag.Value.
func (f *outputFormat) Set(v string) error {
	for _, valid := range outputFormats {
		if strings.EqualFold(v, string(valid)) {
			*f = valid
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (supported: %s)", v, joinValues(outputFormats))
}

func (f *outputFormat) Type() string { return "format" }

// previewMode controls ANSI colour blocks in text output.
type previewMode string

const (
	previewAuto   previewMode = "auto"
	previewAlways previewMode = "always"
	previewNever  previewMode = "never"
)

var previewModes = []previewMode{previewAuto, previewAlways, previewNever}

var _ pflag.Value = (*previewMode)(nil)

func (p *previewMode) String() string { return string(*p) }

// Set implements pflag.Value.
func (p *previewMode) Set(v string) error {
	for _, valid := range previewModes {
		if strings.EqualFold(v, string(valid)) {
			*p = valid
			return nil
		}
	}
	return fmt.Errorf("invalid preview mode %q (valid: %s)", v, joinValues(previewModes))
}

func (p *previewMode) Type() string { return "mode" }

// enabled reports whether previews should be drawn on w. In auto mode this
// is only the case for a terminal.
func (p previewMode) enabled(w io.Writer) bool {
	switch p {
	case previewAlways:
		return true
	case previewNever:
		return false
	default:
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
