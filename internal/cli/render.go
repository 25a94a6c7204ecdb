package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/swatch/internal/colour"
)

// previewWidth fits a coverage label such as "100.0%" with a margin.
const previewWidth = 8

// reportJSON is the JSON form of one extracted source.
type reportJSON struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	colour.PaletteJSON
}

// render formats reports according to format. A single report is rendered
// without a source header (text excepted) and, for JSON, as an object
// rather than an array.
func render(reports []report, format outputFormat, preview bool) (string, error) {
	switch format {
	case formatJSON:
		return renderJSON(reports)
	case formatHex:
		return renderLines(reports, preview, (*colour.Palette).ToHex), nil
	case formatRGB:
		return renderLines(reports, preview, displays), nil
	case formatText, "":
		return renderText(reports, preview), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: %s)", format, joinValues(outputFormats))
	}
}

func renderJSON(reports []report) (string, error) {
	docs := make([]reportJSON, len(reports))
	for i, r := range reports {
		docs[i] = reportJSON{
			Source:      r.Source,
			Width:       r.Width,
			Height:      r.Height,
			PaletteJSON: r.Palette.JSON(),
		}
	}

	var v any = docs
	if len(docs) == 1 {
		v = docs[0]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to convert to JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// displays returns the rgb(R,G,B) form of each swatch in rank order.
func displays(p *colour.Palette) []string {
	out := make([]string, 0, p.Len())
	for _, s := range p.All() {
		out = append(out, s.Display())
	}
	return out
}

func renderLines(reports []report, preview bool, values func(*colour.Palette) []string) string {
	var b strings.Builder
	for i, r := range reports {
		if len(reports) > 1 {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "# %s\n", r.Source)
		}
		for idx, v := range values(r.Palette) {
			if preview {
				b.WriteString(colour.ColourPreview(r.Palette.Swatches[idx].RGB, 4) + " ")
			}
			b.WriteString(v + "\n")
		}
	}
	return b.String()
}

func renderText(reports []report, preview bool) string {
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%dx%d, %d samples)\n", r.Source, r.Width, r.Height, r.Palette.Stats.Sampled)

		if r.Palette.Len() == 0 {
			b.WriteString("no dominant colours found\n")
			continue
		}

		headers := []string{"#", "Hex", "RGB", "Coverage"}
		if preview {
			headers = append([]string{"#", "Colour"}, headers[1:]...)
		}
		table := NewTable(headers)
		for idx, s := range r.Palette.All() {
			row := []string{strconv.Itoa(idx + 1), s.Hex(), s.Display(), fmt.Sprintf("%.2f%%", s.Percentage)}
			if preview {
				label := fmt.Sprintf("%.1f%%", s.Percentage)
				row = append([]string{row[0], colour.ColourPreviewWithText(s.RGB, label, previewWidth)}, row[1:]...)
			}
			table.AddRow(row)
		}
		b.WriteString(table.Render())
	}
	return b.String()
}
