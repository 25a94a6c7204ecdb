package image

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	httputil "github.com/jmylchreest/swatch/internal/util/http"
)

// encodePNG returns a PNG of the given size filled with c.
func encodePNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, width, height int, c color.Color) {
	t.Helper()
	if err := os.WriteFile(path, encodePNG(t, width, height, c), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestFileLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	writePNG(t, path, 6, 4, color.NRGBA{R: 255, A: 255})

	img, err := NewFileLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Errorf("Load() bounds = %v, want 6x4", b)
	}

	notImage := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(notImage, []byte("not a png"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "missing.png")},
		{name: "directory", path: dir},
		{name: "undecodable", path: notImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFileLoader().Load(context.Background(), tt.path); err == nil {
				t.Errorf("Load(%q) expected error", tt.path)
			}
		})
	}
}

func TestSmartLoaderLoadURL(t *testing.T) {
	data := encodePNG(t, 3, 3, color.NRGBA{B: 255, A: 255})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wall.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	loader := NewSmartLoader(httputil.FetchOptions{})
	img, err := loader.Load(context.Background(), server.URL+"/wall.png")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 3 {
		t.Errorf("Load() bounds = %v, want 3x3", b)
	}

	if _, err := loader.Load(context.Background(), server.URL+"/missing.png"); err == nil {
		t.Error("Load() of missing URL expected error")
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/a.png": true,
		"http://example.com/a.png":  true,
		"ftp://example.com/a.png":   false,
		"/tmp/a.png":                false,
		"":                          false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestScanDirectoryForImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 1, 1, color.Black)
	writePNG(t, filepath.Join(dir, "a.PNG"), 1, 1, color.White)
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ScanDirectoryForImages(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryForImages() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.PNG"), filepath.Join(dir, "b.png")}
	if !slices.Equal(got, want) {
		t.Errorf("ScanDirectoryForImages() = %v, want %v", got, want)
	}

	if _, err := ScanDirectoryForImages(t.TempDir()); err == nil {
		t.Error("ScanDirectoryForImages() of empty directory expected error")
	}
}

func TestResolveSources(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "single.png")
	writePNG(t, single, 2, 2, color.White)

	sub := filepath.Join(dir, "walls")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(sub, "one.png"), 1, 1, color.Black)
	writePNG(t, filepath.Join(sub, "two.png"), 1, 1, color.Black)

	got, err := ResolveSources([]string{"https://example.com/x.jpg", sub, single})
	if err != nil {
		t.Fatalf("ResolveSources() error = %v", err)
	}
	want := []string{
		"https://example.com/x.jpg",
		filepath.Join(sub, "one.png"),
		filepath.Join(sub, "two.png"),
		single,
	}
	if !slices.Equal(got, want) {
		t.Errorf("ResolveSources() = %v, want %v", got, want)
	}

	if _, err := ResolveSources([]string{filepath.Join(dir, "nope.png")}); err == nil {
		t.Error("ResolveSources() with missing file expected error")
	}
}
