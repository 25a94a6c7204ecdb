package imagegen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.CacheDir = t.TempDir()
	return opts
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", opts.Model, DefaultModel)
	}
	if opts.Backend != BackendGeminiAPI {
		t.Errorf("Backend = %q, want %q", opts.Backend, BackendGeminiAPI)
	}
	if !opts.CacheEnabled {
		t.Error("expected caching to be enabled by default")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{name: "vertex", modify: func(o *Options) { o.Backend = BackendVertexAI }},
		{name: "unknown backend", modify: func(o *Options) { o.Backend = "openai" }, wantErr: true},
		{name: "empty model", modify: func(o *Options) { o.Model = "" }, wantErr: true},
		{name: "bad aspect ratio", modify: func(o *Options) { o.AspectRatio = "2:1" }, wantErr: true},
		{name: "cache without dir", modify: func(o *Options) { o.CacheDir = "" }, wantErr: true},
		{name: "no cache without dir", modify: func(o *Options) { o.CacheDir = ""; o.CacheEnabled = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			tt.modify(&opts)
			if err := opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestImagePath(t *testing.T) {
	opts := testOptions(t)
	g, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, err := g.ImagePath("a misty forest")
	if err != nil {
		t.Fatalf("ImagePath() error = %v", err)
	}
	again, _ := g.ImagePath("a misty forest")
	other, _ := g.ImagePath("a neon city")

	if first != again {
		t.Errorf("ImagePath() not deterministic: %q != %q", first, again)
	}
	if first == other {
		t.Error("different prompts should map to different files")
	}
	if filepath.Dir(first) != opts.CacheDir || !strings.HasPrefix(filepath.Base(first), "genai-") {
		t.Errorf("ImagePath() = %q, want genai-*.png in %q", first, opts.CacheDir)
	}

	opts.CacheFilename = "custom.png"
	g, _ = New(opts, nil)
	if got, _ := g.ImagePath("anything"); got != filepath.Join(opts.CacheDir, "custom.png") {
		t.Errorf("ImagePath() with custom filename = %q", got)
	}

	opts.CacheEnabled = false
	g, _ = New(opts, nil)
	tmp, err := g.ImagePath("anything")
	if err != nil {
		t.Fatalf("ImagePath() without cache error = %v", err)
	}
	defer os.Remove(tmp)
	if filepath.Dir(tmp) == opts.CacheDir {
		t.Errorf("ImagePath() without cache = %q, want a temp file", tmp)
	}
}

func TestGenerateUsesCache(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	g, err := New(testOptions(t), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, _ := g.ImagePath("cached prompt")
	if err := os.WriteFile(path, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := g.Generate(context.Background(), "cached prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != path {
		t.Errorf("Generate() = %q, want cached %q", got, path)
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	g, err := New(testOptions(t), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := g.Generate(context.Background(), ""); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("Generate(\"\") error = %v, want ErrEmptyPrompt", err)
	}
	if _, err := g.Generate(context.Background(), "uncached prompt"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Generate() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestGenerateWithoutCacheReleasesTempFile(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	opts := testOptions(t)
	opts.CacheEnabled = false
	g, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	g.create = func(_ context.Context, _, path string) error {
		return os.WriteFile(path, []byte("png"), 0o600)
	}

	path, err := g.Generate(context.Background(), "sunset")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if filepath.Dir(path) != os.TempDir() {
		t.Errorf("Generate() = %q, want a file in %s", path, os.TempDir())
	}
	if !fileExists(path) {
		t.Fatalf("Generate() did not leave %q to read", path)
	}

	if err := g.Release(path); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if fileExists(path) {
		t.Errorf("Release() left %q behind", path)
	}
	if err := g.Release(path); err != nil {
		t.Errorf("second Release() error = %v, want nil", err)
	}
}

func TestGenerateFailureRemovesTempFile(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	opts := testOptions(t)
	opts.CacheEnabled = false
	g, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := g.Generate(context.Background(), "sunset"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Generate() error = %v, want ErrMissingAPIKey", err)
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir has %d leftover files, want 0", len(entries))
	}
}

func TestReleaseKeepsCachedImage(t *testing.T) {
	g, err := New(testOptions(t), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	path, _ := g.ImagePath("kept")
	if err := os.WriteFile(path, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := g.Release(path); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if !fileExists(path) {
		t.Error("Release() removed a cached image")
	}
}

func TestPromptHelpers(t *testing.T) {
	g, _ := New(testOptions(t), nil)
	if got := g.enhancePrompt("sunset"); !strings.HasPrefix(got, "sunset, ") || len(got) <= len("sunset") {
		t.Errorf("enhancePrompt() = %q", got)
	}

	opts := testOptions(t)
	opts.NoExtendedPrompt = true
	g, _ = New(opts, nil)
	if got := g.enhancePrompt("sunset"); got != "sunset" {
		t.Errorf("enhancePrompt() with NoExtendedPrompt = %q, want %q", got, "sunset")
	}

	if got := buildNegativePrompt(""); got != defaultNegativePrompt {
		t.Errorf("buildNegativePrompt(\"\") = %q", got)
	}
	if got := buildNegativePrompt("people"); !strings.HasPrefix(got, "people, ") {
		t.Errorf("buildNegativePrompt(people) = %q", got)
	}

	if !isGeminiModel(DefaultModel) {
		t.Errorf("isGeminiModel(%q) = false", DefaultModel)
	}
	if isGeminiModel("imagen-4.0-generate-001") {
		t.Error("isGeminiModel(imagen) = true")
	}
}
