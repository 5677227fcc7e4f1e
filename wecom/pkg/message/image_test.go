package message

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"qywxbot/wecom/pkg/wxerr"
)

// 1x1 像素 PNG
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8/5+hHgAHggJ/PchI7wAAAABJRU5ErkJggg=="

type stubFetcher struct {
	data []byte
	err  error
	max  int64
}

func (s *stubFetcher) Fetch(_ context.Context, _ string, maxBytes int64) ([]byte, error) {
	s.max = maxBytes
	return s.data, s.err
}

func TestBuildImageBase64RoundTrip(t *testing.T) {
	p, err := newTestBuilder().BuildImage(context.Background(), ImageSource{Base64: pixelPNG})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(p.Image.Base64)
	if err != nil {
		t.Fatalf("payload base64 invalid: %v", err)
	}
	if MD5Hex(decoded) != p.Image.MD5 {
		t.Fatalf("md5 mismatch: %s vs %s", MD5Hex(decoded), p.Image.MD5)
	}
	if p.Image.Base64 != pixelPNG {
		t.Fatalf("canonical base64 should be preserved")
	}
}

func TestBuildImageExplicitMD5(t *testing.T) {
	p, err := newTestBuilder().BuildImage(context.Background(), ImageSource{Base64: pixelPNG, MD5: "precomputed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Image.MD5 != "precomputed" {
		t.Fatalf("caller digest should be used, got %s", p.Image.MD5)
	}
}

func TestBuildImageHelloDigest(t *testing.T) {
	// hello -> base64: aGVsbG8=; md5: 5d41402abc4b2a76b9719d911017c592
	p, err := newTestBuilder().BuildImage(context.Background(), ImageSource{Base64: "aGVsbG8="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Image.MD5 != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("unexpected md5: %s", p.Image.MD5)
	}
}

func TestBuildImageInvalidBase64(t *testing.T) {
	_, err := newTestBuilder().BuildImage(context.Background(), ImageSource{Base64: "%%%not-base64"})
	if !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildImageNoSource(t *testing.T) {
	_, err := newTestBuilder().BuildImage(context.Background(), ImageSource{})
	if !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildImageFromFile(t *testing.T) {
	raw, _ := base64.StdEncoding.DecodeString(pixelPNG)
	path := filepath.Join(t.TempDir(), "pixel.png")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := newTestBuilder().BuildImage(context.Background(), ImageSource{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Image.Base64 != pixelPNG || p.Image.MD5 != MD5Hex(raw) {
		t.Fatalf("unexpected image payload: %+v", p.Image)
	}
}

func TestBuildImageMissingFile(t *testing.T) {
	_, err := newTestBuilder().BuildImage(context.Background(), ImageSource{Path: filepath.Join(t.TempDir(), "nope.png")})
	if !wxerr.Is(err, wxerr.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestBuildImageTooLarge(t *testing.T) {
	limits := DefaultLimits()
	limits.ImageBytes = 16
	b := NewBuilder(limits, nil, nil)

	path := filepath.Join(t.TempDir(), "big.png")
	if err := os.WriteFile(path, bytes.Repeat([]byte{1}, 17), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := b.BuildImage(context.Background(), ImageSource{Path: path}); !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("oversized file should fail, got %v", err)
	}

	big := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 17))
	if _, err := b.BuildImage(context.Background(), ImageSource{Base64: big}); !wxerr.Is(err, wxerr.KindValidation) {
		t.Fatalf("oversized base64 should fail, got %v", err)
	}
}

func TestBuildImageFromURL(t *testing.T) {
	f := &stubFetcher{data: []byte("hello")}
	b := NewBuilder(DefaultLimits(), f, nil)

	p, err := b.BuildImage(context.Background(), ImageSource{URL: "https://example.com/a.png", Path: "/ignored"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Image.Base64 != "aGVsbG8=" {
		t.Fatalf("url source should take precedence, got %s", p.Image.Base64)
	}
	if f.max != 2*MB {
		t.Fatalf("fetcher should be bounded by image limit, got %d", f.max)
	}
}

func TestBuildImageFetchFailure(t *testing.T) {
	b := NewBuilder(DefaultLimits(), &stubFetcher{err: errors.New("dial tcp: connection refused")}, nil)
	_, err := b.BuildImage(context.Background(), ImageSource{URL: "https://example.com/a.png"})
	if !wxerr.Is(err, wxerr.KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
