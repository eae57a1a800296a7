package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"testing"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/config"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "files"))
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()
	key := ObjectKey("3f0c")

	if err := store.Put(ctx, key, "text/plain", []byte("floor plan")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(data) != "floor plan" {
		t.Fatalf("data = %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Open() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() of missing object error = %v", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	for _, key := range []string{"../escape", "files/../../etc/passwd", "/abs", "", "files//x"} {
		if err := store.Put(context.Background(), key, "text/plain", []byte("x")); err == nil {
			t.Errorf("Put(%q) should fail", key)
		}
	}
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Driver: "local", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New(local) error = %v", err)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("store = %T, want *LocalStore", store)
	}
	if _, err := New(context.Background(), config.StorageConfig{Driver: "ftp"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestInspectImage(t *testing.T) {
	data := encodePNG(t, 640, 480)

	contentType, ok := SniffContentType(data)
	if !ok || contentType != "image/png" {
		t.Fatalf("SniffContentType() = %q, %v", contentType, ok)
	}

	info, err := InspectImage(data)
	if err != nil {
		t.Fatalf("InspectImage() error = %v", err)
	}
	if info.Width != 640 || info.Height != 480 || info.Format != "png" {
		t.Fatalf("info = %+v", info)
	}

	if _, err := InspectImage([]byte("not an image")); err == nil {
		t.Fatal("expected error for non-image data")
	}
	if _, ok := SniffContentType([]byte("%PDF-1.4")); ok {
		t.Fatal("pdf should not be an accepted upload type")
	}
}

// withHeaderSize rewrites the IHDR dimensions of a PNG without touching pixels.
func withHeaderSize(data []byte, width, height uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestImagePixelLimit(t *testing.T) {
	huge := withHeaderSize(encodePNG(t, 1, 1), 100_000, 100_000)

	if _, err := InspectImage(huge); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("InspectImage() error = %v, want ErrImageTooLarge", err)
	}
	if _, err := DecodeImage(bytes.NewReader(huge)); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("DecodeImage() error = %v, want ErrImageTooLarge", err)
	}

	img, err := DecodeImage(bytes.NewReader(encodePNG(t, 8, 4)))
	if err != nil {
		t.Fatalf("DecodeImage() error = %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}
