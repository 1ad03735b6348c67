package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding processed image: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestProcessKeepsSmallImages(t *testing.T) {
	result, err := Process(bytes.NewReader(makePNG(t, 200, 300)))
	if err != nil {
		t.Fatalf("processing: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", result.MIME)
	}

	w, h := decodeSize(t, result.Data)
	if w != 200 || h != 300 {
		t.Errorf("size = %dx%d, want 200x300 unchanged", w, h)
	}
}

func TestProcessDownscalesWide(t *testing.T) {
	result, err := Process(bytes.NewReader(makeJPEG(t, 1200, 600)))
	if err != nil {
		t.Fatalf("processing: %v", err)
	}

	w, h := decodeSize(t, result.Data)
	if w != MaxDimension {
		t.Errorf("width = %d, want %d", w, MaxDimension)
	}
	if h != MaxDimension/2 {
		t.Errorf("height = %d, want aspect preserved (%d)", h, MaxDimension/2)
	}
}

func TestProcessDownscalesTall(t *testing.T) {
	result, err := Process(bytes.NewReader(makePNG(t, 400, 1600)))
	if err != nil {
		t.Fatalf("processing: %v", err)
	}

	w, h := decodeSize(t, result.Data)
	if h != MaxDimension {
		t.Errorf("height = %d, want %d", h, MaxDimension)
	}
	if w != MaxDimension/4 {
		t.Errorf("width = %d, want aspect preserved (%d)", w, MaxDimension/4)
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	_, err := Process(strings.NewReader("<html>not an image</html>"))
	if err == nil {
		t.Error("HTML accepted as image")
	}

	_, err = Process(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03}))
	if err == nil {
		t.Error("binary junk accepted as image")
	}
}
