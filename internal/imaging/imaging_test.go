package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x += 7 {
			img.Set(x, y, color.RGBA{R: 0xEE, G: 0x31, B: 0x24, A: 0xFF})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, wantW, wantH int
	}{
		{800, 600, 800, 600},
		{2048, 2048, 2048, 2048},
		{4096, 2048, 2048, 1024},
		{1000, 3000, 682, 2048},
		{3000, 3000, 2048, 2048},
		{10000, 1, 2048, 1},
	}
	for _, tt := range tests {
		w, h := Fit(tt.w, tt.h, MaxDimension)
		assert.Equal(t, tt.wantW, w, "width for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "height for %dx%d", tt.w, tt.h)
	}
}

func TestProcessDownscalesLargePNG(t *testing.T) {
	raw := encodePNG(t, solid(3000, 1500))

	in, err := Process(bytes.NewReader(raw), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", in.MIMEType)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(in.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 2048, cfg.Width)
	assert.Equal(t, 1024, cfg.Height)
}

func TestProcessKeepsSmallImagesAsIs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(64, 32), nil))
	raw := buf.Bytes()

	in, err := Process(bytes.NewReader(raw), "")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", in.MIMEType)
	assert.Equal(t, raw, in.Data)
}

func TestProcessReencodesLargeJPEGAsJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(2100, 100), nil))

	in, err := Process(&buf, "image/jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", in.MIMEType)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(in.Data))
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.Width)
}

func TestProcessConvertsGIFToPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, solid(20, 20), nil))

	in, err := Process(&buf, "image/gif")
	require.NoError(t, err)
	assert.Equal(t, "image/png", in.MIMEType)
	_, err = png.DecodeConfig(bytes.NewReader(in.Data))
	assert.NoError(t, err)
}

func TestProcessRejectsGarbage(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("not an image")), "image/png")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, solid(10, 10)), 0644))

	in, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", in.MIMEType)

	_, err = Open(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestDataURI(t *testing.T) {
	raw := encodePNG(t, solid(4, 4))
	uri := DataURI("image/png", raw)
	assert.Contains(t, uri, "data:image/png;base64,")

	in, err := ParseDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", in.MIMEType)
	assert.Equal(t, raw, in.Data)

	in, err = FromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, raw, in.Data)
}

func TestParseDataURIErrors(t *testing.T) {
	for _, uri := range []string{
		"image/png;base64,AAAA",
		"data:image/png;base64",
		"data:image/png,plain",
		"data:image/png;base64,***",
	} {
		_, err := ParseDataURI(uri)
		assert.Error(t, err, uri)
	}
}

// withDimensions rewrites the IHDR of a PNG to declare w x h.
func withDimensions(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	require.Equal(t, "IHDR", string(data[12:16]))
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestProcessRejectsOversizedHeader(t *testing.T) {
	data := withDimensions(t, encodePNG(t, solid(1, 1)), 20000, 20000)
	require.Less(t, len(data), 1024)

	_, err := Process(bytes.NewReader(data), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")

	_, err = FromDataURI(DataURI("image/png", data))
	assert.Error(t, err)
}
