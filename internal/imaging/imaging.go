// Package imaging prepares operator-supplied reference images (logo and
// background) for the image model.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"

	// Decoders for image.Decode.
	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension bounds the longer side of a reference image.
const MaxDimension = 2048

// maxInput bounds how much of a reader Process will consume.
const maxInput = 32 << 20

// MaxPixels bounds the decoded size of an input image. The header is checked
// before any pixel buffer is allocated.
const MaxPixels = 8192 * 8192

// Inline is an image ready to be attached to a model request.
type Inline struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (in Inline) Base64() string {
	return base64.StdEncoding.EncodeToString(in.Data)
}

// DataURI returns the image as a data URI.
func (in Inline) DataURI() string {
	return DataURI(in.MIMEType, in.Data)
}

// passthrough lists formats the model accepts as-is when no resize is needed.
var passthrough = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// Process decodes an image, downscales it so neither side exceeds
// MaxDimension, and returns it ready to attach. mimeType may be empty, in
// which case it is sniffed. JPEG input stays JPEG; anything that must be
// re-encoded otherwise becomes PNG.
func Process(r io.Reader, mimeType string) (Inline, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxInput+1))
	if err != nil {
		return Inline{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(raw) > maxInput {
		return Inline{}, fmt.Errorf("invalid image: larger than %d bytes", maxInput)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	mimeType = normalizeMIME(mimeType)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Inline{}, fmt.Errorf("invalid image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Inline{}, fmt.Errorf("invalid image: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Inline{}, fmt.Errorf("invalid image: %w", err)
	}

	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), MaxDimension)
	scaled := w != b.Dx() || h != b.Dy()

	if !scaled && passthrough[mimeType] && "image/"+format == mimeType {
		return Inline{MIMEType: mimeType, Data: raw}, nil
	}

	if scaled {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
			return Inline{}, fmt.Errorf("failed to encode image: %w", err)
		}
		return Inline{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
	}
	if err := png.Encode(&buf, img); err != nil {
		return Inline{}, fmt.Errorf("failed to encode image: %w", err)
	}
	return Inline{MIMEType: "image/png", Data: buf.Bytes()}, nil
}

// Open reads and processes the image file at path.
func Open(path string) (Inline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Inline{}, err
	}
	defer f.Close()
	return Process(f, "")
}

// FromDataURI decodes a data URI and processes the image it carries.
func FromDataURI(uri string) (Inline, error) {
	in, err := ParseDataURI(uri)
	if err != nil {
		return Inline{}, err
	}
	return Process(bytes.NewReader(in.Data), in.MIMEType)
}

// Fit scales (w, h) so the longer side is at most limit, keeping the aspect
// ratio. Sizes already within bounds are returned unchanged.
func Fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w > h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// DataURI formats data as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes a base64 data URI.
func ParseDataURI(uri string) (Inline, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Inline{}, fmt.Errorf("invalid data URI: missing data: prefix")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Inline{}, fmt.Errorf("invalid data URI: missing payload")
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Inline{}, fmt.Errorf("invalid data URI: only base64 payloads are supported")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Inline{}, fmt.Errorf("invalid data URI: %w", err)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return Inline{MIMEType: normalizeMIME(mimeType), Data: data}, nil
}

func normalizeMIME(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.Index(m, ";"); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if m == "image/jpg" {
		return "image/jpeg"
	}
	return m
}
