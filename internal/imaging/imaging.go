// Package imaging shrinks uploaded images into size-bounded JPEG data URLs
// suitable for storing inside a document.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxUploadSize is the largest accepted source image.
const MaxUploadSize = 5 << 20

var (
	ErrDecode   = errors.New("cannot decode image")
	ErrNotImage = errors.New("file is not an image")
	ErrTooBig   = errors.New("image exceeds 5 MiB")
	ErrOptions  = errors.New("invalid compression options")
)

// Options controls Compress. Quality is the lossy encoder quality in 0..1.
// Skip returns the source unchanged as a data URL.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
	Skip      bool
}

// Presets for the three upload slots.
var (
	// Logo keeps the original bytes so transparency and sharp edges survive.
	Logo    = Options{MaxWidth: 2000, MaxHeight: 2000, Quality: 1.0, Skip: true}
	Product = Options{MaxWidth: 800, MaxHeight: 600, Quality: 0.8}
	Hero    = Options{MaxWidth: 1600, MaxHeight: 1200, Quality: 0.75}
)

// Compress decodes data, scales it down uniformly to fit within
// MaxWidth x MaxHeight (never up), and re-encodes it as a JPEG data URL.
func Compress(data []byte, opts Options) (string, error) {
	if opts.Skip {
		return DataURL(data), nil
	}
	if opts.MaxWidth <= 0 || opts.MaxHeight <= 0 {
		return "", fmt.Errorf("%w: bounds %dx%d", ErrOptions, opts.MaxWidth, opts.MaxHeight)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), opts.MaxWidth, opts.MaxHeight)
	if w == 0 || h == 0 {
		return "", fmt.Errorf("%w: empty image", ErrDecode)
	}

	// JPEG has no alpha; flatten onto white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality(opts.Quality)}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// CompressOrOriginal is Compress with a fallback: when the image cannot be
// processed the original bytes are returned as a data URL. The second
// result reports whether compression happened.
func CompressOrOriginal(data []byte, opts Options) (string, bool) {
	out, err := Compress(data, opts)
	if err != nil {
		return DataURL(data), false
	}
	return out, !opts.Skip
}

// FitWithin returns w x h scaled by min(maxW/w, maxH/h) when the image
// exceeds either bound, and unchanged otherwise. Results are rounded and at
// least 1.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * ratio))
	nh := int(math.Round(float64(h) * ratio))
	return max(nw, 1), max(nh, 1)
}

func jpegQuality(q float64) int {
	n := int(math.Round(q * 100))
	return min(max(n, 1), 100)
}

// DataURL encodes data as a data URL with its detected MIME type.
func DataURL(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ValidateUpload rejects files that are not images or are larger than
// MaxUploadSize.
func ValidateUpload(data []byte) error {
	if len(data) > MaxUploadSize {
		return fmt.Errorf("%w: %d bytes", ErrTooBig, len(data))
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}
	return nil
}

// DecodeDataURL returns the bytes and MIME type of a base64 data URL.
func DecodeDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("data url is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data url: %w", err)
	}
	return data, strings.TrimSuffix(meta, ";base64"), nil
}
