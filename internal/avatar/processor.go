// Package avatar normalizes uploaded profile images: decode, honor EXIF
// orientation, resize to a fixed square, move into public storage.
package avatar

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Size is the fixed avatar edge; aspect ratio is not preserved.
const Size = 250

type Processor struct {
	publicDir string
}

func New(publicDir string) *Processor {
	return &Processor{publicDir: publicDir}
}

// Dir is the permanent avatars directory under the public root.
func (p *Processor) Dir() string { return filepath.Join(p.publicDir, "avatars") }

// Process resizes the uploaded file in place, then moves it from tmpPath into
// the public avatars directory under filename. Returns the relative URL
// ("avatars/<filename>"). tmpPath must live on the same filesystem as the
// public dir, the final step is a rename.
func (p *Processor) Process(tmpPath, filename string) (string, error) {
	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", err
	}

	img, format, err := decode(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	img = orient(img, orientation(bytes.NewReader(raw)))

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var out bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&out, dst)
	default:
		// webp input is re-encoded as jpeg, there is no webp encoder
		err = jpeg.Encode(&out, dst, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(tmpPath, out.Bytes(), 0o644); err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.Dir(), 0o755); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, filepath.Join(p.Dir(), filename)); err != nil {
		return "", err
	}
	return path.Join("avatars", filename), nil
}

func decode(r *bytes.Reader) (image.Image, string, error) {
	if img, err := jpeg.Decode(r); err == nil {
		return img, "jpeg", nil
	}
	r.Seek(0, io.SeekStart)
	if img, err := png.Decode(r); err == nil {
		return img, "png", nil
	}
	r.Seek(0, io.SeekStart)
	if img, err := webp.Decode(r); err == nil {
		return img, "webp", nil
	}
	return nil, "", errors.New("unsupported image format (jpeg/png/webp)")
}

// AllowedExt reports whether a filename extension is accepted for upload.
func AllowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

func orientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	ori, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return ori
}

// orient applies the EXIF orientation tag (1..8) by remapping pixels.
func orient(src image.Image, ori int) image.Image {
	if ori <= 1 || ori > 8 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	swapped := ori >= 5 // 5..8 transpose the axes
	dw, dh := w, h
	if swapped {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var tx, ty int
			switch ori {
			case 2: // flip horizontal
				tx, ty = w-1-x, y
			case 3: // rotate 180
				tx, ty = w-1-x, h-1-y
			case 4: // flip vertical
				tx, ty = x, h-1-y
			case 5: // transpose
				tx, ty = y, x
			case 6: // rotate 90 CW
				tx, ty = h-1-y, x
			case 7: // transverse
				tx, ty = h-1-y, w-1-x
			case 8: // rotate 90 CCW
				tx, ty = y, w-1-x
			}
			dst.Set(tx, ty, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
