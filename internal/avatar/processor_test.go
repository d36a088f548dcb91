package avatar_test

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/account-service/internal/avatar"
)

func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()
	if filepath.Ext(name) == ".png" {
		require.NoError(t, png.Encode(f, img))
	} else {
		require.NoError(t, jpeg.Encode(f, img, nil))
	}
	return p
}

func TestProcess_ResizesToFixedSquare(t *testing.T) {
	publicDir := t.TempDir()
	tmpDir := t.TempDir()
	proc := avatar.New(publicDir)

	tmpPath := writeTestImage(t, tmpDir, "upload.png", 400, 300)

	url, err := proc.Process(tmpPath, "abc123.png")
	require.NoError(t, err)
	require.Equal(t, "avatars/abc123.png", url)

	// tmp file moved, not copied
	_, err = os.Stat(tmpPath)
	require.True(t, os.IsNotExist(err))

	f, err := os.Open(filepath.Join(publicDir, "avatars", "abc123.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, avatar.Size, img.Bounds().Dx())
	require.Equal(t, avatar.Size, img.Bounds().Dy())
}

func TestProcess_JPEGStaysJPEG(t *testing.T) {
	publicDir := t.TempDir()
	proc := avatar.New(publicDir)

	tmpPath := writeTestImage(t, t.TempDir(), "photo.jpg", 100, 700)

	url, err := proc.Process(tmpPath, "photo.jpg")
	require.NoError(t, err)
	require.Equal(t, "avatars/photo.jpg", url)

	f, err := os.Open(filepath.Join(publicDir, "avatars", "photo.jpg"))
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	require.Equal(t, avatar.Size, img.Bounds().Dx())
	require.Equal(t, avatar.Size, img.Bounds().Dy())
}

func TestProcess_RejectsGarbage(t *testing.T) {
	proc := avatar.New(t.TempDir())

	tmpDir := t.TempDir()
	p := filepath.Join(tmpDir, "not-an-image.png")
	require.NoError(t, os.WriteFile(p, []byte("definitely not pixels"), 0o644))

	_, err := proc.Process(p, "x.png")
	require.Error(t, err)
}

func TestAllowedExt(t *testing.T) {
	require.True(t, avatar.AllowedExt("a.jpg"))
	require.True(t, avatar.AllowedExt("a.JPEG"))
	require.True(t, avatar.AllowedExt("a.png"))
	require.True(t, avatar.AllowedExt("a.webp"))
	require.False(t, avatar.AllowedExt("a.gif"))
	require.False(t, avatar.AllowedExt("a"))
}
