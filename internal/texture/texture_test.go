package texture

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/bmp"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadTextureFormats(t *testing.T) {
	dir := t.TempDir()
	red := color.NRGBA{200, 10, 10, 255}

	pngPath := filepath.Join(dir, "a.png")
	writePNG(t, pngPath, solid(3, 2, color.NRGBA{1, 2, 3, 128}))
	img, err := LoadTexture(pngPath)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{1, 2, 3, 128}, img.NRGBAAt(2, 1))

	bmpPath := filepath.Join(dir, "b.BMP")
	f, err := os.Create(bmpPath)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, solid(2, 2, red)))
	f.Close()
	img, err = LoadTexture(bmpPath)
	require.NoError(t, err)
	assert.Equal(t, red, img.NRGBAAt(1, 1))

	jpgPath := filepath.Join(dir, "c.jpg")
	f, err = os.Create(jpgPath)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4)), nil))
	f.Close()
	img, err = LoadTexture(jpgPath)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.NRGBAAt(3, 3).A)

	// 1×1 uncompressed 24-bit TGA, top-left origin, one red pixel (BGR).
	tgaPath := filepath.Join(dir, "d.tga")
	header := []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 24, 0x20}
	require.NoError(t, os.WriteFile(tgaPath, append(header, 10, 10, 200), 0o644))
	img, err = LoadTexture(tgaPath)
	require.NoError(t, err)
	assert.Equal(t, red, img.NRGBAAt(0, 0))
}

func TestLoadTextureErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadTexture(filepath.Join(dir, "x.gif"))
	assert.ErrorContains(t, err, "unknown extension")

	_, err = LoadTexture(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o644))
	_, err = LoadTexture(bad)
	assert.ErrorContains(t, err, "decode")
}

func TestIndexResolve(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "Walls", "Brick.png"), solid(1, 1, color.NRGBA{A: 255}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brick.jpg"), []byte{}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte{}, 0o644))

	idx := BuildIndex(dir)
	assert.Equal(t, 2, idx.Len())

	want := filepath.Join(dir, "Walls", "Brick.png")
	for _, id := range []string{"walls/brick.png", "Walls/Brick", `walls\brick`, "brick.tga"} {
		path, ok := idx.ResolvePath(id)
		if assert.True(t, ok, id) {
			assert.Equal(t, want, path, id)
		}
	}
	// The explicit relative path still reaches the lower-priority file.
	path, ok := idx.ResolvePath("brick.jpg")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "brick.jpg"), path)

	_, ok = idx.ResolvePath("stone")
	assert.False(t, ok)

	assert.Zero(t, BuildIndex(filepath.Join(dir, "nope")).Len())
}

func TestCacheDefaultsAndWarnsOnce(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "good.png"), solid(2, 2, color.NRGBA{9, 9, 9, 255}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("junk"), 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	c := NewCache(BuildIndex(dir), zap.New(core))

	good := c.GetTextureOrDefault("good")
	assert.Equal(t, color.NRGBA{9, 9, 9, 255}, good.NRGBAAt(0, 0))
	assert.Same(t, good, c.GetTextureOrDefault("GOOD.png"))

	assert.Same(t, Default(), c.GetTextureOrDefault(""))
	assert.Equal(t, 0, logs.Len())

	for i := 0; i < 2; i++ {
		assert.Same(t, Default(), c.GetTextureOrDefault("ghost"))
		assert.Same(t, Default(), c.GetTextureOrDefault("broken"))
	}
	assert.Equal(t, 1, logs.FilterField(zap.String("texture", "ghost")).Len())
	assert.Equal(t, 1, logs.FilterField(zap.String("texture", "broken")).Len())

	def := Default()
	assert.Equal(t, image.Rect(0, 0, 1, 1), def.Bounds())
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, def.NRGBAAt(0, 0))
}

func TestCachePreload(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "sub/c.png"} {
		writePNG(t, filepath.Join(dir, name), solid(1, 1, color.NRGBA{A: 255}))
	}
	c := NewCache(BuildIndex(dir), nil)
	require.NoError(t, c.Preload(context.Background()))
	assert.Equal(t, 3, c.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fresh := NewCache(BuildIndex(dir), nil)
	assert.ErrorIs(t, fresh.Preload(ctx), context.Canceled)
}
