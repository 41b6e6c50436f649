package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func writeCaptcha(t *testing.T, dir, text string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 12*len(text)+8, 22))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for i, r := range text {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.Black),
			Face: basicfont.Face7x13,
			Dot:  fixed.Point26_6{X: fixed.I(4 + 12*i), Y: fixed.I(16)},
		}
		d.DrawString(string(r))
	}

	path := filepath.Join(dir, text+".png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestRun_Version(t *testing.T) {
	for _, arg := range []string{"--version", "-v", "version"} {
		var stdout, stderr bytes.Buffer
		assert.Zero(t, run(context.Background(), []string{arg}, nil, &stdout, &stderr), arg)
		assert.True(t, strings.HasPrefix(stdout.String(), "numverify dev"), "%s: got %q", arg, stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Zero(t, run(context.Background(), []string{"--help"}, nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "numverify recognize")
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"train"}, nil, &stdout, &stderr))
}

func TestRun_Recognize(t *testing.T) {
	dir := t.TempDir()
	first := writeCaptcha(t, dir, "0417")
	second := writeCaptcha(t, dir, "9382")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"recognize", first, second}, nil, &stdout, &stderr)
	require.Zero(t, code, stderr.String())
	assert.Equal(t, first+"\t0417\n"+second+"\t9382\n", stdout.String())
}

func TestRun_RecognizeDump(t *testing.T) {
	dir := t.TempDir()
	path := writeCaptcha(t, dir, "25")
	dump := filepath.Join(dir, "glyphs")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"recognize", "-dump", dump, path}, nil, &stdout, &stderr)
	require.Zero(t, code, stderr.String())
	assert.Equal(t, path+"\t25\n", stdout.String())

	// One file per recognized glyph, named after its symbol.
	entries, err := os.ReadDir(dump)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"25_0_2.png", "25_1_5.png"}, names)
}

func TestRun_RecognizeErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeCaptcha(t, dir, "7")

	t.Run("no images", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 2, run(context.Background(), []string{"recognize"}, nil, &stdout, &stderr))
	})

	t.Run("missing file", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), []string{"recognize", filepath.Join(dir, "missing.png"), path}, nil, &stdout, &stderr)
		assert.Equal(t, 1, code)
		assert.Equal(t, path+"\t7\n", stdout.String())
		assert.Contains(t, stderr.String(), "missing.png", "stderr should name the missing file")
	})

	t.Run("bad config", func(t *testing.T) {
		cfg := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("colour: red\n"), 0o644))
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run(context.Background(), []string{"recognize", "-config", cfg, path}, nil, &stdout, &stderr))
	})
}

func TestRun_Serve(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n")
	var stdout, stderr bytes.Buffer
	require.Zero(t, run(context.Background(), nil, in, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), `"id":7`)
}
