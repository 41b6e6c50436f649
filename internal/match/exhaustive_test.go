package match

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

func row(t *testing.T, values ...byte) *imaging.Buffer {
	t.Helper()
	b, err := imaging.New(len(values), 1, imaging.Indexed8)
	require.NoError(t, err)
	copy(b.Row(0), values)
	return b
}

func random(t *testing.T, w, h int, l imaging.Layout, seed int64) *imaging.Buffer {
	t.Helper()
	b, err := imaging.New(w, h, l)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for y := 0; y < h; y++ {
		rng.Read(b.Row(y))
	}
	return b
}

func TestNewExhaustive_Clamps(t *testing.T) {
	assert.Equal(t, float32(1), NewExhaustive(1.5).Threshold)
	assert.Equal(t, float32(0), NewExhaustive(-0.2).Threshold)
	assert.Equal(t, DefaultThreshold, NewExhaustive(DefaultThreshold).Threshold)
}

func TestMatch_Identical(t *testing.T) {
	for _, l := range []imaging.Layout{imaging.Indexed8, imaging.RGB24} {
		t.Run(l.String(), func(t *testing.T) {
			img := random(t, 7, 5, l, 1)
			matches, err := NewExhaustive(DefaultThreshold).Match(img, img.Clone())
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, imaging.Rect{Width: 7, Height: 5}, matches[0].Rect)
			assert.Equal(t, float32(1), matches[0].Similarity)
		})
	}
}

func TestMatch_FindsEmbeddedTemplate(t *testing.T) {
	img := random(t, 30, 20, imaging.Indexed8, 2)
	tpl, err := img.Crop(imaging.Rect{X: 11, Y: 6, Width: 6, Height: 5})
	require.NoError(t, err)

	matches, err := NewExhaustive(0.99).Match(img, tpl)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, imaging.Rect{X: 11, Y: 6, Width: 6, Height: 5}, matches[0].Rect)
	assert.Equal(t, float32(1), matches[0].Similarity)
}

func TestMatch_Suppression(t *testing.T) {
	tpl := row(t, 255)

	t.Run("weaker neighbor removed", func(t *testing.T) {
		// 229/255 is about 0.9: suppressed next to 1.0, kept when far away.
		img := row(t, 255, 229, 0, 0, 0, 229, 0, 0)
		matches, err := NewExhaustive(0.85).Match(img, tpl)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, 0, matches[0].Rect.X)
		assert.Equal(t, float32(1), matches[0].Similarity)
		assert.Equal(t, 5, matches[1].Rect.X)
		assert.InDelta(t, 229.0/255, matches[1].Similarity, 1e-6)
	})

	t.Run("equal neighbors kept in order", func(t *testing.T) {
		img := row(t, 0, 255, 255, 0)
		matches, err := NewExhaustive(0.9).Match(img, tpl)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, 1, matches[0].Rect.X)
		assert.Equal(t, 2, matches[1].Rect.X)
	})

	t.Run("two dimensional", func(t *testing.T) {
		img, err := imaging.New(5, 5, imaging.Indexed8)
		require.NoError(t, err)
		img.Row(0)[0] = 255
		img.Row(2)[2] = 240
		img.Row(4)[4] = 255
		matches, err := NewExhaustive(0.9).Match(img, tpl)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, imaging.Rect{X: 0, Y: 0, Width: 1, Height: 1}, matches[0].Rect)
		assert.Equal(t, imaging.Rect{X: 4, Y: 4, Width: 1, Height: 1}, matches[1].Rect)
	})
}

func TestMatchZone(t *testing.T) {
	tpl := row(t, 255)
	img := row(t, 255, 0, 0, 0, 0, 250, 0, 0)

	matches, err := NewExhaustive(0.9).MatchZone(img, tpl, imaging.Rect{X: 3, Y: 0, Width: 10, Height: 1})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 5, matches[0].Rect.X)
}

func TestMatch_Errors(t *testing.T) {
	e := NewExhaustive(DefaultThreshold)
	gray := random(t, 8, 8, imaging.Indexed8, 3)
	rgb := random(t, 4, 4, imaging.RGB24, 4)
	wide, err := imaging.New(8, 8, imaging.Gray16)
	require.NoError(t, err)

	_, err = e.Match(gray, rgb)
	assert.ErrorIs(t, err, imaging.ErrUnsupportedLayout)

	_, err = e.Match(wide, wide)
	assert.ErrorIs(t, err, imaging.ErrUnsupportedLayout)

	big := random(t, 9, 2, imaging.Indexed8, 5)
	_, err = e.Match(gray, big)
	assert.ErrorIs(t, err, imaging.ErrIncompatibleBuffer)

	small := random(t, 3, 3, imaging.Indexed8, 6)
	_, err = e.MatchZone(gray, small, imaging.Rect{X: 6, Y: 6, Width: 5, Height: 5})
	assert.ErrorIs(t, err, imaging.ErrIncompatibleBuffer)
}

func TestMatch_ThresholdBoundary(t *testing.T) {
	tpl := row(t, 0)

	t.Run("just below", func(t *testing.T) {
		// 229/255 is about 0.898.
		matches, err := NewExhaustive(0.9).Match(row(t, 26), tpl)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("just above", func(t *testing.T) {
		matches, err := NewExhaustive(0.9).Match(row(t, 25), tpl)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.InDelta(t, 230.0/255, matches[0].Similarity, 1e-6)
	})

	t.Run("exact threshold on a large template", func(t *testing.T) {
		blank, err := imaging.New(20, 20, imaging.Indexed8)
		require.NoError(t, err)
		img := blank.Clone()
		// 40 white pixels give a difference of 10200, similarity 91800/102000.
		for i := 0; i < 40; i++ {
			img.Row(i / 20)[i%20] = 255
		}

		matches, err := NewExhaustive(0.9).Match(img, blank)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.GreaterOrEqual(t, matches[0].Similarity, float32(0.9))

		img.Row(5)[5] = 1
		matches, err = NewExhaustive(0.9).Match(img, blank)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("reported similarity never below threshold", func(t *testing.T) {
		img := random(t, 40, 30, imaging.Indexed8, 7)
		tpl, err := img.Crop(imaging.Rect{X: 3, Y: 4, Width: 4, Height: 4})
		require.NoError(t, err)
		for _, th := range []float32{0.5, 0.6, 0.7, 0.75} {
			matches, err := NewExhaustive(th).Match(img, tpl)
			require.NoError(t, err)
			for _, m := range matches {
				assert.GreaterOrEqual(t, m.Similarity, th)
			}
		}
	})
}

func TestMatch_ZeroSimilarityAtZeroThreshold(t *testing.T) {
	black, err := imaging.New(3, 3, imaging.Indexed8)
	require.NoError(t, err)
	white, err := imaging.New(3, 3, imaging.Indexed8)
	require.NoError(t, err)
	white.Fill(imaging.White)

	matches, err := NewExhaustive(0).Match(black, white)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, imaging.Rect{Width: 3, Height: 3}, matches[0].Rect)
	assert.Equal(t, float32(0), matches[0].Similarity)

	// A zero candidate does not hide a stronger neighbor.
	img := row(t, 0, 255, 0)
	matches, err = NewExhaustive(0).Match(img, row(t, 255))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Rect.X)
}
