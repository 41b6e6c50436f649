package blob

import (
	"fmt"
	"math"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// Centroid is the center of gravity of a blob.
type Centroid struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Blob summarizes one connected component.
type Blob struct {
	// ID is the label of the blob in its LabelMap, 1-based.
	ID int `json:"id"`

	// Rect is the bounding box of the blob's pixels.
	Rect imaging.Rect `json:"rect"`

	// Area is the number of pixels carrying the blob's label.
	Area int `json:"area"`

	// Fullness is Area divided by the bounding box area.
	Fullness float64 `json:"fullness"`

	Centroid    Centroid    `json:"centroid"`
	ColorMean   imaging.RGB `json:"color_mean"`
	ColorStdDev imaging.RGB `json:"color_stddev"`

	// Image holds the blob's pixels after Counter.ExtractImage or
	// Counter.Objects, nil otherwise.
	Image *imaging.Buffer `json:"-"`

	// OriginalSize reports whether Image has the size of the source image
	// rather than of Rect.
	OriginalSize bool `json:"original_size,omitempty"`
}

type accumulator struct {
	x1, y1, x2, y2 int
	area           int
	xc, yc         int64
	sum, sumSq     [3]int64 // R, G, B
}

// Collect computes the statistics of every blob in m from the pixels of buf.
// The returned slice is ordered by id, so blobs[i].ID == i+1.
//
// The color mean is the integer mean of each channel. The standard deviation
// is sqrt(E[X²] - E[X]²) with E[X²] taken as an integer mean, truncated to a
// byte. Indexed8 images report their single sample in all three channels.
//
// # Errors
//
//   - imaging.ErrUnsupportedLayout for layouts Label does not accept
//   - imaging.ErrIncompatibleBuffer if buf and m differ in size
func Collect(buf *imaging.Buffer, m *LabelMap) ([]Blob, error) {
	if !accepts(buf.Layout()) {
		return nil, fmt.Errorf("%w: cannot collect blobs from %v", imaging.ErrUnsupportedLayout, buf.Layout())
	}
	if buf.Width() != m.Width || buf.Height() != m.Height {
		return nil, fmt.Errorf("%w: %dx%d image for %dx%d label map",
			imaging.ErrIncompatibleBuffer, buf.Width(), buf.Height(), m.Width, m.Height)
	}

	acc := make([]accumulator, m.Count+1)
	for i := range acc {
		acc[i].x1, acc[i].y1 = m.Width, m.Height
	}

	bpp := buf.Layout().BytesPerPixel()
	for y := 0; y < m.Height; y++ {
		row := buf.Row(y)
		for x := 0; x < m.Width; x++ {
			label := m.Labels[y*m.Width+x]
			if label == 0 {
				continue
			}
			a := &acc[label]
			a.x1, a.x2 = min(a.x1, x), max(a.x2, x)
			a.y1, a.y2 = min(a.y1, y), max(a.y2, y)
			a.area++
			a.xc += int64(x)
			a.yc += int64(y)

			var rgb [3]int64
			if bpp == 1 {
				v := int64(row[x])
				rgb = [3]int64{v, v, v}
			} else {
				px := row[x*bpp:]
				rgb = [3]int64{int64(px[imaging.ChannelR]), int64(px[imaging.ChannelG]), int64(px[imaging.ChannelB])}
			}
			for c, v := range rgb {
				a.sum[c] += v
				a.sumSq[c] += v * v
			}
		}
	}

	blobs := make([]Blob, 0, m.Count)
	for id := 1; id <= m.Count; id++ {
		a := acc[id]
		w, h := a.x2-a.x1+1, a.y2-a.y1+1
		area := int64(a.area)

		var mean, std [3]uint8
		for c := 0; c < 3; c++ {
			mean[c] = uint8(a.sum[c] / area)
			variance := a.sumSq[c]/area - int64(mean[c])*int64(mean[c])
			std[c] = uint8(math.Sqrt(float64(max(variance, 0))))
		}

		blobs = append(blobs, Blob{
			ID:          id,
			Rect:        imaging.Rect{X: a.x1, Y: a.y1, Width: w, Height: h},
			Area:        a.area,
			Fullness:    float64(a.area) / float64(w*h),
			Centroid:    Centroid{X: float32(a.xc) / float32(a.area), Y: float32(a.yc) / float32(a.area)},
			ColorMean:   imaging.RGB{R: mean[0], G: mean[1], B: mean[2]},
			ColorStdDev: imaging.RGB{R: std[0], G: std[1], B: std[2]},
		})
	}
	return blobs, nil
}
