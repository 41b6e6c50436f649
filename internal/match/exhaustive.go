package match

import (
	"fmt"
	"sort"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// DefaultThreshold is the similarity below which placements are discarded.
const DefaultThreshold float32 = 0.9

// suppression is the radius of the neighborhood in which only the best
// placement survives.
const suppression = 2

// Match is one placement of a template.
type Match struct {
	Rect       imaging.Rect `json:"rect"`
	Similarity float32      `json:"similarity"`
}

// Exhaustive compares a template against every placement in a search zone
// using the sum of absolute differences of all bytes.
//
// The similarity of a placement is (maxDiff-diff)/maxDiff, where maxDiff is
// 255 times the number of template bytes. Placements below Threshold are
// dropped. Of the remaining ones a placement is reported only if no other
// placement within two pixels on both axes scores strictly higher, so equal
// neighbors are all reported.
type Exhaustive struct {
	Threshold float32
}

// NewExhaustive returns a matcher with threshold clamped to [0, 1].
func NewExhaustive(threshold float32) *Exhaustive {
	return &Exhaustive{Threshold: min(max(threshold, 0), 1)}
}

// Match searches the whole of img. See MatchZone.
func (e *Exhaustive) Match(img, tpl *imaging.Buffer) ([]Match, error) {
	return e.MatchZone(img, tpl, img.Bounds())
}

// MatchZone searches the placements of tpl whose top-left corner lies in
// zone, with the template fully inside zone. Results are ordered by
// decreasing similarity; equal similarities stay in raster order.
//
// # Errors
//
//   - imaging.ErrUnsupportedLayout unless both images are Indexed8 or both
//     are RGB24
//   - imaging.ErrIncompatibleBuffer when the template does not fit in zone
//     intersected with the image bounds
func (e *Exhaustive) MatchZone(img, tpl *imaging.Buffer, zone imaging.Rect) ([]Match, error) {
	l := img.Layout()
	if (l != imaging.Indexed8 && l != imaging.RGB24) || tpl.Layout() != l {
		return nil, fmt.Errorf("%w: template matching needs Indexed8 or RGB24 for both images, got %v and %v",
			imaging.ErrUnsupportedLayout, l, tpl.Layout())
	}

	zone = zone.Intersect(img.Bounds())
	tw, th := tpl.Width(), tpl.Height()
	if tw > zone.Width || th > zone.Height {
		return nil, fmt.Errorf("%w: %dx%d template does not fit %dx%d search zone",
			imaging.ErrIncompatibleBuffer, tw, th, zone.Width, zone.Height)
	}

	bpp := l.BytesPerPixel()
	rowBytes := tw * bpp
	maxDiff := tw * th * bpp * 255
	threshold := min(max(e.Threshold, 0), 1)

	// scores is padded by the suppression radius on every side so that the
	// neighborhood scan needs no bounds checks. A candidate is stored as its
	// score plus one; zero means no candidate.
	mapW, mapH := zone.Width-tw+1, zone.Height-th+1
	stride := mapW + 2*suppression
	scores := make([]int, stride*(mapH+2*suppression))

	src, pat := img.Pix(), tpl.Pix()
	for y := 0; y < mapH; y++ {
		for x := 0; x < mapW; x++ {
			diff := 0
			for i := 0; i < th; i++ {
				s := src[img.Offset(zone.X+x, zone.Y+y+i):][:rowBytes]
				t := pat[tpl.Offset(0, i):][:rowBytes]
				for j := range t {
					d := int(s[j]) - int(t[j])
					if d < 0 {
						d = -d
					}
					diff += d
				}
			}
			if sim := maxDiff - diff; similarity(sim, maxDiff) >= threshold {
				scores[(y+suppression)*stride+x+suppression] = sim + 1
			}
		}
	}

	var matches []Match
	for y := suppression; y < mapH+suppression; y++ {
		for x := suppression; x < mapW+suppression; x++ {
			v := scores[y*stride+x]
			if v == 0 || !localMax(scores, stride, x, y, v) {
				continue
			}
			matches = append(matches, Match{
				Rect:       imaging.Rect{X: x - suppression + zone.X, Y: y - suppression + zone.Y, Width: tw, Height: th},
				Similarity: similarity(v-1, maxDiff),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches, nil
}

// similarity is the reported value of a score; thresholds compare against it.
func similarity(sim, maxDiff int) float32 {
	return float32(sim) / float32(maxDiff)
}

func localMax(scores []int, stride, x, y, v int) bool {
	for i := -suppression; i <= suppression; i++ {
		for j := -suppression; j <= suppression; j++ {
			if scores[(y+i)*stride+x+j] > v {
				return false
			}
		}
	}
	return true
}
