package systems

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/treegro/config"
	"github.com/pthm-cable/treegro/param"
)

// ResourceField is a toroidal grid of resource levels with one layer per
// channel. Each channel regrows toward a capacity built from fractal simplex
// noise, drifts through noise time, and diffuses to its neighbours.
type ResourceField struct {
	W, H int
	N    int // channels

	// Current level [0,1], indexed (y*W+x)*N+ch
	Res []float64
	// Capacity [0,1] that Res regrows toward
	Cap []float64

	// Evolution state
	Time float64

	// Parameters
	RegrowRate float64 // fraction of the gap to capacity closed per tick
	Diffuse    float64 // diffusion strength per tick (0 disables)
	TimeSpeed  float64 // noise time advanced per tick (0 keeps capacity static)

	// Noise parameters
	Scale      float64
	Octaves    int
	Lacunarity float64
	Gain       float64
	Bias       []float64

	noise []opensimplex.Noise
	tmp   []float64
}

// NewResourceField creates a w x h field with one channel per configured
// resource. Channel ch draws its noise from seed+ch.
func NewResourceField(w, h int, seed int64, cfg *config.Config) *ResourceField {
	rc := cfg.Resources
	n := len(rc.Channels)
	rf := &ResourceField{
		W: w, H: h, N: n,
		Res: make([]float64, w*h*n),
		Cap: make([]float64, w*h*n),
		tmp: make([]float64, w*h*n),

		RegrowRate: rc.RegrowRate,
		Diffuse:    rc.Diffuse,
		TimeSpeed:  rc.TimeSpeed,

		Scale:      rc.Scale,
		Octaves:    rc.Octaves,
		Lacunarity: rc.Lacunarity,
		Gain:       rc.Gain,
		Bias:       make([]float64, n),

		noise: make([]opensimplex.Noise, n),
	}
	copy(rf.Bias, rc.Bias)
	for ch := range rf.noise {
		rf.noise[ch] = opensimplex.NewNormalized(seed + int64(ch))
	}

	rf.rebuildCapacity()
	copy(rf.Res, rf.Cap)
	return rf
}

// Update advances the field by one tick: capacity drift, regrowth, then
// diffusion.
func (rf *ResourceField) Update() {
	if rf.TimeSpeed > 0 {
		rf.Time += rf.TimeSpeed
		rf.rebuildCapacity()
	}

	if rf.RegrowRate > 0 {
		k := clamp01(rf.RegrowRate)
		for i := range rf.Res {
			rf.Res[i] = clamp01(rf.Res[i] + (rf.Cap[i]-rf.Res[i])*k)
		}
	}

	if rf.Diffuse > 0 {
		rf.diffuse()
	}
}

// Sample writes the levels of cell (x, y) into dst. Coordinates wrap.
func (rf *ResourceField) Sample(x, y int, dst param.ResourceVector) {
	base := rf.index(x, y, 0)
	n := min(rf.N, dst.Len())
	for ch := 0; ch < n; ch++ {
		dst.Set(ch, rf.Res[base+ch])
	}
}

// Level returns channel ch of cell (x, y). Coordinates wrap.
func (rf *ResourceField) Level(x, y, ch int) float64 {
	return rf.Res[rf.index(x, y, ch)]
}

// Mean returns the average level of one channel.
func (rf *ResourceField) Mean(ch int) float64 {
	cells := rf.W * rf.H
	if cells == 0 {
		return 0
	}
	var sum float64
	for i := ch; i < len(rf.Res); i += rf.N {
		sum += rf.Res[i]
	}
	return sum / float64(cells)
}

// MeanAll returns the average level over every channel.
func (rf *ResourceField) MeanAll() float64 {
	if rf.N == 0 {
		return 0
	}
	var sum float64
	for ch := 0; ch < rf.N; ch++ {
		sum += rf.Mean(ch)
	}
	return sum / float64(rf.N)
}

// GridSize returns the grid dimensions.
func (rf *ResourceField) GridSize() (int, int) {
	return rf.W, rf.H
}

func (rf *ResourceField) index(x, y, ch int) int {
	return (modInt(y, rf.H)*rf.W+modInt(x, rf.W))*rf.N + ch
}

// rebuildCapacity regenerates every channel's capacity at the current time.
func (rf *ResourceField) rebuildCapacity() {
	for y := 0; y < rf.H; y++ {
		v := (float64(y) + 0.5) / float64(rf.H)
		for x := 0; x < rf.W; x++ {
			u := (float64(x) + 0.5) / float64(rf.W)
			base := (y*rf.W + x) * rf.N
			for ch := 0; ch < rf.N; ch++ {
				rf.Cap[base+ch] = clamp01(rf.fbm(rf.noise[ch], u, v) + rf.Bias[ch])
			}
		}
	}
}

// fbm layers octaves of noise, normalized by the total amplitude so the
// result stays in [0,1).
func (rf *ResourceField) fbm(noise opensimplex.Noise, u, v float64) float64 {
	total := 0.0
	amp := 1.0
	maxVal := 0.0
	freq := rf.Scale

	for o := 0; o < rf.Octaves; o++ {
		total += noise.Eval3(u*freq, v*freq, rf.Time) * amp
		maxVal += amp
		freq *= rf.Lacunarity
		amp *= rf.Gain
	}
	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}

// diffuse applies 5-point stencil diffusion on the toroidal grid, channel by
// channel.
func (rf *ResourceField) diffuse() {
	a := rf.Diffuse
	// Stability clamp for explicit diffusion
	if a > 0.25 {
		a = 0.25
	}

	w, h, n := rf.W, rf.H, rf.N
	src := rf.Res
	dst := rf.tmp

	for y := 0; y < h; y++ {
		yN := modInt(y-1, h)
		yS := modInt(y+1, h)
		for x := 0; x < w; x++ {
			xW := modInt(x-1, w)
			xE := modInt(x+1, w)

			i := (y*w + x) * n
			north := (yN*w + x) * n
			south := (yS*w + x) * n
			east := (y*w + xE) * n
			west := (y*w + xW) * n
			for ch := 0; ch < n; ch++ {
				c := src[i+ch]
				dst[i+ch] = c + a*(src[north+ch]+src[south+ch]+src[east+ch]+src[west+ch]-4*c)
			}
		}
	}

	for i := range rf.Res {
		rf.Res[i] = clamp01(dst[i])
	}
}
