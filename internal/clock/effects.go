package clock

import (
	"math"

	"netlens/internal/domain"
)

// frac returns x - floor(x), always in [0, 1)
func frac(x float64) float64 {
	return x - math.Floor(x)
}

// DashOffset animates a dash pattern: it falls linearly from length to 0 over
// each period.
func DashOffset(t Sample, period, length float64) float64 {
	if period <= 0 {
		return 0
	}
	return length * (1 - frac(t.Seconds()/period))
}

// Smoothstep eases x in [0, 1] with zero slope at both ends
func Smoothstep(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	return x * x * (3 - 2*x)
}

// CyclePhase splits a color cycle of n stops into the current segment and the
// eased position within it. One full period visits every stop once.
func CyclePhase(t Sample, period float64, n int) (from, to int, mix float64) {
	if n <= 0 {
		return 0, 0, 0
	}
	if period <= 0 || n == 1 {
		return 0, 0, 0
	}
	p := frac(t.Seconds()/period) * float64(n)
	seg := int(p)
	if seg >= n {
		seg = n - 1
	}
	return seg, (seg + 1) % n, Smoothstep(p - float64(seg))
}

// CycleColor blends through the palette over one period
func CycleColor(t Sample, period float64, palette []RGB) RGB {
	if len(palette) == 0 {
		return RGB{}
	}
	from, to, mix := CyclePhase(t, period, len(palette))
	return palette[from].Lerp(palette[to], mix)
}

// Pulse returns a scale factor oscillating in [1-amplitude, 1+amplitude]
// with angular frequency omega (radians per second).
func Pulse(t Sample, omega, amplitude float64) float64 {
	return 1 + amplitude*math.Sin(t.Seconds()*omega)
}

// MarkerProgress maps time to a position along a link in [0, 1]
func MarkerProgress(t Sample, k float64) float64 {
	return (math.Sin(t.Seconds()*k) + 1) / 2
}

// MarkerPosition interpolates between the link endpoints
func MarkerPosition(src, dst domain.Position, progress float64) domain.Position {
	return src.Lerp(dst, progress)
}
