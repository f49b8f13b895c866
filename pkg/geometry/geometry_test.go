package geometry

import (
	"math"
	"math/rand/v2"
	"testing"
)

func deg(d float64) float64 { return d * math.Pi / 180 }

func TestIntersects(t *testing.T) {
	tests := []struct {
		name           string
		r1, r2, r3, r4 float64
		want           bool
	}{
		{"diameters cross", deg(0), deg(180), deg(90), deg(270), true},
		{"nested chords", deg(10), deg(80), deg(20), deg(70), false},
		{"disjoint arcs", deg(0), deg(40), deg(180), deg(220), false},
		{"interleaved", deg(0), deg(100), deg(50), deg(200), true},
		{"shared endpoint", deg(0), deg(90), deg(0), deg(200), false},
		{"identical chords", deg(10), deg(100), deg(10), deg(100), false},
		{"parallel chords", deg(30), deg(150), deg(-30), deg(210), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersects(tt.r1, tt.r2, tt.r3, tt.r4); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 2000; i++ {
		r := [4]float64{}
		for k := range r {
			r[k] = rng.Float64() * 2 * math.Pi
		}
		ab := Intersects(r[0], r[1], r[2], r[3])
		ba := Intersects(r[2], r[3], r[0], r[1])
		if ab != ba {
			t.Fatalf("asymmetric result for %v: %v vs %v", r, ab, ba)
		}
	}
}

func TestSuperimposed(t *testing.T) {
	tests := []struct {
		a, b Span
		want bool
	}{
		{Span{0, 1}, Span{0.5, 2}, true},
		{Span{0.5, 2}, Span{0, 1}, true},
		{Span{0, 1}, Span{1, 2}, true},
		{Span{0, 1}, Span{1.1, 2}, false},
		{Span{0, 3}, Span{1, 2}, true},
	}
	for _, tt := range tests {
		if got := Superimposed(tt.a, tt.b); got != tt.want {
			t.Errorf("Superimposed(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
