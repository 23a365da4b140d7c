package glyph

import (
	"slices"
	"testing"
)

func TestFontSize(t *testing.T) {
	s := NewSampler(DefaultOptions())

	tests := []struct {
		width int
		want  float64
	}{
		{350, 50},
		{700, 100},
		{770, 110},
		{1920, 110},
	}
	for _, tt := range tests {
		if got := s.FontSize(tt.width); got != tt.want {
			t.Errorf("FontSize(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestScan(t *testing.T) {
	const w, h = 12, 12
	pix := make([]uint8, w*h*4)
	set := func(x, y int, a uint8) { pix[(y*w+x)*4+3] = a }

	set(0, 0, 255)
	set(6, 0, 128) // At threshold, not above
	set(6, 6, 129)
	set(3, 3, 255) // Off grid

	got := scan(pix, w, h, 6, 128)
	want := []Point{{0, 0}, {6, 6}}
	if !slices.Equal(got, want) {
		t.Errorf("scan = %v, want %v", got, want)
	}
}

func TestSampleCaption(t *testing.T) {
	s := NewSampler(DefaultOptions())
	const w, h = 800, 400

	points := s.Sample("KOVA PARKER", w, h)
	if len(points) == 0 {
		t.Fatal("Sample returned no points for the caption")
	}

	minX, maxX := w, 0
	for _, p := range points {
		if p.X%6 != 0 || p.Y%6 != 0 {
			t.Fatalf("point %v not on the 6px grid", p)
		}
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			t.Fatalf("point %v outside %dx%d", p, w, h)
		}
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
	}

	// Horizontally centred: the ink spans both halves of the surface.
	if minX >= w/2 || maxX <= w/2 {
		t.Errorf("caption ink spans x=[%d, %d], want it to straddle the centre", minX, maxX)
	}
}

func TestSampleDeterministic(t *testing.T) {
	s := NewSampler(DefaultOptions())

	first := s.Sample("KOVA PARKER", 640, 360)
	second := s.Sample("KOVA PARKER", 640, 360)
	if !slices.Equal(first, second) {
		t.Errorf("sampling the same caption twice differed: %d vs %d points", len(first), len(second))
	}

	other := NewSampler(DefaultOptions()).Sample("KOVA PARKER", 640, 360)
	if !slices.Equal(first, other) {
		t.Error("a fresh sampler produced a different point set")
	}
}

func TestSampleUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		sampler *Sampler
		caption string
		w, h    int
	}{
		{"zero width", NewSampler(DefaultOptions()), "KOVA", 0, 100},
		{"zero height", NewSampler(DefaultOptions()), "KOVA", 100, 0},
		{"empty caption", NewSampler(DefaultOptions()), "", 100, 100},
		{"bad font", NewSamplerWithFont(DefaultOptions(), []byte("not a font")), "KOVA", 100, 100},
		{"no font", NewSamplerWithFont(DefaultOptions(), nil), "KOVA", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sampler.Sample(tt.caption, tt.w, tt.h); len(got) != 0 {
				t.Errorf("Sample = %d points, want none", len(got))
			}
		})
	}
}
