package battery

import (
	"testing"
	"time"
)

func TestDrainRate(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 0},
		{-time.Minute, 0},
		{5 * time.Second, 1},
		{time.Minute, 12},
		{3 * time.Minute, 36},
	}
	for _, c := range cases {
		if got := Drain(c.elapsed); got != c.want {
			t.Errorf("Drain(%v) = %v, want %v", c.elapsed, got, c.want)
		}
	}
}

func TestApplyClampsAtZero(t *testing.T) {
	if got := Apply(10, 25); got != 0 {
		t.Errorf("Apply(10, 25) = %v, want 0", got)
	}
	if got := Apply(50, 12); got != 38 {
		t.Errorf("Apply(50, 12) = %v, want 38", got)
	}
}

func TestApplyNeverRaisesLevel(t *testing.T) {
	if got := Apply(40, -5); got != 40 {
		t.Errorf("Apply(40, -5) = %v, want 40", got)
	}
	if got := Apply(40, 0); got != 40 {
		t.Errorf("Apply(40, 0) = %v, want 40", got)
	}
}

func TestLevelNonIncreasingOverSequence(t *testing.T) {
	level := 100.0
	gaps := []time.Duration{time.Minute, 30 * time.Second, 2 * time.Minute, 5 * time.Second}
	for _, gap := range gaps {
		next := Apply(level, Drain(gap))
		if next > level {
			t.Fatalf("level increased from %v to %v after gap %v", level, next, gap)
		}
		if next < 0 || next > 100 {
			t.Fatalf("level %v outside [0, 100]", next)
		}
		level = next
	}
}

func TestPlausibleGapBounds(t *testing.T) {
	cases := []struct {
		gap  time.Duration
		want bool
	}{
		{4 * time.Second, false},
		{5 * time.Second, true},
		{time.Minute, true},
		{10 * time.Minute, true},
		{10*time.Minute + time.Second, false},
		{-time.Second, false},
	}
	for _, c := range cases {
		if got := PlausibleGap(c.gap); got != c.want {
			t.Errorf("PlausibleGap(%v) = %v, want %v", c.gap, got, c.want)
		}
	}
}
