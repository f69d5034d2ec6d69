package clock

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"netlens/internal/domain"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestClockPauseResume(t *testing.T) {
	src := NewManual(0)
	c := New(src)

	src.Advance(2 * time.Second)
	if got := c.Sample().Seconds(); !near(got, 2) {
		t.Fatalf("Sample() = %v, want 2", got)
	}

	c.Pause()
	src.Advance(5 * time.Second)
	if got := c.Sample().Seconds(); !near(got, 2) {
		t.Fatalf("paused Sample() = %v, want 2", got)
	}

	t.Run("pause is idempotent", func(t *testing.T) {
		c.Pause()
		src.Advance(time.Second)
		if got := c.Sample().Seconds(); !near(got, 2) {
			t.Errorf("Sample() = %v, want 2", got)
		}
	})

	c.Resume()
	if got := c.Sample().Seconds(); !near(got, 2) {
		t.Fatalf("Sample() right after resume = %v, want 2", got)
	}

	src.Advance(500 * time.Millisecond)
	if got := c.Sample().Seconds(); !near(got, 2.5) {
		t.Fatalf("Sample() = %v, want 2.5", got)
	}

	t.Run("resume is idempotent", func(t *testing.T) {
		c.Resume()
		if got := c.Sample().Seconds(); !near(got, 2.5) {
			t.Errorf("Sample() = %v, want 2.5", got)
		}
	})
}

func TestClockToggle(t *testing.T) {
	c := New(NewManual(0))

	if !c.Toggle() || !c.Paused() {
		t.Fatal("expected first toggle to pause")
	}
	if c.Toggle() || c.Paused() {
		t.Fatal("expected second toggle to resume")
	}
}

func TestDashOffset(t *testing.T) {
	tests := []struct {
		t    Sample
		want float64
	}{
		{0, 10},
		{0.5, 7.5},
		{1, 5},
		{1.999, 0.005},
		{2, 10},
	}
	for _, tt := range tests {
		if got := DashOffset(tt.t, 2, 10); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("DashOffset(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if got := DashOffset(1, 0, 10); got != 0 {
		t.Errorf("expected 0 for zero period, got %v", got)
	}
}

func TestSmoothstep(t *testing.T) {
	tests := map[float64]float64{-1: 0, 0: 0, 0.5: 0.5, 1: 1, 2: 1}
	for in, want := range tests {
		if got := Smoothstep(in); !near(got, want) {
			t.Errorf("Smoothstep(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestCycleColor(t *testing.T) {
	palette := []RGB{MustParseHex("#00d4ff"), MustParseHex("#ff6b6b"), MustParseHex("#ffe66d")}

	t.Run("stops", func(t *testing.T) {
		for i, s := range []Sample{0, 1, 2} {
			if got := CycleColor(s, 3, palette); got != palette[i] {
				t.Errorf("CycleColor(%v) = %v, want %v", s, got, palette[i])
			}
		}
	})

	t.Run("wraps", func(t *testing.T) {
		if got := CycleColor(3, 3, palette); got != palette[0] {
			t.Errorf("expected wrap to first color, got %v", got)
		}
	})

	t.Run("midpoint", func(t *testing.T) {
		from, to, mix := CyclePhase(2.5, 3, 3)
		if from != 2 || to != 0 || !near(mix, 0.5) {
			t.Errorf("CyclePhase(2.5) = (%d, %d, %v)", from, to, mix)
		}
	})

	t.Run("empty palette", func(t *testing.T) {
		if got := CycleColor(1, 3, nil); got != (RGB{}) {
			t.Errorf("expected zero color, got %v", got)
		}
	})
}

func TestPulseBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		p := Pulse(Sample(float64(i)*0.137), 3, 0.1)
		if p < 0.9-1e-9 || p > 1.1+1e-9 {
			t.Fatalf("Pulse out of range: %v", p)
		}
	}
}

func TestMarker(t *testing.T) {
	if got := MarkerProgress(0, 2); !near(got, 0.5) {
		t.Errorf("MarkerProgress(0) = %v, want 0.5", got)
	}
	p := MarkerPosition(domain.Position{X: 0, Y: 0}, domain.Position{X: 100, Y: 50}, 0.5)
	if !near(p.X, 50) || !near(p.Y, 25) {
		t.Errorf("MarkerPosition = %+v", p)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#00d4ff", RGB{0, 0xd4, 0xff}, false},
		{"fff", RGB{255, 255, 255}, false},
		{"#12345", RGB{}, true},
		{"#gggggg", RGB{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if got := (RGB{0, 0xd4, 0xff}).Hex(); got != "#00d4ff" {
		t.Errorf("Hex() = %s", got)
	}
}

func TestRunSkipsPausedTicks(t *testing.T) {
	c := New(nil)
	c.Pause()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	calls := 0
	err := c.Run(ctx, time.Millisecond, func(Sample) { calls++ })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls while paused, got %d", calls)
	}
}

func TestRunDeliversSamples(t *testing.T) {
	c := New(nil)
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan Sample, 1)
	go c.Run(ctx, time.Millisecond, func(s Sample) {
		select {
		case got <- s:
		default:
		}
	})
	defer cancel()

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("expected at least one sample")
	}
}
