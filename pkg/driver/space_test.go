// ABOUTME: Tests for volume and coordinate conversions
// ABOUTME: Checks the logarithmic volume convention and orientation vectors
package driver

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVolumeGain(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"linear full", 1, 1},
		{"linear half", 0.5, 0.5},
		{"linear clamp", 3, 1},
		{"log full", -1, 1},
		{"log silence", 0, 0},
		{"log -20dB", -0.8, 0.1},
		{"log beyond full", -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VolumeGain(tt.in); !near(got, tt.want) {
				t.Errorf("VolumeGain(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoordsSwap(t *testing.T) {
	if got := Coords(1, 2, 3); got != [3]float64{1, 3, 2} {
		t.Errorf("expected Y/Z swap, got %v", got)
	}
}

func TestOrientationLevel(t *testing.T) {
	front, up := Orientation(90, 0)

	// facing world +Y becomes driver +Z
	want := [3]float64{0, 0, 1}
	for i := range want {
		if !near(front[i], want[i]) {
			t.Fatalf("front = %v, want %v", front, want)
		}
	}
	if !near(up[1], 1) {
		t.Errorf("up should be driver +Y, got %v", up)
	}

	// right = up x front
	right := Cross(up, front)
	if !near(right[0], 1) {
		t.Errorf("facing +Y with Z up, right is +X; got %v", right)
	}
}

func TestOrientationPitch(t *testing.T) {
	front, _ := Orientation(0, 90)
	if !near(front[1], 1) {
		t.Errorf("looking straight up should point along driver +Y, got %v", front)
	}
}
