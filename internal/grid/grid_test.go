package grid

import (
	"math"
	"testing"
)

func TestHashRoundTrip(t *testing.T) {
	tests := []struct {
		x, y int32
	}{
		{0, 0},
		{1, 0},
		{0, 1},
		{-1, -1},
		{-1, 0},
		{0, -1},
		{123, -456},
		{math.MaxInt32, math.MinInt32},
		{math.MinInt32, math.MaxInt32},
		{math.MinInt32, math.MinInt32},
		{math.MaxInt32, math.MaxInt32},
	}

	for _, tc := range tests {
		gx, gy := FromHash(ToHash(tc.x, tc.y))
		if gx != tc.x || gy != tc.y {
			t.Errorf("FromHash(ToHash(%d, %d)) = (%d, %d)", tc.x, tc.y, gx, gy)
		}
	}
}

func TestHashLayout(t *testing.T) {
	if got := ToHash(1, 0); got != 1 {
		t.Errorf("ToHash(1, 0) = %#x, want 0x1", got)
	}
	if got := ToHash(0, 1); got != 1<<32 {
		t.Errorf("ToHash(0, 1) = %#x, want 0x100000000", got)
	}
	if got := ToHash(-1, 0); got != 0xFFFFFFFF {
		t.Errorf("ToHash(-1, 0) = %#x, want 0xffffffff", got)
	}
}

func TestHashNoCollisions(t *testing.T) {
	seen := make(map[uint64][2]int32)
	for x := int32(-20); x <= 20; x++ {
		for y := int32(-20); y <= 20; y++ {
			h := ToHash(x, y)
			if prev, ok := seen[h]; ok {
				t.Fatalf("ToHash(%d, %d) collides with (%d, %d)", x, y, prev[0], prev[1])
			}
			seen[h] = [2]int32{x, y}
		}
	}
}

func TestInfiniteGrid(t *testing.T) {
	g := New[string]()

	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
	if _, ok := g.Get(0, 0); ok {
		t.Error("Get on empty grid should report missing")
	}

	g.Set(0, 0, "origin")
	g.Set(-3, 7, "far")

	if v, ok := g.Get(-3, 7); !ok || v != "far" {
		t.Errorf("Get(-3, 7) = %q, %v, want \"far\", true", v, ok)
	}
	if !g.Has(0, 0) {
		t.Error("Has(0, 0) = false, want true")
	}
	if g.Has(7, -3) {
		t.Error("Has(7, -3) = true, want false")
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}

	visited := 0
	g.Each(func(x, y int32, v string) {
		visited++
		if got, _ := g.Get(x, y); got != v {
			t.Errorf("Each yielded (%d, %d) = %q, grid holds %q", x, y, v, got)
		}
	})
	if visited != 2 {
		t.Errorf("Each visited %d cells, want 2", visited)
	}
}
