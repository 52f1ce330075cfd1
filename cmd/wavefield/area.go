package main

import (
	"fmt"
	"strconv"
	"strings"
)

// area is an inclusive rectangle of sector coordinates
type area struct {
	MinX, MinY, MaxX, MaxY int32
}

// parseArea reads "x,y" for a single sector or "minX,minY,maxX,maxY"
func parseArea(s string) (area, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 4 {
		return area{}, fmt.Errorf("area %q: want x,y or minX,minY,maxX,maxY", s)
	}

	vals := make([]int32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return area{}, fmt.Errorf("area %q: %w", s, err)
		}
		vals[i] = int32(v)
	}

	if len(vals) == 2 {
		return area{MinX: vals[0], MinY: vals[1], MaxX: vals[0], MaxY: vals[1]}, nil
	}
	a := area{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	if a.MaxX < a.MinX || a.MaxY < a.MinY {
		return area{}, fmt.Errorf("area %q: max corner is before min corner", s)
	}
	return a, nil
}

// Count returns the number of sectors in the area
func (a area) Count() int {
	return int((int64(a.MaxX) - int64(a.MinX) + 1) * (int64(a.MaxY) - int64(a.MinY) + 1))
}
