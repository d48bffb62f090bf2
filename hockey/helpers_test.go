package hockey

import (
	"math"
	"testing"
)

// seqRand replays a fixed sequence of values, wrapping around
type seqRand struct {
	vals []float64
	i    int
}

func (s *seqRand) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func defaultGeom(t *testing.T) FieldGeometry {
	t.Helper()
	g, err := ComputeFieldGeometry(800, 1600)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	return g
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func countdownTicks(events []Event) []int {
	var out []int
	for _, e := range events {
		if e.Kind == EventCountdownTick {
			out = append(out, e.Count)
		}
	}
	return out
}
