package metrics

import (
	"math"

	"github.com/san-kum/rxnsim/internal/sim"
)

// SettlingTime is the last observed time at which any concentration was
// still changing faster than threshold per unit time.
type SettlingTime struct {
	name      string
	threshold float64
	prev      sim.State
	prevT     float64
	settled   float64
}

func NewSettlingTime(threshold float64) *SettlingTime {
	return &SettlingTime{
		name:      "settling_time",
		threshold: threshold,
	}
}

func (s *SettlingTime) Name() string {
	return s.name
}

func (s *SettlingTime) Observe(x sim.State, t float64) {
	if s.prev == nil || len(s.prev) != len(x) {
		s.prev = x.Clone()
		s.prevT = t
		return
	}

	if dt := t - s.prevT; dt > 0 {
		for i, v := range x {
			if math.Abs(v-s.prev[i])/dt > s.threshold {
				s.settled = t
				break
			}
		}
	}
	copy(s.prev, x)
	s.prevT = t
}

func (s *SettlingTime) Value() float64 {
	return s.settled
}

func (s *SettlingTime) Reset() {
	s.prev = nil
	s.prevT = 0
	s.settled = 0
}
