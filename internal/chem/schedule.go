package chem

import "fmt"

// Addition injects Amount of Chemical once the elapsed simulation time
// passes Time. Amount may be negative.
type Addition struct {
	Chemical Chemical
	Time     float64
	Amount   float64
}

func (a Addition) String() string {
	return fmt.Sprintf("%s %g t = %g", a.Chemical.Name(), a.Amount, a.Time)
}

// Schedule is the list of additions that have not fired yet, kept in
// declaration order.
type Schedule struct {
	pending []Addition
}

func NewSchedule(additions ...Addition) *Schedule {
	s := &Schedule{pending: make([]Addition, 0, len(additions))}
	s.pending = append(s.pending, additions...)
	return s
}

func (s *Schedule) Add(a Addition) { s.pending = append(s.pending, a) }

func (s *Schedule) Len() int { return len(s.pending) }

// Pending returns a copy of the additions that have not fired.
func (s *Schedule) Pending() []Addition {
	out := make([]Addition, len(s.pending))
	copy(out, s.pending)
	return out
}

// Due removes and returns, in declaration order, every addition whose
// trigger time is strictly before elapsed.
func (s *Schedule) Due(elapsed float64) []Addition {
	var due []Addition
	kept := s.pending[:0]
	for _, a := range s.pending {
		if a.Time < elapsed {
			due = append(due, a)
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(s.pending); i++ {
		s.pending[i] = Addition{}
	}
	s.pending = kept
	return due
}

func (s *Schedule) Clone() *Schedule {
	return NewSchedule(s.pending...)
}
