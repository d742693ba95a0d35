package model

import (
	"nimfibo/communication"
	"nimfibo/kernel"
)

// Instance lists the move values of s, Unassigned where a move is not fixed.
func (m *Model) Instance(s *kernel.Space) communication.Instance {
	in := make(communication.Instance, len(m.X))
	for i, x := range m.X {
		if v, ok := s.Value(x); ok {
			in[i] = communication.Known(v)
		} else {
			in[i] = communication.Unassigned
		}
	}
	return in
}

// Report sends the instance of s on the bus.
func (m *Model) Report(s *kernel.Space) {
	m.bus.SendInstance(m.Instance(s))
}
