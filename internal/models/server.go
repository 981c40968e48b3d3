package models

// Server is the configuration record for the managed server whose resources
// the panel displays. Limits and allocations are owned by configuration; the
// lifecycle status is owned by the external state store and only read here.
type Server struct {
	Name        string         `json:"name"`
	Limits      ResourceLimits `json:"limits"`
	Allocations []Allocation   `json:"allocations"`
}

// DefaultAllocation returns the allocation flagged as default, or false when
// none is flagged.
func (s *Server) DefaultAllocation() (Allocation, bool) {
	if s == nil {
		return Allocation{}, false
	}
	for _, alloc := range s.Allocations {
		if alloc.IsDefault {
			return alloc, true
		}
	}
	return Allocation{}, false
}
