package usage

import "time"

// TokenUsage aggregates per-token counters. Tokens are keyed and stored in
// masked form only; full secrets never reach persistence.
type TokenUsage struct {
	Token           string           `json:"token"`
	Requests        int64            `json:"requests"`
	Failures        int64            `json:"failures"`
	TransportErrors int64            `json:"transport_errors"`
	StatusClasses   map[string]int64 `json:"status_classes"`
	RotationsAway   int64            `json:"rotations_away"`
	RotationsTo     int64            `json:"rotations_to"`
	LastRemaining   int              `json:"last_remaining"`
	LastUsed        time.Time        `json:"last_used,omitempty"`
}

// Stats is the pool-wide aggregate.
type Stats struct {
	TotalRequests int64                  `json:"total_requests"`
	TotalFailures int64                  `json:"total_failures"`
	Rotations     int64                  `json:"rotations"`
	Tokens        map[string]*TokenUsage `json:"tokens"`
}

// NewStats returns an empty aggregate.
func NewStats() *Stats {
	return &Stats{Tokens: make(map[string]*TokenUsage)}
}

func (s *Stats) tokenUsage(masked string) *TokenUsage {
	u, ok := s.Tokens[masked]
	if !ok {
		u = &TokenUsage{Token: masked, StatusClasses: make(map[string]int64)}
		s.Tokens[masked] = u
	}
	if u.StatusClasses == nil {
		u.StatusClasses = make(map[string]int64)
	}
	return u
}

// Clone returns a deep copy safe to hand out while recording continues.
func (s *Stats) Clone() *Stats {
	out := &Stats{
		TotalRequests: s.TotalRequests,
		TotalFailures: s.TotalFailures,
		Rotations:     s.Rotations,
		Tokens:        make(map[string]*TokenUsage, len(s.Tokens)),
	}
	for k, u := range s.Tokens {
		copied := *u
		copied.StatusClasses = make(map[string]int64, len(u.StatusClasses))
		for class, n := range u.StatusClasses {
			copied.StatusClasses[class] = n
		}
		out.Tokens[k] = &copied
	}
	return out
}
