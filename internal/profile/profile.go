package profile

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no profile exists for a user ID.
var ErrNotFound = errors.New("profile: not found")

// Profile holds the per-user preferences the orchestrator consults when
// selecting experts.
type Profile struct {
	Interests       []string `json:"interests,omitempty"`
	ExperienceLevel string   `json:"experienceLevel,omitempty"`
	PreferredStyle  string   `json:"preferredStyle,omitempty"`
	ActiveAgents    []string `json:"activeAgents,omitempty"`
}

// Allows reports whether the profile permits the given domain. An empty
// ActiveAgents list permits everything.
func (p *Profile) Allows(domain string) bool {
	if p == nil || len(p.ActiveAgents) == 0 {
		return true
	}
	for _, d := range p.ActiveAgents {
		if d == domain {
			return true
		}
	}
	return false
}

// Store is the key-value profile store the service owns. The orchestration
// core only reads profiles handed to it per request.
type Store interface {
	Get(ctx context.Context, userID string) (Profile, error)
	Put(ctx context.Context, userID string, p Profile) error
}
