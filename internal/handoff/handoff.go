// Package handoff carries registration data from the form submission to the
// payment confirmation page across the external payment redirect.
//
// A Handoff is written once when a team is registered, read when the
// confirmation page loads, and deleted once when payment is verified. Entries
// expire on their own after a TTL so abandoned payments do not accumulate.
package handoff

import (
	"context"
	"errors"
	"time"

	"zignasa/internal/team"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("handoff not found")
	ErrExists   = errors.New("handoff already exists")
)

type Handoff struct {
	ID            string        `json:"id"`
	TeamID        int64         `json:"teamId"`
	TeamName      string        `json:"teamName"`
	Domain        string        `json:"domain"`
	MemberCount   int           `json:"memberCount"`
	AmountInPaise int64         `json:"amountInPaise"`
	Members       []team.Member `json:"members"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// New assigns a fresh random id.
func New(teamID int64, teamName, domain string, amountInPaise int64, members []team.Member) *Handoff {
	return &Handoff{
		ID:            uuid.NewString(),
		TeamID:        teamID,
		TeamName:      teamName,
		Domain:        domain,
		MemberCount:   len(members),
		AmountInPaise: amountInPaise,
		Members:       members,
		CreatedAt:     time.Now().UTC(),
	}
}

type Store interface {
	// Put stores h for ttl. It fails with ErrExists if the id is taken.
	Put(ctx context.Context, h *Handoff, ttl time.Duration) error
	// Get returns ErrNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*Handoff, error)
	// Delete returns ErrNotFound if the entry was already removed.
	Delete(ctx context.Context, id string) error
	PingContext(ctx context.Context) error
}
