package model

import (
	"time"

	"companion-marketplace/internal/domain"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusAccepted  MatchStatus = "ACCEPTED"
	MatchStatusRejected  MatchStatus = "REJECTED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
	MatchStatusCompleted MatchStatus = "COMPLETED"
)

// Terminal reports whether no further transition is possible.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusRejected || s == MatchStatusCancelled || s == MatchStatusCompleted
}

// Open reports whether the match counts against the requester's entitlement.
func (s MatchStatus) Open() bool {
	return s == MatchStatusPending || s == MatchStatusAccepted
}

// matchTransitions is the full transition graph. Anything absent is a
// conflict.
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending:  {MatchStatusAccepted, MatchStatusRejected, MatchStatusCancelled},
	MatchStatusAccepted: {MatchStatusCancelled, MatchStatusCompleted},
}

// CanTransition reports whether from → to is a legal edge.
func (s MatchStatus) CanTransition(to MatchStatus) bool {
	for _, t := range matchTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Match is a directed connection request between two explorers scoped to one
// trip. RecipientID always equals the trip's creator at creation time.
type Match struct {
	ID          string // UUID
	RequesterID string // explorer id
	RecipientID string // explorer id (trip creator)
	TripID      string
	Status      MatchStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewMatch validates and constructs a pending match.
func NewMatch(id, requesterID, recipientID, tripID string) (*Match, error) {
	if id == "" || requesterID == "" || recipientID == "" || tripID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if requesterID == recipientID {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Match{
		ID:          id,
		RequesterID: requesterID,
		RecipientID: recipientID,
		TripID:      tripID,
		Status:      MatchStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Participant reports whether explorerID is one of the two sides.
func (m *Match) Participant(explorerID string) bool {
	return explorerID == m.RequesterID || explorerID == m.RecipientID
}
