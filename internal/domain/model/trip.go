package model

import (
	"time"

	"companion-marketplace/internal/domain"
)

type TripStatus string

const (
	TripStatusPlanned   TripStatus = "PLANNED"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Terminal reports whether no further status transition is possible.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// Trip is a travel offer created by one explorer. MatchCompleted locks the
// trip against new connection requests; it is raised the moment a match is
// created and lowered again when that match is rejected or cancelled.
type Trip struct {
	ID                string // UUID
	CreatorID         string // explorer id
	Title             string
	Destination       string
	DepartureLocation string
	StartDate         time.Time
	EndDate           time.Time
	Description       string
	Budget            string
	Image             string
	JourneyType       []string
	Duration          string
	Languages         []string
	Status            TripStatus
	MatchCompleted    bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTrip validates and constructs a trip in the PLANNED state.
func NewTrip(id, creatorID, title, destination string) (*Trip, error) {
	if id == "" || creatorID == "" || title == "" || destination == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Trip{
		ID:          id,
		CreatorID:   creatorID,
		Title:       title,
		Destination: destination,
		Status:      TripStatusPlanned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
