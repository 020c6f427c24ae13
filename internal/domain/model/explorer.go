package model

import (
	"time"

	"companion-marketplace/internal/domain"
)

// Explorer is a marketplace participant profile. It is distinct from the
// account record: auth resolves an account user id, everything below keys
// on the explorer id.
type Explorer struct {
	ID             string // UUID
	UserID         string // UUID of the owning account
	FullName       string
	ProfilePicture string
	IsPremium      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewExplorer validates and constructs an explorer profile.
func NewExplorer(id, userID, fullName string) (*Explorer, error) {
	if id == "" || userID == "" || fullName == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Explorer{
		ID:        id,
		UserID:    userID,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
