package repository

import "companion-marketplace/internal/domain/model"

// Page is the shared pagination spec. Zero values mean "first page, default
// size"; repositories normalize.
type Page struct {
	Page  int
	Limit int
}

// Normalize returns sane page/limit and the SQL offset.
func (p Page) Normalize() (page, limit, offset int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	limit = p.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}

// TripQuery is the typed listing spec for trips: explicit search and filter
// fields only, never reflected from request keys.
type TripQuery struct {
	Search      string // matches title or destination, case-insensitive
	Destination string
	Status      model.TripStatus
	Page
}

// MatchQuery is the typed listing spec for matches.
type MatchQuery struct {
	Status model.MatchStatus
	Page
}

// ReviewQuery is the typed listing spec for reviews.
type ReviewQuery struct {
	Status model.ReviewStatus
	Page
}
