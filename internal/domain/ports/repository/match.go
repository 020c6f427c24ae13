package repository

import (
	"context"

	"companion-marketplace/internal/domain/model"
)

// MatchRepository is the port for connection requests. FindByID acquires a
// row lock when called with a live tx so concurrent transitions serialize.
type MatchRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Match) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Match, error)
	// FindForTripPair looks up a match on tripID between a and b in either
	// direction.
	FindForTripPair(ctx context.Context, tx Tx, tripID, a, b string) (*model.Match, error)
	// CountOpenByExplorer counts PENDING and ACCEPTED matches the explorer
	// participates in as requester; this is the entitlement ceiling input.
	CountOpenByExplorer(ctx context.Context, tx Tx, explorerID string) (int, error)
	ListByTripAndStatus(ctx context.Context, tx Tx, tripID string, status model.MatchStatus) ([]*model.Match, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.MatchStatus) error
	// CascadeStatus moves every match on tripID currently in from to to,
	// returning the number of rows touched.
	CascadeStatus(ctx context.Context, tx Tx, tripID string, from, to model.MatchStatus) (int, error)

	ListByParticipant(ctx context.Context, tx Tx, explorerID string) ([]*model.Match, error)
	List(ctx context.Context, tx Tx, q MatchQuery) ([]*model.Match, int, error)
	// CountByParticipantAndStatus counts matches in status that explorerID
	// participates in on either side.
	CountByParticipantAndStatus(ctx context.Context, tx Tx, explorerID string, status model.MatchStatus) (int, error)
}
