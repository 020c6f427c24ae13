package usecase

import "companion-marketplace/internal/domain/model"

// Role is the caller's relationship to the entity a transition acts on.
type Role uint8

const (
	RoleRequester Role = iota + 1 // opened the match
	RoleRecipient                 // the match's recipient (always the trip creator)
	RoleTripCreator
	RoleParticipant // either side of a match
)

// Op enumerates every guarded operation.
type Op string

const (
	OpMatchCancel   Op = "match.cancel"
	OpMatchDecide   Op = "match.decide" // accept or reject
	OpMatchComplete Op = "match.complete"
	OpTripUpdate    Op = "trip.update"
	OpTripDelete    Op = "trip.delete"
	OpTripStatus    Op = "trip.status"
	OpReviewCreate  Op = "review.create"
)

// permissions is the single authorization table. Every transition consults
// it instead of scattering ad-hoc ownership comparisons per endpoint.
var permissions = map[Op][]Role{
	OpMatchCancel:   {RoleRequester},
	OpMatchDecide:   {RoleRecipient},
	OpMatchComplete: {RoleParticipant},
	OpTripUpdate:    {RoleTripCreator},
	OpTripDelete:    {RoleTripCreator},
	OpTripStatus:    {RoleTripCreator, RoleParticipant},
	OpReviewCreate:  {RoleParticipant},
}

// allowed reports whether any of the caller's roles satisfies op.
func allowed(op Op, roles []Role) bool {
	for _, want := range permissions[op] {
		for _, have := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// matchRoles derives the caller's roles relative to a match.
func matchRoles(explorerID string, m *model.Match) []Role {
	var roles []Role
	if explorerID == m.RequesterID {
		roles = append(roles, RoleRequester, RoleParticipant)
	}
	if explorerID == m.RecipientID {
		roles = append(roles, RoleRecipient, RoleParticipant)
	}
	return roles
}

// tripRoles derives the caller's roles relative to a trip, treating only
// participants of accepted matches as participants of the trip.
func tripRoles(explorerID string, t *model.Trip, accepted []*model.Match) []Role {
	var roles []Role
	if explorerID == t.CreatorID {
		roles = append(roles, RoleTripCreator)
	}
	for _, m := range accepted {
		if m.Participant(explorerID) {
			roles = append(roles, RoleParticipant)
			break
		}
	}
	return roles
}
