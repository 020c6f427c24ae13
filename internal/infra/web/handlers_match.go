package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"companion-marketplace/internal/domain/model"
)

type matchDTO struct {
	ID          string    `json:"id"`
	TripID      string    `json:"trip_id"`
	RequesterID string    `json:"requester_id"`
	RecipientID string    `json:"recipient_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMatchDTO(m *model.Match) matchDTO {
	return matchDTO{
		ID:          m.ID,
		TripID:      m.TripID,
		RequesterID: m.RequesterID,
		RecipientID: m.RecipientID,
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type matchRequest struct {
	TripID string `json:"trip_id"`
}

func (s *Server) handleRequestMatch(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	var req matchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	match, err := s.matchUC.Request(r.Context(), p.Explorer.ID, req.TripID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMatchDTO(match))
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	match, err := s.matchUC.GetByID(r.Context(), p.Explorer.ID, chi.URLParam(r, "matchID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchDTO(match))
}

func (s *Server) handleListMyMatches(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	matches, err := s.matchUC.ListMine(r.Context(), p.Explorer.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchDTO(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// matchTransition adapts one state-machine move into a handler. All four
// moves share the same request and response shape.
func (s *Server) matchTransition(fn func(ctx context.Context, explorerID, matchID string) (*model.Match, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := principalFrom(r.Context())

		match, err := fn(r.Context(), p.Explorer.ID, chi.URLParam(r, "matchID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMatchDTO(match))
	}
}
