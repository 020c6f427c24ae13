package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
	"companion-marketplace/internal/usecase"
)

type tripDTO struct {
	ID                string    `json:"id"`
	CreatorID         string    `json:"creator_id"`
	Title             string    `json:"title"`
	Destination       string    `json:"destination"`
	DepartureLocation string    `json:"departure_location,omitempty"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Description       string    `json:"description,omitempty"`
	Budget            string    `json:"budget,omitempty"`
	Image             string    `json:"image,omitempty"`
	JourneyType       []string  `json:"journey_type,omitempty"`
	Duration          string    `json:"duration,omitempty"`
	Languages         []string  `json:"languages,omitempty"`
	Status            string    `json:"status"`
	MatchCompleted    bool      `json:"match_completed"`
	CreatedAt         time.Time `json:"created_at"`
}

func toTripDTO(t *model.Trip) tripDTO {
	return tripDTO{
		ID:                t.ID,
		CreatorID:         t.CreatorID,
		Title:             t.Title,
		Destination:       t.Destination,
		DepartureLocation: t.DepartureLocation,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
		Description:       t.Description,
		Budget:            t.Budget,
		Image:             t.Image,
		JourneyType:       t.JourneyType,
		Duration:          t.Duration,
		Languages:         t.Languages,
		Status:            string(t.Status),
		MatchCompleted:    t.MatchCompleted,
		CreatedAt:         t.CreatedAt,
	}
}

func toTripDTOs(trips []*model.Trip) []tripDTO {
	out := make([]tripDTO, 0, len(trips))
	for _, t := range trips {
		out = append(out, toTripDTO(t))
	}
	return out
}

type tripRequest struct {
	Title             string    `json:"title"`
	Destination       string    `json:"destination"`
	DepartureLocation string    `json:"departure_location"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Description       string    `json:"description"`
	Budget            string    `json:"budget"`
	Image             string    `json:"image"`
	JourneyType       []string  `json:"journey_type"`
	Duration          string    `json:"duration"`
	Languages         []string  `json:"languages"`
}

func (req tripRequest) input() usecase.TripInput {
	return usecase.TripInput{
		Title:             req.Title,
		Destination:       req.Destination,
		DepartureLocation: req.DepartureLocation,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Description:       req.Description,
		Budget:            req.Budget,
		Image:             req.Image,
		JourneyType:       req.JourneyType,
		Duration:          req.Duration,
		Languages:         req.Languages,
	}
}

func tripQueryFrom(r *http.Request) repository.TripQuery {
	return repository.TripQuery{
		Search:      r.URL.Query().Get("search"),
		Destination: r.URL.Query().Get("destination"),
		Status:      model.TripStatus(r.URL.Query().Get("status")),
		Page:        parsePage(r),
	}
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	var req tripRequest
	if !decodeBody(w, r, &req) {
		return
	}
	trip, err := s.tripUC.Create(r.Context(), p.Explorer.ID, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripDTO(trip))
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.tripUC.GetByID(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripDTO(trip))
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	var req tripRequest
	if !decodeBody(w, r, &req) {
		return
	}
	trip, err := s.tripUC.Update(r.Context(), p.Explorer.ID, chi.URLParam(r, "tripID"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripDTO(trip))
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	if err := s.tripUC.Delete(r.Context(), p.Explorer.ID, chi.URLParam(r, "tripID")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "trip deleted")
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	q := tripQueryFrom(r)
	trips, total, err := s.tripUC.List(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	page, limit, _ := q.Normalize()
	writePage(w, toTripDTOs(trips), total, page, limit)
}

func (s *Server) handleListMyTrips(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	q := tripQueryFrom(r)
	trips, total, err := s.tripUC.ListMine(r.Context(), p.Explorer.ID, q)
	if err != nil {
		writeError(w, err)
		return
	}
	page, limit, _ := q.Normalize()
	writePage(w, toTripDTOs(trips), total, page, limit)
}

func (s *Server) handleListAvailableTrips(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	q := tripQueryFrom(r)
	trips, total, err := s.tripUC.ListAvailable(r.Context(), p.Explorer.ID, q)
	if err != nil {
		writeError(w, err)
		return
	}
	page, limit, _ := q.Normalize()
	writePage(w, toTripDTOs(trips), total, page, limit)
}

type tripStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleTripStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	var req tripStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	trip, err := s.tripUC.UpdateStatus(r.Context(), p.Explorer.ID, chi.URLParam(r, "tripID"), model.TripStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripDTO(trip))
}
