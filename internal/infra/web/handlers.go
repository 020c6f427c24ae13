package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
)

// --- Response DTOs ---

type explorerDTO struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	FullName       string    `json:"full_name"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	IsPremium      bool      `json:"is_premium"`
	CreatedAt      time.Time `json:"created_at"`
}

func toExplorerDTO(e *model.Explorer) explorerDTO {
	return explorerDTO{
		ID:             e.ID,
		UserID:         e.UserID,
		FullName:       e.FullName,
		ProfilePicture: e.ProfilePicture,
		IsPremium:      e.IsPremium,
		CreatedAt:      e.CreatedAt,
	}
}

type planDTO struct {
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	AllowedMatches int    `json:"allowed_matches"`
	DurationDays   int    `json:"duration_days"`
}

func toPlanDTO(p model.Plan) planDTO {
	return planDTO{
		Name:           string(p.Name),
		Price:          p.Price,
		AllowedMatches: p.AllowedMatches,
		DurationDays:   p.DurationDays,
	}
}

type subscriptionDTO struct {
	ID        string    `json:"id"`
	PlanName  string    `json:"plan_name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
}

func toSubscriptionDTO(s *model.Subscription) *subscriptionDTO {
	if s == nil {
		return nil
	}
	return &subscriptionDTO{
		ID:        s.ID,
		PlanName:  string(s.PlanName),
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		IsActive:  s.IsActive,
	}
}

// parsePage reads page/limit query parameters; repositories normalize.
func parsePage(r *http.Request) repository.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return repository.Page{Page: page, Limit: limit}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// --- Profile ---

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	writeJSON(w, http.StatusOK, toExplorerDTO(p.Explorer))
}

type updateMeRequest struct {
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture"`
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	var req updateMeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	explorer, err := s.explorerUC.UpdateProfile(r.Context(), p.Explorer.ID, req.FullName, req.ProfilePicture)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExplorerDTO(explorer))
}

// --- Plans and subscription ---

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans := s.subUC.Plans(r.Context())
	out := make([]planDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMySubscription(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	sub, plan, err := s.subUC.Mine(r.Context(), p.Explorer.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Subscription *subscriptionDTO `json:"subscription"`
		Entitlement  planDTO          `json:"entitlement"`
	}{
		Subscription: toSubscriptionDTO(sub),
		Entitlement:  toPlanDTO(plan),
	})
}
