package web

import (
	"net/http"
	"strconv"

	"companion-marketplace/internal/usecase"
)

type explorerAnalysisDTO struct {
	AcceptedMatches int     `json:"accepted_matches"`
	CompletedTrips  int     `json:"completed_trips"`
	AverageRating   float64 `json:"average_rating"`
}

type adminAnalysisDTO struct {
	Explorers          int            `json:"explorers"`
	CompletedTrips     int            `json:"completed_trips"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

func toAdminAnalysisDTO(a *usecase.AdminAnalysis) adminAnalysisDTO {
	dist := make(map[string]int, len(a.RatingDistribution))
	for rating, n := range a.RatingDistribution {
		dist[strconv.Itoa(rating)] = n
	}
	return adminAnalysisDTO{
		Explorers:          a.Explorers,
		CompletedTrips:     a.CompletedTrips,
		RatingDistribution: dist,
	}
}

func (s *Server) handleMyAnalysis(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	stats, err := s.analysisUC.ForExplorer(r.Context(), p.Explorer.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, explorerAnalysisDTO{
		AcceptedMatches: stats.AcceptedMatches,
		CompletedTrips:  stats.CompletedTrips,
		AverageRating:   stats.AverageRating,
	})
}

func (s *Server) handleAdminAnalysis(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analysisUC.Admin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdminAnalysisDTO(stats))
}
