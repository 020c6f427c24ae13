package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
)

type reviewDTO struct {
	ID         string    `json:"id"`
	MatchID    string    `json:"match_id"`
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReviewDTO(rv *model.Review) reviewDTO {
	return reviewDTO{
		ID:         rv.ID,
		MatchID:    rv.MatchID,
		ReviewerID: rv.ReviewerID,
		Rating:     rv.Rating,
		Comment:    rv.Comment,
		Status:     string(rv.Status),
		CreatedAt:  rv.CreatedAt,
	}
}

func toReviewDTOs(reviews []*model.Review) []reviewDTO {
	out := make([]reviewDTO, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReviewDTO(rv))
	}
	return out
}

type createReviewRequest struct {
	MatchID string `json:"match_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	var req createReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	review, err := s.reviewUC.Create(r.Context(), p.Explorer.ID, req.MatchID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewDTO(review))
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	review, err := s.reviewUC.GetByID(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewDTO(review))
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	var req updateReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	review, err := s.reviewUC.Update(r.Context(), p.Explorer.ID, chi.URLParam(r, "reviewID"), req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewDTO(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	if err := s.reviewUC.Delete(r.Context(), p.Explorer.ID, chi.URLParam(r, "reviewID")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "review deleted")
}

func reviewQueryFrom(r *http.Request) repository.ReviewQuery {
	return repository.ReviewQuery{
		Status: model.ReviewStatus(r.URL.Query().Get("status")),
		Page:   parsePage(r),
	}
}

func (s *Server) handleListMyReviews(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	q := reviewQueryFrom(r)
	reviews, total, err := s.reviewUC.ListMine(r.Context(), p.Explorer.ID, q)
	if err != nil {
		writeError(w, err)
		return
	}
	page, limit, _ := q.Normalize()
	writePage(w, toReviewDTOs(reviews), total, page, limit)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	q := reviewQueryFrom(r)
	reviews, total, err := s.reviewUC.List(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	page, limit, _ := q.Normalize()
	writePage(w, toReviewDTOs(reviews), total, page, limit)
}

type moderateReviewRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleModerateReview(w http.ResponseWriter, r *http.Request) {
	var req moderateReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	review, err := s.reviewUC.Moderate(r.Context(), chi.URLParam(r, "reviewID"), model.ReviewStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewDTO(review))
}
