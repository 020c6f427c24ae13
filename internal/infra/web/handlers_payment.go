package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/adapter"
	"companion-marketplace/internal/infra/logging"
	"companion-marketplace/internal/infra/payment"
)

type paymentDTO struct {
	ID            string    `json:"id"`
	PlanName      string    `json:"plan_name"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transaction_id"`
	Gateway       string    `json:"gateway"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPaymentDTO(p *model.Payment) paymentDTO {
	return paymentDTO{
		ID:            p.ID,
		PlanName:      string(p.PlanName),
		Amount:        p.Amount,
		Currency:      p.Currency,
		TransactionID: p.TransactionID,
		Gateway:       p.Gateway,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
	}
}

type initiatePaymentRequest struct {
	Plan string `json:"plan"`
}

func (s *Server) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	var req initiatePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pay, checkoutURL, err := s.paymentUC.Initiate(r.Context(), p.Explorer.ID, model.PlanName(req.Plan))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Payment     paymentDTO `json:"payment"`
		CheckoutURL string     `json:"checkout_url"`
	}{
		Payment:     toPaymentDTO(pay),
		CheckoutURL: checkoutURL,
	})
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	pay, err := s.paymentUC.GetByID(r.Context(), p.Explorer.ID, chi.URLParam(r, "paymentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(pay))
}

// handleSSLCommerzIPN receives the provider's server-to-server confirmation.
// The signed form is the source of truth for which transaction it concerns;
// finalization re-checks everything against the stored payment.
func (s *Server) handleSSLCommerzIPN(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed form body")
		return
	}
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}

	if !payment.VerifyIPNSignature(s.cfg.Payment.SSLCommerz.StorePassword, form) {
		l := logging.With(r.Context(), s.log)
		l.Warn().Str("tran_id", form["tran_id"]).Msg("IPN signature rejected")
		writeMessage(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	amount, _ := strconv.ParseFloat(form["amount"], 64)
	raw := make(map[string]any, len(form))
	for k, v := range form {
		raw[k] = v
	}

	res, err := s.paymentUC.Finalize(r.Context(), adapter.CallbackPayload{
		TransactionID: form["tran_id"],
		Status:        form["status"],
		Amount:        int64(amount),
		ProviderID:    form["val_id"],
		Raw:           raw,
	})
	if err != nil {
		// The provider retries until it sees 200; a settled payment is done.
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			writeMessage(w, http.StatusOK, "already processed")
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Payment  paymentDTO `json:"payment"`
		Replayed bool       `json:"replayed"`
	}{
		Payment:  toPaymentDTO(res.Payment),
		Replayed: res.Replayed,
	})
}
