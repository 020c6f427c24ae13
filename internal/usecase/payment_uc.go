package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/adapter"
	"companion-marketplace/internal/domain/ports/repository"
	"companion-marketplace/internal/infra/logging"
	"companion-marketplace/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// CheckoutURLs are the redirect and notification endpoints handed to the
// gateway on every checkout.
type CheckoutURLs struct {
	Success string
	Fail    string
	Cancel  string
	IPN     string
}

// FinalizeResult reports what a confirmation attempt did. Replayed means the
// payment was already PAID and nothing changed.
type FinalizeResult struct {
	Payment      *model.Payment
	Subscription *model.Subscription
	Succeeded    bool
	Replayed     bool
}

// PaymentUseCase owns checkout initiation and the reconciliation that turns
// a gateway confirmation into an entitlement. The transaction reference is
// the sole idempotency key: a reference is finalized at most once, no matter
// how many webhooks, redirects, or reconciler polls carry it.
type PaymentUseCase interface {
	// Initiate creates a PENDING payment priced from the catalog and opens
	// a gateway checkout. Returns the payment and the redirect URL.
	Initiate(ctx context.Context, explorerID string, plan model.PlanName) (*model.Payment, string, error)
	// Finalize reconciles one confirmation payload against the stored
	// payment. Success activates the subscription in the same transaction.
	Finalize(ctx context.Context, payload adapter.CallbackPayload) (*FinalizeResult, error)
	// GetByID returns the payment, owner only.
	GetByID(ctx context.Context, explorerID, paymentID string) (*model.Payment, error)
	// PendingOlderThan feeds the stale-payment reconciler.
	PendingOlderThan(ctx context.Context, olderThan time.Time, limit int) ([]*model.Payment, error)
}

type paymentUC struct {
	payments  repository.PaymentRepository
	explorers repository.ExplorerRepository
	catalog   *model.Catalog
	subs      SubscriptionUseCase
	gateway   adapter.PaymentGateway
	notifier  adapter.Notifier
	tm        repository.TransactionManager
	urls      CheckoutURLs
	log       *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	explorers repository.ExplorerRepository,
	catalog *model.Catalog,
	subs SubscriptionUseCase,
	gateway adapter.PaymentGateway,
	notifier adapter.Notifier,
	tm repository.TransactionManager,
	urls CheckoutURLs,
	logger *zerolog.Logger,
) *paymentUC {
	return &paymentUC{
		payments:  payments,
		explorers: explorers,
		catalog:   catalog,
		subs:      subs,
		gateway:   gateway,
		notifier:  notifier,
		tm:        tm,
		urls:      urls,
		log:       logger,
	}
}

func (u *paymentUC) Initiate(ctx context.Context, explorerID string, plan model.PlanName) (*model.Payment, string, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Initiate")()

	explorer, err := u.explorers.FindByID(ctx, repository.NoTX, explorerID)
	if err != nil {
		return nil, "", err
	}
	if explorer == nil {
		return nil, "", domain.ErrExplorerNotFound
	}
	p, err := u.catalog.Plan(plan)
	if err != nil {
		return nil, "", err
	}

	// The reference is ours, never the provider's; it is what every later
	// confirmation must echo back.
	ref := ulid.Make().String()
	pay, err := model.NewPayment(uuid.NewString(), explorerID, p, ref, u.gateway.Name())
	if err != nil {
		return nil, "", err
	}
	if err := u.payments.Save(ctx, repository.NoTX, pay); err != nil {
		return nil, "", err
	}

	session, err := u.gateway.InitiateCheckout(ctx, adapter.CheckoutRequest{
		TransactionID: ref,
		Amount:        pay.Amount,
		Currency:      pay.Currency,
		Description:   fmt.Sprintf("%s plan subscription", p.Name),
		SuccessURL:    u.urls.Success,
		FailURL:       u.urls.Fail,
		CancelURL:     u.urls.Cancel,
		IPNURL:        u.urls.IPN,
		CustomerName:  explorer.FullName,
	})
	if err != nil {
		// The row keeps the failure so the reconciler never re-polls it.
		if _, uerr := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, pay.ID, model.PaymentStatusFailed, nil); uerr != nil {
			u.log.Error().Err(uerr).Str("payment_id", pay.ID).Msg("failed to mark payment failed after checkout error")
		}
		metrics.IncPaymentFinalized(string(model.PaymentStatusFailed))
		return nil, "", fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	if err := u.payments.AttachGatewayResponse(ctx, repository.NoTX, pay.ID, session.Raw); err != nil {
		u.log.Warn().Err(err).Str("payment_id", pay.ID).Msg("failed to attach checkout response")
	}
	metrics.IncPaymentInitiated(string(p.Name))
	return pay, session.URL, nil
}

func (u *paymentUC) Finalize(ctx context.Context, payload adapter.CallbackPayload) (*FinalizeResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Finalize")()

	if payload.TransactionID == "" {
		return nil, domain.ErrMissingReference
	}
	pay, err := u.payments.FindByTransactionID(ctx, repository.NoTX, payload.TransactionID)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, domain.ErrPaymentNotFound
	}

	switch pay.Status {
	case model.PaymentStatusPaid:
		// Duplicate confirmation of a settled payment is a success no-op.
		return &FinalizeResult{Payment: pay, Succeeded: true, Replayed: true}, nil
	case model.PaymentStatusFailed:
		return nil, domain.ErrAlreadyProcessed
	}

	// Amount first: a confirmation carrying the wrong amount is tampering
	// whatever its status says, and the mismatch must surface as such.
	if payload.Amount != pay.Amount {
		u.markFailed(ctx, pay.ID, payload.Raw)
		u.log.Warn().
			Str("transaction_id", pay.TransactionID).
			Int64("expected", pay.Amount).
			Int64("got", payload.Amount).
			Msg("payment amount mismatch")
		metrics.IncPaymentFinalized(string(model.PaymentStatusFailed))
		return nil, domain.ErrAmountMismatch
	}
	if !payload.Succeeded() {
		// Provider-reported failure is durable but not an error from the
		// caller's point of view: the checkout simply did not go through.
		u.markFailed(ctx, pay.ID, payload.Raw)
		pay.Status = model.PaymentStatusFailed
		metrics.IncPaymentFinalized(string(model.PaymentStatusFailed))
		return &FinalizeResult{Payment: pay, Succeeded: false}, nil
	}

	var result FinalizeResult
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Re-read under lock; a concurrent finalize may have won the race
		// between the check above and here.
		locked, err := u.payments.FindByTransactionID(ctx, tx, payload.TransactionID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrPaymentNotFound
		}
		switch locked.Status {
		case model.PaymentStatusPaid:
			result = FinalizeResult{Payment: locked, Succeeded: true, Replayed: true}
			return nil
		case model.PaymentStatusFailed:
			return domain.ErrAlreadyProcessed
		}
		ok, err := u.payments.UpdateStatusIfPending(ctx, tx, locked.ID, model.PaymentStatusPaid, payload.Raw)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyProcessed
		}
		locked.Status = model.PaymentStatusPaid
		sub, err := u.subs.ActivateForPayment(ctx, tx, locked)
		if err != nil {
			return err
		}
		result = FinalizeResult{Payment: locked, Subscription: sub, Succeeded: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Replayed {
		metrics.IncPaymentFinalized(string(model.PaymentStatusPaid))
		metrics.AddPaymentRevenue(result.Payment.Currency, result.Payment.Amount)
		if u.notifier != nil {
			if nerr := u.notifier.PaymentConfirmed(ctx, result.Payment.ExplorerID, result.Payment.PlanName); nerr != nil {
				u.log.Warn().Err(nerr).Str("explorer_id", result.Payment.ExplorerID).Msg("payment confirmation notice failed")
			}
		}
	}
	return &result, nil
}

// markFailed writes the terminal FAILED state outside any caller
// transaction so an error return cannot roll it back.
func (u *paymentUC) markFailed(ctx context.Context, paymentID string, raw map[string]any) {
	if _, err := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, paymentID, model.PaymentStatusFailed, raw); err != nil {
		u.log.Error().Err(err).Str("payment_id", paymentID).Msg("failed to mark payment failed")
	}
}

func (u *paymentUC) GetByID(ctx context.Context, explorerID, paymentID string) (*model.Payment, error) {
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrPaymentNotFound
	}
	if p.ExplorerID != explorerID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (u *paymentUC) PendingOlderThan(ctx context.Context, olderThan time.Time, limit int) ([]*model.Payment, error) {
	return u.payments.ListPendingOlderThan(ctx, repository.NoTX, olderThan, limit)
}
