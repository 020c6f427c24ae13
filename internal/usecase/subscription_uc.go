package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/adapter"
	"companion-marketplace/internal/domain/ports/repository"
	"companion-marketplace/internal/infra/logging"
	"companion-marketplace/internal/infra/metrics"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase answers entitlement questions and owns the
// subscription lifecycle. Activation is only ever reached through a
// reconciled payment and therefore runs inside that payment's transaction.
type SubscriptionUseCase interface {
	// Plans returns the fixed catalog.
	Plans(ctx context.Context) []model.Plan
	// Mine returns the caller's subscription row (nil when none) together
	// with the plan currently in effect.
	Mine(ctx context.Context, explorerID string) (*model.Subscription, model.Plan, error)
	// EntitlementFor resolves the plan in effect for explorerID at now: the
	// subscription's plan while its window is valid, the free tier otherwise.
	EntitlementFor(ctx context.Context, tx repository.Tx, explorerID string) (model.Plan, error)
	// ActivateForPayment upserts the subscription a reconciled payment
	// bought. Must be called inside the payment's transaction.
	ActivateForPayment(ctx context.Context, tx repository.Tx, p *model.Payment) (*model.Subscription, error)
	// FinishExpired deactivates active subscriptions whose window ended
	// before asOf and lowers the premium flag. Returns how many it closed.
	FinishExpired(ctx context.Context, asOf time.Time, limit int) (int, error)
}

type subscriptionUC struct {
	catalog   *model.Catalog
	subs      repository.SubscriptionRepository
	explorers repository.ExplorerRepository
	tm        repository.TransactionManager
	notifier  adapter.Notifier
	log       *zerolog.Logger
}

func NewSubscriptionUseCase(
	catalog *model.Catalog,
	subs repository.SubscriptionRepository,
	explorers repository.ExplorerRepository,
	tm repository.TransactionManager,
	notifier adapter.Notifier,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{
		catalog:   catalog,
		subs:      subs,
		explorers: explorers,
		tm:        tm,
		notifier:  notifier,
		log:       logger,
	}
}

func (u *subscriptionUC) Plans(ctx context.Context) []model.Plan {
	return u.catalog.List()
}

func (u *subscriptionUC) Mine(ctx context.Context, explorerID string) (*model.Subscription, model.Plan, error) {
	sub, err := u.subs.FindByExplorer(ctx, repository.NoTX, explorerID)
	if err != nil {
		return nil, model.Plan{}, err
	}
	plan, err := u.effectivePlan(sub, time.Now())
	if err != nil {
		return nil, model.Plan{}, err
	}
	return sub, plan, nil
}

func (u *subscriptionUC) EntitlementFor(ctx context.Context, tx repository.Tx, explorerID string) (model.Plan, error) {
	sub, err := u.subs.FindByExplorer(ctx, tx, explorerID)
	if err != nil {
		return model.Plan{}, err
	}
	return u.effectivePlan(sub, time.Now())
}

// effectivePlan falls back to the free tier for missing, inactive, or
// expired subscriptions.
func (u *subscriptionUC) effectivePlan(sub *model.Subscription, now time.Time) (model.Plan, error) {
	if sub.ValidAt(now) {
		if plan, err := u.catalog.Plan(sub.PlanName); err == nil {
			return plan, nil
		}
		// A subscription row referencing a plan the catalog no longer
		// carries still entitles the free tier rather than failing reads.
		u.log.Warn().Str("plan", string(sub.PlanName)).Msg("subscription references unknown plan")
	}
	return u.catalog.Plan(model.PlanFree)
}

func (u *subscriptionUC) ActivateForPayment(ctx context.Context, tx repository.Tx, p *model.Payment) (*model.Subscription, error) {
	plan, err := u.catalog.Plan(p.PlanName)
	if err != nil {
		return nil, err
	}
	sub, err := model.NewSubscription(uuid.NewString(), p.ExplorerID, plan, time.Now())
	if err != nil {
		return nil, err
	}
	if err := u.subs.Upsert(ctx, tx, sub); err != nil {
		return nil, err
	}
	if err := u.explorers.SetPremium(ctx, tx, p.ExplorerID, true); err != nil {
		return nil, err
	}
	metrics.IncSubscriptionActivated(string(plan.Name))
	return sub, nil
}

func (u *subscriptionUC) FinishExpired(ctx context.Context, asOf time.Time, limit int) (int, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.FinishExpired")()

	expired, err := u.subs.ListActiveExpired(ctx, repository.NoTX, asOf, limit)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, sub := range expired {
		sub := sub
		err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			if err := u.subs.Deactivate(ctx, tx, sub.ID); err != nil {
				return err
			}
			return u.explorers.SetPremium(ctx, tx, sub.ExplorerID, false)
		})
		if err != nil {
			u.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("failed to expire subscription")
			continue
		}
		closed++
		metrics.IncSubscriptionExpired(string(sub.PlanName))
		if u.notifier != nil {
			if nerr := u.notifier.SubscriptionExpired(ctx, sub.ExplorerID, sub.PlanName); nerr != nil {
				u.log.Warn().Err(nerr).Str("explorer_id", sub.ExplorerID).Msg("expiry notification failed")
			}
		}
	}
	return closed, nil
}
