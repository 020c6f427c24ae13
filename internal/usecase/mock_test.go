//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/adapter"
	"companion-marketplace/internal/domain/ports/repository"
)

// In-memory repositories backing the use case tests. Every method can be
// overridden per-test through its Func field; the map-backed default is
// enough for the happy paths. Misses return (nil, nil), matching the real
// repositories' no-rows behavior.

// ---- Explorer ----

type MockExplorerRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Explorer

	SaveFunc       func(ctx context.Context, tx repository.Tx, e *model.Explorer) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.Explorer, error)
	SetPremiumFunc func(ctx context.Context, tx repository.Tx, id string, premium bool) error
}

var _ repository.ExplorerRepository = (*MockExplorerRepo)(nil)

func NewMockExplorerRepo() *MockExplorerRepo {
	return &MockExplorerRepo{store: make(map[string]*model.Explorer)}
}

func (r *MockExplorerRepo) Save(ctx context.Context, tx repository.Tx, e *model.Explorer) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.store[e.ID] = &cp
	return nil
}

func (r *MockExplorerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Explorer, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.store[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r *MockExplorerRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Explorer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.store {
		if e.UserID == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MockExplorerRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store), nil
}

func (r *MockExplorerRepo) SetPremium(ctx context.Context, tx repository.Tx, id string, premium bool) error {
	if r.SetPremiumFunc != nil {
		return r.SetPremiumFunc(ctx, tx, id, premium)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.store[id]; ok {
		e.IsPremium = premium
	}
	return nil
}

// ---- Trip ----

type MockTripRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Trip

	FindByIDFunc          func(ctx context.Context, tx repository.Tx, id string) (*model.Trip, error)
	SetMatchCompletedFunc func(ctx context.Context, tx repository.Tx, id string, locked bool) error
	UpdateStatusFunc      func(ctx context.Context, tx repository.Tx, id string, status model.TripStatus, matchCompleted bool) error
}

var _ repository.TripRepository = (*MockTripRepo)(nil)

func NewMockTripRepo() *MockTripRepo {
	return &MockTripRepo{store: make(map[string]*model.Trip)}
}

func (r *MockTripRepo) Save(ctx context.Context, tx repository.Tx, t *model.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.store[t.ID] = &cp
	return nil
}

func (r *MockTripRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Trip, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.store[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *MockTripRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

func (r *MockTripRepo) SetMatchCompleted(ctx context.Context, tx repository.Tx, id string, locked bool) error {
	if r.SetMatchCompletedFunc != nil {
		return r.SetMatchCompletedFunc(ctx, tx, id, locked)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.store[id]; ok {
		t.MatchCompleted = locked
	}
	return nil
}

func (r *MockTripRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.TripStatus, matchCompleted bool) error {
	if r.UpdateStatusFunc != nil {
		return r.UpdateStatusFunc(ctx, tx, id, status, matchCompleted)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.store[id]; ok {
		t.Status = status
		t.MatchCompleted = matchCompleted
	}
	return nil
}

func (r *MockTripRepo) List(ctx context.Context, tx repository.Tx, q repository.TripQuery) ([]*model.Trip, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Trip
	for _, t := range r.store {
		cp := *t
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *MockTripRepo) ListByCreator(ctx context.Context, tx repository.Tx, creatorID string, q repository.TripQuery) ([]*model.Trip, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Trip
	for _, t := range r.store {
		if t.CreatorID == creatorID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (r *MockTripRepo) ListAvailable(ctx context.Context, tx repository.Tx, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Trip
	for _, t := range r.store {
		if t.CreatorID != explorerID && !t.MatchCompleted && !t.Status.Terminal() {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (r *MockTripRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.TripStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.store {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *MockTripRepo) CountByCreatorAndStatus(ctx context.Context, tx repository.Tx, creatorID string, status model.TripStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.store {
		if t.CreatorID == creatorID && t.Status == status {
			n++
		}
	}
	return n, nil
}

// ---- Match ----

type MockMatchRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Match

	FindByIDFunc            func(ctx context.Context, tx repository.Tx, id string) (*model.Match, error)
	CountOpenByExplorerFunc func(ctx context.Context, tx repository.Tx, explorerID string) (int, error)
	UpdateStatusFunc        func(ctx context.Context, tx repository.Tx, id string, status model.MatchStatus) error
	CascadeStatusFunc       func(ctx context.Context, tx repository.Tx, tripID string, from, to model.MatchStatus) (int, error)
}

var _ repository.MatchRepository = (*MockMatchRepo)(nil)

func NewMockMatchRepo() *MockMatchRepo {
	return &MockMatchRepo{store: make(map[string]*model.Match)}
}

func (r *MockMatchRepo) Save(ctx context.Context, tx repository.Tx, m *model.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.store[m.ID] = &cp
	return nil
}

func (r *MockMatchRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Match, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.store[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *MockMatchRepo) FindForTripPair(ctx context.Context, tx repository.Tx, tripID, a, b string) (*model.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.store {
		if m.TripID != tripID {
			continue
		}
		if (m.RequesterID == a && m.RecipientID == b) || (m.RequesterID == b && m.RecipientID == a) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MockMatchRepo) CountOpenByExplorer(ctx context.Context, tx repository.Tx, explorerID string) (int, error) {
	if r.CountOpenByExplorerFunc != nil {
		return r.CountOpenByExplorerFunc(ctx, tx, explorerID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, m := range r.store {
		if m.RequesterID == explorerID && m.Status.Open() {
			n++
		}
	}
	return n, nil
}

func (r *MockMatchRepo) ListByTripAndStatus(ctx context.Context, tx repository.Tx, tripID string, status model.MatchStatus) ([]*model.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Match
	for _, m := range r.store {
		if m.TripID == tripID && m.Status == status {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMatchRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.MatchStatus) error {
	if r.UpdateStatusFunc != nil {
		return r.UpdateStatusFunc(ctx, tx, id, status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.store[id]; ok {
		m.Status = status
		m.UpdatedAt = time.Now()
	}
	return nil
}

func (r *MockMatchRepo) CascadeStatus(ctx context.Context, tx repository.Tx, tripID string, from, to model.MatchStatus) (int, error) {
	if r.CascadeStatusFunc != nil {
		return r.CascadeStatusFunc(ctx, tx, tripID, from, to)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.store {
		if m.TripID == tripID && m.Status == from {
			m.Status = to
			n++
		}
	}
	return n, nil
}

func (r *MockMatchRepo) ListByParticipant(ctx context.Context, tx repository.Tx, explorerID string) ([]*model.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Match
	for _, m := range r.store {
		if m.Participant(explorerID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMatchRepo) List(ctx context.Context, tx repository.Tx, q repository.MatchQuery) ([]*model.Match, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Match
	for _, m := range r.store {
		if q.Status != "" && m.Status != q.Status {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *MockMatchRepo) CountByParticipantAndStatus(ctx context.Context, tx repository.Tx, explorerID string, status model.MatchStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, m := range r.store {
		if m.Participant(explorerID) && m.Status == status {
			n++
		}
	}
	return n, nil
}

// ---- Subscription ----

type MockSubscriptionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription // by explorer id

	UpsertFunc         func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindByExplorerFunc func(ctx context.Context, tx repository.Tx, explorerID string) (*model.Subscription, error)
	DeactivateFunc     func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (r *MockSubscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.store[s.ExplorerID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByExplorer(ctx context.Context, tx repository.Tx, explorerID string) (*model.Subscription, error) {
	if r.FindByExplorerFunc != nil {
		return r.FindByExplorerFunc(ctx, tx, explorerID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.store[explorerID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *MockSubscriptionRepo) ListActiveExpired(ctx context.Context, tx repository.Tx, asOf time.Time, limit int) ([]*model.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range r.store {
		if s.IsActive && s.EndDate.Before(asOf) {
			cp := *s
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	if r.DeactivateFunc != nil {
		return r.DeactivateFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.store {
		if s.ID == id {
			s.IsActive = false
		}
	}
	return nil
}

// ---- Payment ----

type MockPaymentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Payment // by id

	SaveFunc                  func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	FindByTransactionIDFunc   func(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error)
	UpdateStatusIfPendingFunc func(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, raw map[string]any) (bool, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.Payment)}
}

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.store[p.ID] = &cp
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.store[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *MockPaymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	if r.FindByTransactionIDFunc != nil {
		return r.FindByTransactionIDFunc(ctx, tx, transactionID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.store {
		if p.TransactionID == transactionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, raw map[string]any) (bool, error) {
	if r.UpdateStatusIfPendingFunc != nil {
		return r.UpdateStatusIfPendingFunc(ctx, tx, id, status, raw)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.store[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	if raw != nil {
		p.RawResponse = raw
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *MockPaymentRepo) AttachGatewayResponse(ctx context.Context, tx repository.Tx, id string, raw map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.store[id]; ok {
		p.RawResponse = raw
	}
	return nil
}

func (r *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Payment
	for _, p := range r.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ---- Review ----

type MockReviewRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Review

	SaveFunc                   func(ctx context.Context, tx repository.Tx, r *model.Review) error
	FindByMatchAndReviewerFunc func(ctx context.Context, tx repository.Tx, matchID, reviewerID string) (*model.Review, error)
}

var _ repository.ReviewRepository = (*MockReviewRepo)(nil)

func NewMockReviewRepo() *MockReviewRepo {
	return &MockReviewRepo{store: make(map[string]*model.Review)}
}

func (r *MockReviewRepo) Save(ctx context.Context, tx repository.Tx, rv *model.Review) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, rv)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rv
	r.store[rv.ID] = &cp
	return nil
}

func (r *MockReviewRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rv, ok := r.store[id]; ok {
		cp := *rv
		return &cp, nil
	}
	return nil, nil
}

func (r *MockReviewRepo) FindByMatchAndReviewer(ctx context.Context, tx repository.Tx, matchID, reviewerID string) (*model.Review, error) {
	if r.FindByMatchAndReviewerFunc != nil {
		return r.FindByMatchAndReviewerFunc(ctx, tx, matchID, reviewerID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rv := range r.store {
		if rv.MatchID == matchID && rv.ReviewerID == reviewerID {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MockReviewRepo) Update(ctx context.Context, tx repository.Tx, rv *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rv
	r.store[rv.ID] = &cp
	return nil
}

func (r *MockReviewRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

func (r *MockReviewRepo) ListByReviewer(ctx context.Context, tx repository.Tx, reviewerID string, q repository.ReviewQuery) ([]*model.Review, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Review
	for _, rv := range r.store {
		if rv.ReviewerID == reviewerID {
			cp := *rv
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (r *MockReviewRepo) List(ctx context.Context, tx repository.Tx, q repository.ReviewQuery) ([]*model.Review, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Review
	for _, rv := range r.store {
		if q.Status != "" && rv.Status != q.Status {
			continue
		}
		cp := *rv
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *MockReviewRepo) AverageRatingByReviewer(ctx context.Context, tx repository.Tx, reviewerID string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum, n := 0, 0
	for _, rv := range r.store {
		if rv.ReviewerID == reviewerID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (r *MockReviewRepo) CountByRating(ctx context.Context, tx repository.Tx) (map[int]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dist := map[int]int{}
	for _, rv := range r.store {
		dist[rv.Rating]++
	}
	return dist, nil
}

// ---- Gateway ----

type MockPaymentGateway struct {
	InitiateCheckoutFunc    func(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error)
	ValidateTransactionFunc func(ctx context.Context, transactionID string) (*adapter.CallbackPayload, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (g *MockPaymentGateway) Name() string { return "mock" }

func (g *MockPaymentGateway) InitiateCheckout(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	if g.InitiateCheckoutFunc != nil {
		return g.InitiateCheckoutFunc(ctx, req)
	}
	return &adapter.CheckoutSession{URL: "https://pay.example/" + req.TransactionID, Raw: map[string]any{"status": "SUCCESS"}}, nil
}

func (g *MockPaymentGateway) ValidateTransaction(ctx context.Context, transactionID string) (*adapter.CallbackPayload, error) {
	if g.ValidateTransactionFunc != nil {
		return g.ValidateTransactionFunc(ctx, transactionID)
	}
	return &adapter.CallbackPayload{TransactionID: transactionID, Status: "VALID"}, nil
}

// ---- Notifier ----

type MockNotifier struct {
	mu        sync.Mutex
	Confirmed []string
	Expired   []string
}

var _ adapter.Notifier = (*MockNotifier)(nil)

func (n *MockNotifier) PaymentConfirmed(ctx context.Context, explorerID string, plan model.PlanName) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Confirmed = append(n.Confirmed, explorerID)
	return nil
}

func (n *MockNotifier) SubscriptionExpired(ctx context.Context, explorerID string, plan model.PlanName) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Expired = append(n.Expired, explorerID)
	return nil
}

// ---- Transaction manager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// WithTx runs fn immediately with NoTX unless a test installs its own
// behavior.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
