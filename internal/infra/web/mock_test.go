//go:build !integration

package web

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"companion-marketplace/internal/config"
	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/adapter"
	"companion-marketplace/internal/domain/ports/repository"
	"companion-marketplace/internal/usecase"
)

// --- Mock use cases ---
//
// Handlers are tested against the use-case ports directly; each mock returns
// a fixed answer unless a Func hook overrides it.

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func testExplorer(userID string) *model.Explorer {
	return &model.Explorer{
		ID:        "explorer-" + userID,
		UserID:    userID,
		FullName:  "Explorer " + userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

type mockExplorerUC struct {
	RegisterOrFetchFunc func(ctx context.Context, userID, fullName string) (*model.Explorer, error)
	GetByIDFunc         func(ctx context.Context, explorerID string) (*model.Explorer, error)
	UpdateProfileFunc   func(ctx context.Context, explorerID, fullName, profilePicture string) (*model.Explorer, error)
}

var _ usecase.ExplorerUseCase = (*mockExplorerUC)(nil)

func (m *mockExplorerUC) RegisterOrFetch(ctx context.Context, userID, fullName string) (*model.Explorer, error) {
	if m.RegisterOrFetchFunc != nil {
		return m.RegisterOrFetchFunc(ctx, userID, fullName)
	}
	return testExplorer(userID), nil
}

func (m *mockExplorerUC) GetByID(ctx context.Context, explorerID string) (*model.Explorer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, explorerID)
	}
	return nil, domain.ErrExplorerNotFound
}

func (m *mockExplorerUC) UpdateProfile(ctx context.Context, explorerID, fullName, profilePicture string) (*model.Explorer, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, explorerID, fullName, profilePicture)
	}
	e := testExplorer("u1")
	e.ID = explorerID
	e.FullName = fullName
	e.ProfilePicture = profilePicture
	return e, nil
}

type mockTripUC struct {
	CreateFunc        func(ctx context.Context, creatorID string, in usecase.TripInput) (*model.Trip, error)
	UpdateFunc        func(ctx context.Context, explorerID, tripID string, in usecase.TripInput) (*model.Trip, error)
	DeleteFunc        func(ctx context.Context, explorerID, tripID string) error
	GetByIDFunc       func(ctx context.Context, tripID string) (*model.Trip, error)
	ListFunc          func(ctx context.Context, q repository.TripQuery) ([]*model.Trip, int, error)
	ListMineFunc      func(ctx context.Context, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error)
	ListAvailableFunc func(ctx context.Context, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error)
	UpdateStatusFunc  func(ctx context.Context, explorerID, tripID string, to model.TripStatus) (*model.Trip, error)
}

var _ usecase.TripUseCase = (*mockTripUC)(nil)

func (m *mockTripUC) Create(ctx context.Context, creatorID string, in usecase.TripInput) (*model.Trip, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, creatorID, in)
	}
	t, err := model.NewTrip("trip-1", creatorID, in.Title, in.Destination)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (m *mockTripUC) Update(ctx context.Context, explorerID, tripID string, in usecase.TripInput) (*model.Trip, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, explorerID, tripID, in)
	}
	return nil, domain.ErrTripNotFound
}

func (m *mockTripUC) Delete(ctx context.Context, explorerID, tripID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, explorerID, tripID)
	}
	return nil
}

func (m *mockTripUC) GetByID(ctx context.Context, tripID string) (*model.Trip, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tripID)
	}
	return nil, domain.ErrTripNotFound
}

func (m *mockTripUC) List(ctx context.Context, q repository.TripQuery) ([]*model.Trip, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	return nil, 0, nil
}

func (m *mockTripUC) ListMine(ctx context.Context, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error) {
	if m.ListMineFunc != nil {
		return m.ListMineFunc(ctx, explorerID, q)
	}
	return nil, 0, nil
}

func (m *mockTripUC) ListAvailable(ctx context.Context, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error) {
	if m.ListAvailableFunc != nil {
		return m.ListAvailableFunc(ctx, explorerID, q)
	}
	return nil, 0, nil
}

func (m *mockTripUC) UpdateStatus(ctx context.Context, explorerID, tripID string, to model.TripStatus) (*model.Trip, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, explorerID, tripID, to)
	}
	return nil, domain.ErrTripNotFound
}

type mockMatchUC struct {
	RequestFunc  func(ctx context.Context, requesterID, tripID string) (*model.Match, error)
	AcceptFunc   func(ctx context.Context, explorerID, matchID string) (*model.Match, error)
	RejectFunc   func(ctx context.Context, explorerID, matchID string) (*model.Match, error)
	CancelFunc   func(ctx context.Context, explorerID, matchID string) (*model.Match, error)
	CompleteFunc func(ctx context.Context, explorerID, matchID string) (*model.Match, error)
	GetByIDFunc  func(ctx context.Context, explorerID, matchID string) (*model.Match, error)
	ListMineFunc func(ctx context.Context, explorerID string) ([]*model.Match, error)
	ListFunc     func(ctx context.Context, q repository.MatchQuery) ([]*model.Match, int, error)
}

var _ usecase.MatchUseCase = (*mockMatchUC)(nil)

func (m *mockMatchUC) Request(ctx context.Context, requesterID, tripID string) (*model.Match, error) {
	if m.RequestFunc != nil {
		return m.RequestFunc(ctx, requesterID, tripID)
	}
	return model.NewMatch("match-1", requesterID, "recipient-1", tripID)
}

func (m *mockMatchUC) Accept(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, explorerID, matchID)
	}
	return nil, domain.ErrMatchNotFound
}

func (m *mockMatchUC) Reject(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, explorerID, matchID)
	}
	return nil, domain.ErrMatchNotFound
}

func (m *mockMatchUC) Cancel(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, explorerID, matchID)
	}
	return nil, domain.ErrMatchNotFound
}

func (m *mockMatchUC) Complete(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, explorerID, matchID)
	}
	return nil, domain.ErrMatchNotFound
}

func (m *mockMatchUC) GetByID(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, explorerID, matchID)
	}
	return nil, domain.ErrMatchNotFound
}

func (m *mockMatchUC) ListMine(ctx context.Context, explorerID string) ([]*model.Match, error) {
	if m.ListMineFunc != nil {
		return m.ListMineFunc(ctx, explorerID)
	}
	return nil, nil
}

func (m *mockMatchUC) List(ctx context.Context, q repository.MatchQuery) ([]*model.Match, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	return nil, 0, nil
}

type mockSubUC struct {
	PlansFunc              func(ctx context.Context) []model.Plan
	MineFunc               func(ctx context.Context, explorerID string) (*model.Subscription, model.Plan, error)
	EntitlementForFunc     func(ctx context.Context, tx repository.Tx, explorerID string) (model.Plan, error)
	ActivateForPaymentFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) (*model.Subscription, error)
	FinishExpiredFunc      func(ctx context.Context, asOf time.Time, limit int) (int, error)
}

var _ usecase.SubscriptionUseCase = (*mockSubUC)(nil)

func (m *mockSubUC) Plans(ctx context.Context) []model.Plan {
	if m.PlansFunc != nil {
		return m.PlansFunc(ctx)
	}
	return model.DefaultCatalog().List()
}

func (m *mockSubUC) Mine(ctx context.Context, explorerID string) (*model.Subscription, model.Plan, error) {
	if m.MineFunc != nil {
		return m.MineFunc(ctx, explorerID)
	}
	free, _ := model.DefaultCatalog().Plan(model.PlanFree)
	return nil, free, nil
}

func (m *mockSubUC) EntitlementFor(ctx context.Context, tx repository.Tx, explorerID string) (model.Plan, error) {
	if m.EntitlementForFunc != nil {
		return m.EntitlementForFunc(ctx, tx, explorerID)
	}
	free, _ := model.DefaultCatalog().Plan(model.PlanFree)
	return free, nil
}

func (m *mockSubUC) ActivateForPayment(ctx context.Context, tx repository.Tx, p *model.Payment) (*model.Subscription, error) {
	if m.ActivateForPaymentFunc != nil {
		return m.ActivateForPaymentFunc(ctx, tx, p)
	}
	return nil, nil
}

func (m *mockSubUC) FinishExpired(ctx context.Context, asOf time.Time, limit int) (int, error) {
	if m.FinishExpiredFunc != nil {
		return m.FinishExpiredFunc(ctx, asOf, limit)
	}
	return 0, nil
}

type mockPaymentUC struct {
	InitiateFunc        func(ctx context.Context, explorerID string, plan model.PlanName) (*model.Payment, string, error)
	FinalizeFunc        func(ctx context.Context, payload adapter.CallbackPayload) (*usecase.FinalizeResult, error)
	GetByIDFunc         func(ctx context.Context, explorerID, paymentID string) (*model.Payment, error)
	PendingOlderThFunc  func(ctx context.Context, olderThan time.Time, limit int) ([]*model.Payment, error)
}

var _ usecase.PaymentUseCase = (*mockPaymentUC)(nil)

func (m *mockPaymentUC) Initiate(ctx context.Context, explorerID string, plan model.PlanName) (*model.Payment, string, error) {
	if m.InitiateFunc != nil {
		return m.InitiateFunc(ctx, explorerID, plan)
	}
	return nil, "", domain.ErrUnknownPlan
}

func (m *mockPaymentUC) Finalize(ctx context.Context, payload adapter.CallbackPayload) (*usecase.FinalizeResult, error) {
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc(ctx, payload)
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *mockPaymentUC) GetByID(ctx context.Context, explorerID, paymentID string) (*model.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, explorerID, paymentID)
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *mockPaymentUC) PendingOlderThan(ctx context.Context, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if m.PendingOlderThFunc != nil {
		return m.PendingOlderThFunc(ctx, olderThan, limit)
	}
	return nil, nil
}

type mockReviewUC struct {
	CreateFunc   func(ctx context.Context, reviewerID, matchID string, rating int, comment string) (*model.Review, error)
	GetByIDFunc  func(ctx context.Context, reviewID string) (*model.Review, error)
	UpdateFunc   func(ctx context.Context, explorerID, reviewID string, rating int, comment string) (*model.Review, error)
	DeleteFunc   func(ctx context.Context, explorerID, reviewID string) error
	ListMineFunc func(ctx context.Context, explorerID string, q repository.ReviewQuery) ([]*model.Review, int, error)
	ListFunc     func(ctx context.Context, q repository.ReviewQuery) ([]*model.Review, int, error)
	ModerateFunc func(ctx context.Context, reviewID string, status model.ReviewStatus) (*model.Review, error)
}

var _ usecase.ReviewUseCase = (*mockReviewUC)(nil)

func (m *mockReviewUC) Create(ctx context.Context, reviewerID, matchID string, rating int, comment string) (*model.Review, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reviewerID, matchID, rating, comment)
	}
	return model.NewReview("review-1", matchID, reviewerID, rating, comment)
}

func (m *mockReviewUC) GetByID(ctx context.Context, reviewID string) (*model.Review, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, reviewID)
	}
	return nil, domain.ErrReviewNotFound
}

func (m *mockReviewUC) Update(ctx context.Context, explorerID, reviewID string, rating int, comment string) (*model.Review, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, explorerID, reviewID, rating, comment)
	}
	return nil, domain.ErrReviewNotFound
}

func (m *mockReviewUC) Delete(ctx context.Context, explorerID, reviewID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, explorerID, reviewID)
	}
	return nil
}

func (m *mockReviewUC) ListMine(ctx context.Context, explorerID string, q repository.ReviewQuery) ([]*model.Review, int, error) {
	if m.ListMineFunc != nil {
		return m.ListMineFunc(ctx, explorerID, q)
	}
	return nil, 0, nil
}

func (m *mockReviewUC) List(ctx context.Context, q repository.ReviewQuery) ([]*model.Review, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	return nil, 0, nil
}

func (m *mockReviewUC) Moderate(ctx context.Context, reviewID string, status model.ReviewStatus) (*model.Review, error) {
	if m.ModerateFunc != nil {
		return m.ModerateFunc(ctx, reviewID, status)
	}
	return nil, domain.ErrReviewNotFound
}

// --- Test server wiring ---

type mockAnalysisUC struct {
	ForExplorerFunc func(ctx context.Context, explorerID string) (*usecase.ExplorerAnalysis, error)
	AdminFunc       func(ctx context.Context) (*usecase.AdminAnalysis, error)
}

var _ usecase.AnalysisUseCase = (*mockAnalysisUC)(nil)

func (m *mockAnalysisUC) ForExplorer(ctx context.Context, explorerID string) (*usecase.ExplorerAnalysis, error) {
	if m.ForExplorerFunc != nil {
		return m.ForExplorerFunc(ctx, explorerID)
	}
	return &usecase.ExplorerAnalysis{}, nil
}

func (m *mockAnalysisUC) Admin(ctx context.Context) (*usecase.AdminAnalysis, error) {
	if m.AdminFunc != nil {
		return m.AdminFunc(ctx)
	}
	return &usecase.AdminAnalysis{RatingDistribution: map[int]int{}}, nil
}

type testDeps struct {
	explorers *mockExplorerUC
	trips     *mockTripUC
	matches   *mockMatchUC
	subs      *mockSubUC
	payments  *mockPaymentUC
	reviews   *mockReviewUC
	analysis  *mockAnalysisUC
}

func newTestServer(d *testDeps) (*Server, *AuthManager) {
	if d.explorers == nil {
		d.explorers = &mockExplorerUC{}
	}
	if d.trips == nil {
		d.trips = &mockTripUC{}
	}
	if d.matches == nil {
		d.matches = &mockMatchUC{}
	}
	if d.subs == nil {
		d.subs = &mockSubUC{}
	}
	if d.payments == nil {
		d.payments = &mockPaymentUC{}
	}
	if d.reviews == nil {
		d.reviews = &mockReviewUC{}
	}
	if d.analysis == nil {
		d.analysis = &mockAnalysisUC{}
	}

	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Payment.SSLCommerz.StorePassword = "test-store-pass"

	auth := NewAuthManager("test-secret", "test", time.Hour)
	srv := NewServer(cfg, auth, d.explorers, d.trips, d.matches, d.subs, d.payments, d.reviews, d.analysis, newTestLogger())
	return srv, auth
}
