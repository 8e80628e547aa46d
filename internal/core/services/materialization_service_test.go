package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	"github.com/SscSPs/money_recurrence/internal/core/services"
	"github.com/SscSPs/money_recurrence/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const ownerID = "owner-1"

func fixedClock(s string) services.Clock {
	t := domain.MustParseDate(s).Time.Add(15 * time.Hour)
	return func() time.Time { return t }
}

func noBackoff(int) time.Duration { return 0 }

func monthlyOn31st(id string) domain.Recurrence {
	return domain.Recurrence{
		RecurrenceID: id,
		OwnerID:      ownerID,
		Description:  "Rent",
		Amount:       decimal.RequireFromString("-950.00"),
		Direction:    domain.Expense,
		Frequency:    domain.Monthly,
		StartDate:    domain.MustParseDate("2024-01-31"),
		IsActive:     true,
	}
}

func dueDates(txns []domain.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.DueDate.String()
	}
	return out
}

// MockPublisher is a mock type for the EventPublisher interface
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishMaterialized(ctx context.Context, ownerID string, result domain.MaterializationResult) error {
	args := m.Called(ctx, ownerID, result)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTransactionWriter is a mock type for the TransactionWriter interface
type MockTransactionWriter struct {
	mock.Mock
}

func (m *MockTransactionWriter) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// racingStore simulates another process that materializes the same due date
// right before our first marker update lands.
type racingStore struct {
	*memory.Store
	once sync.Once
}

func (r *racingStore) UpdateRecurrenceLastMaterialized(ctx context.Context, recurrenceID string, expected *domain.Date, next domain.Date) error {
	r.once.Do(func() {
		_ = r.Store.UpdateRecurrenceLastMaterialized(ctx, recurrenceID, expected, next)
	})
	return r.Store.UpdateRecurrenceLastMaterialized(ctx, recurrenceID, expected, next)
}

// flakyStore fails CreateTransaction with a transient error on the given call numbers.
type flakyStore struct {
	*memory.Store
	mu     sync.Mutex
	calls  int
	failOn map[int]bool
}

func (f *flakyStore) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	f.mu.Lock()
	f.calls++
	fail := f.failOn[f.calls]
	f.mu.Unlock()
	if fail {
		return apperrors.ErrStorageUnavailable
	}
	return f.Store.CreateTransaction(ctx, txn)
}

// --- Test Suite Setup ---

type MaterializationServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	service *services.MaterializationService
}

func (suite *MaterializationServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.NewStore()
	suite.service = services.NewMaterializationService(suite.store, suite.store,
		services.WithMaterializationClock(fixedClock("2024-04-30")),
		services.WithBackoff(noBackoff),
	)
}

func (suite *MaterializationServiceTestSuite) save(r domain.Recurrence) {
	suite.Require().NoError(suite.store.SaveRecurrence(suite.ctx, r))
}

func (suite *MaterializationServiceTestSuite) reload(id string) *domain.Recurrence {
	r, err := suite.store.FindRecurrenceByID(suite.ctx, id)
	suite.Require().NoError(err)
	return r
}

func (suite *MaterializationServiceTestSuite) stored(id string) []domain.Transaction {
	txns, err := suite.store.ListTransactionsByRecurrence(suite.ctx, id)
	suite.Require().NoError(err)
	return txns
}

// --- Test Cases ---

func (suite *MaterializationServiceTestSuite) TestMaterializeDue_MonthEndScenarioAndIdempotence() {
	rec := monthlyOn31st("rec-1")
	suite.save(rec)
	asOf := domain.MustParseDate("2024-04-30")

	result, err := suite.service.MaterializeDue(suite.ctx, rec, asOf)

	suite.Require().NoError(err)
	suite.Equal([]string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}, dueDates(result.Created))
	suite.Require().NotNil(result.LastMaterializedDate)
	suite.Equal("2024-04-30", result.LastMaterializedDate.String())
	suite.Equal("2024-04-30", suite.reload("rec-1").LastMaterializedDate.String())

	for _, txn := range result.Created {
		suite.True(txn.Amount.Equal(rec.Amount))
		suite.Equal(domain.Expense, txn.Direction)
		suite.Equal(domain.SystemActor, txn.CreatedBy)
		suite.Equal("rec-1", *txn.RecurrenceID)
	}

	again, err := suite.service.MaterializeDue(suite.ctx, *suite.reload("rec-1"), asOf)
	suite.Require().NoError(err)
	suite.Empty(again.Created)
	suite.Len(suite.stored("rec-1"), 4)
}

func (suite *MaterializationServiceTestSuite) TestMaterializeDue_RespectsEndDate() {
	rec := monthlyOn31st("rec-1")
	end := domain.MustParseDate("2024-03-15")
	rec.EndDate = &end
	suite.save(rec)

	result, err := suite.service.MaterializeDue(suite.ctx, rec, domain.MustParseDate("2024-04-30"))

	suite.Require().NoError(err)
	suite.Equal([]string{"2024-01-31", "2024-02-29"}, dueDates(result.Created))
	suite.Equal("2024-02-29", result.LastMaterializedDate.String())
}

func (suite *MaterializationServiceTestSuite) TestMaterializeDue_AsOfBeforeStartCreatesNothing() {
	rec := monthlyOn31st("rec-1")
	suite.save(rec)

	result, err := suite.service.MaterializeDue(suite.ctx, rec, domain.MustParseDate("2024-01-15"))

	suite.Require().NoError(err)
	suite.Empty(result.Created)
	suite.Nil(result.LastMaterializedDate)
	suite.Nil(suite.reload("rec-1").LastMaterializedDate)
}

func (suite *MaterializationServiceTestSuite) TestMaterializeDue_InactiveRejected() {
	rec := monthlyOn31st("rec-1")
	rec.IsActive = false

	result, err := suite.service.MaterializeDue(suite.ctx, rec, domain.MustParseDate("2024-04-30"))

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrRecurrenceInactive)
}

func (suite *MaterializationServiceTestSuite) TestMaterializeDue_InvalidFrequency() {
	rec := monthlyOn31st("rec-1")
	rec.Frequency = "BIWEEKLY"

	_, err := suite.service.MaterializeDue(suite.ctx, rec, domain.MustParseDate("2024-04-30"))

	suite.ErrorIs(err, apperrors.ErrInvalidFrequency)
}

func (suite *MaterializationServiceTestSuite) TestMaterializeDue_RecoversFromCrashBetweenWriteAndAdvance() {
	rec := monthlyOn31st("rec-1")
	suite.save(rec)
	jan := domain.MustParseDate("2024-01-31")
	suite.Require().NoError(suite.store.UpdateRecurrenceLastMaterialized(suite.ctx, "rec-1", nil, jan))
	rec.LastMaterializedDate = &jan

	// The Feb row was written but the marker never moved past Jan.
	orphan := domain.NewRecurringTransaction(rec, domain.MustParseDate("2024-02-29"))
	orphan.TransactionID = "orphan"
	suite.Require().NoError(suite.store.CreateTransaction(suite.ctx, orphan))

	result, err := suite.service.MaterializeDue(suite.ctx, rec, domain.MustParseDate("2024-04-30"))

	suite.Require().NoError(err)
	suite.Equal([]string{"2024-03-31", "2024-04-30"}, dueDates(result.Created))
	suite.Equal("2024-04-30", result.LastMaterializedDate.String())
	suite.Equal([]string{"2024-02-29", "2024-03-31", "2024-04-30"}, dueDates(suite.stored("rec-1")))
}

func (suite *MaterializationServiceTestSuite) TestMaterializeDue_StorageFailureKeepsMarkerAtLastWrite() {
	rec := monthlyOn31st("rec-1")
	suite.save(rec)
	writer := new(MockTransactionWriter)
	svc := services.NewMaterializationService(suite.store, writer,
		services.WithMaterializationClock(fixedClock("2024-04-30")))

	writer.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.DueDate.String() == "2024-01-31" || t.DueDate.String() == "2024-02-29"
	})).Return(nil).Twice()
	writer.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.DueDate.String() == "2024-03-31"
	})).Return(apperrors.ErrStorageUnavailable).Once()

	result, err := svc.MaterializeDue(suite.ctx, rec, domain.MustParseDate("2024-04-30"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStorageUnavailable)
	suite.Require().NotNil(result)
	suite.Equal([]string{"2024-01-31", "2024-02-29"}, dueDates(result.Created))
	suite.Equal("2024-02-29", suite.reload("rec-1").LastMaterializedDate.String())
	writer.AssertExpectations(suite.T())
}

func (suite *MaterializationServiceTestSuite) TestMaterializeRecurrence_RetriesTransientFailures() {
	flaky := &flakyStore{Store: suite.store, failOn: map[int]bool{2: true, 3: true}}
	svc := services.NewMaterializationService(suite.store, flaky,
		services.WithMaterializationClock(fixedClock("2024-04-30")),
		services.WithBackoff(noBackoff),
	)
	suite.save(monthlyOn31st("rec-1"))

	result, err := svc.MaterializeRecurrence(suite.ctx, ownerID, "rec-1", nil)

	suite.Require().NoError(err)
	suite.Equal([]string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}, dueDates(result.Created))
	suite.Equal("2024-04-30", result.LastMaterializedDate.String())
	suite.Len(suite.stored("rec-1"), 4)
}

func (suite *MaterializationServiceTestSuite) TestMaterializeRecurrence_GivesUpAfterMaxAttempts() {
	flaky := &flakyStore{Store: suite.store, failOn: map[int]bool{1: true, 2: true, 3: true}}
	svc := services.NewMaterializationService(suite.store, flaky,
		services.WithMaterializationClock(fixedClock("2024-04-30")),
		services.WithBackoff(noBackoff),
		services.WithMaxAttempts(3),
	)
	suite.save(monthlyOn31st("rec-1"))

	result, err := svc.MaterializeRecurrence(suite.ctx, ownerID, "rec-1", nil)

	suite.ErrorIs(err, apperrors.ErrStorageUnavailable)
	suite.Require().NotNil(result)
	suite.Empty(result.Created)
	suite.Nil(suite.reload("rec-1").LastMaterializedDate)
}

func (suite *MaterializationServiceTestSuite) TestMaterializeRecurrence_RetriesAfterConcurrentModification() {
	racer := &racingStore{Store: suite.store}
	svc := services.NewMaterializationService(racer, suite.store,
		services.WithMaterializationClock(fixedClock("2024-04-30")),
		services.WithBackoff(noBackoff),
	)
	suite.save(monthlyOn31st("rec-1"))

	result, err := svc.MaterializeRecurrence(suite.ctx, ownerID, "rec-1", nil)

	suite.Require().NoError(err)
	suite.Equal("2024-04-30", result.LastMaterializedDate.String())
	suite.Equal([]string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}, dueDates(suite.stored("rec-1")))
}

func (suite *MaterializationServiceTestSuite) TestMaterializeRecurrence_ClampsAsOfToToday() {
	suite.save(monthlyOn31st("rec-1"))
	future := domain.MustParseDate("2030-01-01")

	result, err := suite.service.MaterializeRecurrence(suite.ctx, ownerID, "rec-1", &future)

	suite.Require().NoError(err)
	suite.Len(result.Created, 4)
	suite.Equal("2024-04-30", result.LastMaterializedDate.String())
}

func (suite *MaterializationServiceTestSuite) TestMaterializeRecurrence_OtherOwnerIsNotFound() {
	suite.save(monthlyOn31st("rec-1"))

	_, err := suite.service.MaterializeRecurrence(suite.ctx, "someone-else", "rec-1", nil)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.service.MaterializeRecurrence(suite.ctx, ownerID, "missing", nil)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Equal(1, suite.store.Writes())
}

func (suite *MaterializationServiceTestSuite) TestMaterializeRecurrence_ConcurrentCallsNeverDuplicate() {
	suite.save(monthlyOn31st("rec-1"))

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := suite.service.MaterializeRecurrence(suite.ctx, ownerID, "rec-1", nil)
			if assert.NoError(suite.T(), err) {
				mu.Lock()
				created += len(res.Created)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	suite.Equal(4, created)
	suite.Len(suite.stored("rec-1"), 4)
}

func (suite *MaterializationServiceTestSuite) TestMaterializeRecurrence_PublishesCreatedTransactions() {
	publisher := new(MockPublisher)
	svc := services.NewMaterializationService(suite.store, suite.store,
		services.WithMaterializationClock(fixedClock("2024-04-30")),
		services.WithEventPublisher(publisher),
	)
	suite.save(monthlyOn31st("rec-1"))

	publisher.On("PublishMaterialized", mock.Anything, ownerID, mock.MatchedBy(func(r domain.MaterializationResult) bool {
		return r.RecurrenceID == "rec-1" && len(r.Created) == 4
	})).Return(assert.AnError).Once()

	// Publish failures are logged, never surfaced.
	result, err := svc.MaterializeRecurrence(suite.ctx, ownerID, "rec-1", nil)
	suite.Require().NoError(err)
	suite.Len(result.Created, 4)

	// Nothing new, nothing published.
	result, err = svc.MaterializeRecurrence(suite.ctx, ownerID, "rec-1", nil)
	suite.Require().NoError(err)
	suite.Empty(result.Created)

	publisher.AssertExpectations(suite.T())
}

func (suite *MaterializationServiceTestSuite) TestMaterializeAll_ReportsPerRecurrence() {
	suite.save(monthlyOn31st("rec-1"))
	weekly := monthlyOn31st("rec-2")
	weekly.Frequency = domain.Weekly
	weekly.StartDate = domain.MustParseDate("2024-04-10")
	weekly.Direction = domain.Income
	suite.save(weekly)
	paused := monthlyOn31st("rec-3")
	paused.IsActive = false
	suite.save(paused)
	other := monthlyOn31st("rec-4")
	other.OwnerID = "owner-2"
	suite.save(other)

	asOf := domain.MustParseDate("2024-04-30")
	batch, err := suite.service.MaterializeAll(suite.ctx, ownerID, &asOf)

	suite.Require().NoError(err)
	suite.Empty(batch.Failures)
	suite.Len(batch.Results, 2)
	suite.Equal(4+3, batch.CreatedCount())
	suite.Len(batch.CreatedIDs(), 7)
	suite.Empty(suite.stored("rec-3"))
	suite.Empty(suite.stored("rec-4"))

	again, err := suite.service.MaterializeAll(suite.ctx, ownerID, &asOf)
	suite.Require().NoError(err)
	suite.Zero(again.CreatedCount())
}

func (suite *MaterializationServiceTestSuite) TestMaterializeAll_FailureDoesNotStopSiblings() {
	broken := monthlyOn31st("rec-broken")
	broken.Frequency = "FORTNIGHTLY"
	suite.save(broken)
	suite.save(monthlyOn31st("rec-1"))

	batch, err := suite.service.MaterializeAll(suite.ctx, ownerID, nil)

	suite.Require().NoError(err)
	suite.Equal(4, batch.CreatedCount())
	suite.Require().Len(batch.Failures, 1)
	suite.Equal("rec-broken", batch.Failures[0].RecurrenceID)
	suite.ErrorIs(batch.Failures[0].Err, apperrors.ErrInvalidFrequency)
}

func (suite *MaterializationServiceTestSuite) TestMonotonicAdvanceAcrossSuccessiveDays() {
	rec := monthlyOn31st("rec-1")
	rec.Frequency = domain.Daily
	rec.StartDate = domain.MustParseDate("2024-04-01")
	suite.save(rec)

	var previous domain.Date
	for day := 1; day <= 30; day += 3 {
		asOf := domain.NewDate(2024, time.April, day)
		result, err := suite.service.MaterializeRecurrence(suite.ctx, ownerID, "rec-1", &asOf)
		suite.Require().NoError(err)
		suite.Require().NotNil(result.LastMaterializedDate)
		suite.False(result.LastMaterializedDate.Before(previous))
		previous = *result.LastMaterializedDate
	}

	// Going back in time never rewinds the marker.
	past := domain.MustParseDate("2024-04-05")
	result, err := suite.service.MaterializeRecurrence(suite.ctx, ownerID, "rec-1", &past)
	suite.Require().NoError(err)
	suite.Empty(result.Created)
	suite.Equal(previous.String(), suite.reload("rec-1").LastMaterializedDate.String())
	suite.Len(suite.stored("rec-1"), 28)
}

func TestMaterializationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MaterializationServiceTestSuite))
}
