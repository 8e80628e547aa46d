package sqlite_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	"github.com/SscSPs/money_recurrence/internal/core/services"
	"github.com/SscSPs/money_recurrence/internal/repositories/database/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SQLiteRepositoryTestSuite struct {
	suite.Suite
	db    *sql.DB
	repos portsrepo.RepositoryProvider
	debts *sqlite.SQLiteDebtRepository
	ctx   context.Context
}

func (suite *SQLiteRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := sqlite.Open(suite.ctx, filepath.Join(suite.T().TempDir(), "recurrence.db"), logger)
	suite.Require().NoError(err)
	suite.db = db
	suite.repos = sqlite.NewRepositoryProvider(db)
	suite.debts = sqlite.NewDebtRepository(db)
}

func (suite *SQLiteRepositoryTestSuite) TearDownTest() {
	suite.NoError(suite.db.Close())
}

func (suite *SQLiteRepositoryTestSuite) recurrence(id, owner string) domain.Recurrence {
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	return domain.Recurrence{
		RecurrenceID: id,
		OwnerID:      owner,
		Description:  "Rent",
		Amount:       decimal.RequireFromString("-950.00"),
		Direction:    domain.Expense,
		Frequency:    domain.Monthly,
		StartDate:    domain.MustParseDate("2024-01-31"),
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(owner, now),
	}
}

func (suite *SQLiteRepositoryTestSuite) TestSaveAndFindRecurrence() {
	cat := "cat-rent"
	end := domain.MustParseDate("2024-12-31")
	rec := suite.recurrence("rec-1", "owner-1")
	rec.CategoryID = &cat
	rec.EndDate = &end
	suite.Require().NoError(suite.debts.SaveCategory(suite.ctx, cat, "owner-1", "Housing"))
	suite.Require().NoError(suite.repos.RecurrenceRepo.SaveRecurrence(suite.ctx, rec))

	got, err := suite.repos.RecurrenceRepo.FindRecurrenceByID(suite.ctx, "rec-1")
	suite.Require().NoError(err)
	suite.Equal("Housing", got.CategoryName)
	suite.True(got.Amount.Equal(rec.Amount))
	suite.Equal(domain.Monthly, got.Frequency)
	suite.Equal("2024-01-31", got.StartDate.String())
	suite.Require().NotNil(got.EndDate)
	suite.Equal("2024-12-31", got.EndDate.String())
	suite.Nil(got.LastMaterializedDate)
	suite.True(got.CreatedAt.Equal(rec.CreatedAt))

	suite.ErrorIs(suite.repos.RecurrenceRepo.SaveRecurrence(suite.ctx, rec), apperrors.ErrDuplicate)

	_, err = suite.repos.RecurrenceRepo.FindRecurrenceByID(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SQLiteRepositoryTestSuite) TestActiveListingAndToggle() {
	suite.Require().NoError(suite.repos.RecurrenceRepo.SaveRecurrence(suite.ctx, suite.recurrence("rec-1", "owner-b")))
	suite.Require().NoError(suite.repos.RecurrenceRepo.SaveRecurrence(suite.ctx, suite.recurrence("rec-2", "owner-a")))
	suite.Require().NoError(suite.repos.RecurrenceRepo.SaveRecurrence(suite.ctx, suite.recurrence("rec-3", "owner-a")))

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.repos.RecurrenceRepo.UpdateRecurrenceActive(suite.ctx, "rec-3", false, "owner-a", now))
	suite.ErrorIs(suite.repos.RecurrenceRepo.UpdateRecurrenceActive(suite.ctx, "missing", false, "owner-a", now), apperrors.ErrNotFound)

	active, err := suite.repos.RecurrenceRepo.ListActiveRecurrences(suite.ctx, "owner-a")
	suite.Require().NoError(err)
	suite.Len(active, 1)
	suite.Equal("rec-2", active[0].RecurrenceID)

	all, err := suite.repos.RecurrenceRepo.ListRecurrencesByOwner(suite.ctx, "owner-a")
	suite.Require().NoError(err)
	suite.Len(all, 2)

	owners, err := suite.repos.RecurrenceRepo.ListActiveOwnerIDs(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]string{"owner-a", "owner-b"}, owners)
}

func (suite *SQLiteRepositoryTestSuite) TestUpdateRecurrenceLastMaterialized_OptimisticCheck() {
	suite.Require().NoError(suite.repos.RecurrenceRepo.SaveRecurrence(suite.ctx, suite.recurrence("rec-1", "owner-1")))
	repo := suite.repos.RecurrenceRepo

	jan := domain.MustParseDate("2024-01-31")
	feb := domain.MustParseDate("2024-02-29")

	suite.Require().NoError(repo.UpdateRecurrenceLastMaterialized(suite.ctx, "rec-1", nil, jan))
	suite.ErrorIs(repo.UpdateRecurrenceLastMaterialized(suite.ctx, "rec-1", nil, feb), apperrors.ErrConcurrentModification)
	suite.Require().NoError(repo.UpdateRecurrenceLastMaterialized(suite.ctx, "rec-1", &jan, feb))
	suite.ErrorIs(repo.UpdateRecurrenceLastMaterialized(suite.ctx, "missing", nil, jan), apperrors.ErrNotFound)

	got, err := repo.FindRecurrenceByID(suite.ctx, "rec-1")
	suite.Require().NoError(err)
	suite.Require().NotNil(got.LastMaterializedDate)
	suite.Equal("2024-02-29", got.LastMaterializedDate.String())
	suite.Equal(domain.SystemActor, got.LastUpdatedBy)
}

func (suite *SQLiteRepositoryTestSuite) TestCreateTransaction_UniquePerDueDate() {
	suite.Require().NoError(suite.repos.RecurrenceRepo.SaveRecurrence(suite.ctx, suite.recurrence("rec-1", "owner-1")))
	recID := "rec-1"
	due := domain.MustParseDate("2024-02-29")
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txn := domain.Transaction{
		TransactionID: "t1",
		OwnerID:       "owner-1",
		RecurrenceID:  &recID,
		DueDate:       due,
		OccurredDate:  due,
		Amount:        decimal.RequireFromString("-950.00"),
		Direction:     domain.Expense,
		AuditFields:   domain.NewAuditFields(domain.SystemActor, at),
	}
	suite.Require().NoError(suite.repos.TransactionRepo.CreateTransaction(suite.ctx, txn))

	txn.TransactionID = "t2"
	suite.ErrorIs(suite.repos.TransactionRepo.CreateTransaction(suite.ctx, txn), apperrors.ErrDuplicate)

	txns, err := suite.repos.TransactionRepo.ListTransactionsByRecurrence(suite.ctx, recID)
	suite.Require().NoError(err)
	suite.Require().Len(txns, 1)
	suite.Equal("t1", txns[0].TransactionID)
	suite.Equal("2024-02-29", txns[0].DueDate.String())
	suite.Equal("-950.00", txns[0].Amount.StringFixed(2))
}

func (suite *SQLiteRepositoryTestSuite) TestListPendingDebtInstallments() {
	converted := "rec-9"
	suite.Require().NoError(suite.repos.RecurrenceRepo.SaveRecurrence(suite.ctx, suite.recurrence(converted, "owner-1")))
	for _, inst := range []domain.DebtInstallment{
		{InstallmentID: "i1", DebtID: "d1", OwnerID: "owner-1", DueDate: domain.MustParseDate("2024-05-10"), Amount: decimal.NewFromInt(-100), Direction: domain.Expense},
		{InstallmentID: "i2", DebtID: "d1", OwnerID: "owner-1", DueDate: domain.MustParseDate("2024-05-20"), Amount: decimal.NewFromInt(-100), Direction: domain.Expense, IsPaid: true},
		{InstallmentID: "i3", DebtID: "d2", OwnerID: "owner-1", DueDate: domain.MustParseDate("2024-06-10"), Amount: decimal.NewFromInt(-40), Direction: domain.Expense},
		{InstallmentID: "i4", DebtID: "d3", OwnerID: "owner-2", DueDate: domain.MustParseDate("2024-05-15"), Amount: decimal.NewFromInt(-40), Direction: domain.Expense},
		{InstallmentID: "i5", DebtID: "d4", OwnerID: "owner-1", DueDate: domain.MustParseDate("2024-05-31"), Amount: decimal.NewFromInt(-25), Direction: domain.Expense, ConvertedRecurrenceID: &converted},
	} {
		suite.Require().NoError(suite.debts.SaveDebtInstallment(suite.ctx, inst, nil))
	}

	got, err := suite.repos.DebtRepo.ListPendingDebtInstallments(suite.ctx, "owner-1",
		domain.MustParseDate("2024-05-01"), domain.MustParseDate("2024-05-31"))
	suite.Require().NoError(err)
	suite.Require().Len(got, 2)
	suite.Equal("i1", got[0].InstallmentID)
	suite.Equal("i5", got[1].InstallmentID)
	suite.Require().NotNil(got[1].ConvertedRecurrenceID)
	suite.Equal(converted, *got[1].ConvertedRecurrenceID)
}

func (suite *SQLiteRepositoryTestSuite) TestMaterializationEndToEnd() {
	suite.Require().NoError(suite.repos.RecurrenceRepo.SaveRecurrence(suite.ctx, suite.recurrence("rec-1", "owner-1")))
	clock := func() time.Time { return time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC) }
	svc := services.NewMaterializationService(suite.repos.RecurrenceRepo, suite.repos.TransactionRepo,
		services.WithMaterializationClock(clock))

	result, err := svc.MaterializeRecurrence(suite.ctx, "owner-1", "rec-1", nil)
	suite.Require().NoError(err)
	suite.Len(result.Created, 4)

	again, err := svc.MaterializeRecurrence(suite.ctx, "owner-1", "rec-1", nil)
	suite.Require().NoError(err)
	suite.Empty(again.Created)

	txns, err := suite.repos.TransactionRepo.ListTransactionsByRecurrence(suite.ctx, "rec-1")
	suite.Require().NoError(err)
	dates := make([]string, 0, len(txns))
	for _, t := range txns {
		dates = append(dates, t.DueDate.String())
	}
	suite.Equal([]string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}, dates)
}

func (suite *SQLiteRepositoryTestSuite) TestPing() {
	suite.NoError(suite.repos.Health.Ping(suite.ctx))
}

func TestSQLiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}
