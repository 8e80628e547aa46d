package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	"github.com/SscSPs/money_recurrence/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	store *memory.Store
	ctx   context.Context
}

func (suite *StoreTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.ctx = context.Background()
}

func (suite *StoreTestSuite) recurrence(id, owner string, active bool) domain.Recurrence {
	return domain.Recurrence{
		RecurrenceID: id,
		OwnerID:      owner,
		Amount:       decimal.RequireFromString("10.00"),
		Direction:    domain.Expense,
		Frequency:    domain.Monthly,
		StartDate:    domain.MustParseDate("2024-01-31"),
		IsActive:     active,
	}
}

func (suite *StoreTestSuite) TestCreateTransaction_RejectsSecondRowForSameDueDate() {
	recID := "rec-1"
	due := domain.MustParseDate("2024-02-29")

	first := domain.Transaction{TransactionID: "t1", RecurrenceID: &recID, DueDate: due}
	second := domain.Transaction{TransactionID: "t2", RecurrenceID: &recID, DueDate: due}
	manual := domain.Transaction{TransactionID: "t3", DueDate: due}

	suite.Require().NoError(suite.store.CreateTransaction(suite.ctx, first))
	suite.ErrorIs(suite.store.CreateTransaction(suite.ctx, second), apperrors.ErrDuplicate)
	suite.NoError(suite.store.CreateTransaction(suite.ctx, manual))

	txns, err := suite.store.ListTransactionsByRecurrence(suite.ctx, recID)
	suite.Require().NoError(err)
	suite.Len(txns, 1)
	suite.Equal("t1", txns[0].TransactionID)
}

func (suite *StoreTestSuite) TestUpdateRecurrenceLastMaterialized_OptimisticCheck() {
	suite.Require().NoError(suite.store.SaveRecurrence(suite.ctx, suite.recurrence("rec-1", "owner-1", true)))

	jan := domain.MustParseDate("2024-01-31")
	feb := domain.MustParseDate("2024-02-29")

	suite.Require().NoError(suite.store.UpdateRecurrenceLastMaterialized(suite.ctx, "rec-1", nil, jan))
	suite.ErrorIs(suite.store.UpdateRecurrenceLastMaterialized(suite.ctx, "rec-1", nil, feb), apperrors.ErrConcurrentModification)
	suite.Require().NoError(suite.store.UpdateRecurrenceLastMaterialized(suite.ctx, "rec-1", &jan, feb))

	got, err := suite.store.FindRecurrenceByID(suite.ctx, "rec-1")
	suite.Require().NoError(err)
	suite.Require().NotNil(got.LastMaterializedDate)
	suite.Equal("2024-02-29", got.LastMaterializedDate.String())

	suite.ErrorIs(suite.store.UpdateRecurrenceLastMaterialized(suite.ctx, "missing", nil, jan), apperrors.ErrNotFound)
}

func (suite *StoreTestSuite) TestListingAndCategoryJoin() {
	cat := "cat-1"
	active := suite.recurrence("rec-1", "owner-1", true)
	active.CategoryID = &cat
	suite.store.AddCategory(cat, "Rent")

	suite.Require().NoError(suite.store.SaveRecurrence(suite.ctx, active))
	suite.Require().NoError(suite.store.SaveRecurrence(suite.ctx, suite.recurrence("rec-2", "owner-1", false)))
	suite.Require().NoError(suite.store.SaveRecurrence(suite.ctx, suite.recurrence("rec-3", "owner-2", true)))
	suite.ErrorIs(suite.store.SaveRecurrence(suite.ctx, active), apperrors.ErrDuplicate)

	list, err := suite.store.ListActiveRecurrences(suite.ctx, "owner-1")
	suite.Require().NoError(err)
	suite.Require().Len(list, 1)
	suite.Equal("Rent", list[0].CategoryName)

	all, err := suite.store.ListRecurrencesByOwner(suite.ctx, "owner-1")
	suite.Require().NoError(err)
	suite.Len(all, 2)

	owners, err := suite.store.ListActiveOwnerIDs(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]string{"owner-1", "owner-2"}, owners)

	suite.Require().NoError(suite.store.UpdateRecurrenceActive(suite.ctx, "rec-1", false, "owner-1", time.Now()))
	owners, err = suite.store.ListActiveOwnerIDs(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]string{"owner-2"}, owners)
}

func (suite *StoreTestSuite) TestListPendingDebtInstallments_FiltersWindowOwnerAndPaid() {
	suite.store.AddDebtInstallment(domain.DebtInstallment{InstallmentID: "i1", OwnerID: "owner-1", DueDate: domain.MustParseDate("2024-05-10")})
	suite.store.AddDebtInstallment(domain.DebtInstallment{InstallmentID: "i2", OwnerID: "owner-1", DueDate: domain.MustParseDate("2024-06-10")})
	suite.store.AddDebtInstallment(domain.DebtInstallment{InstallmentID: "i3", OwnerID: "owner-1", DueDate: domain.MustParseDate("2024-05-11"), IsPaid: true})
	suite.store.AddDebtInstallment(domain.DebtInstallment{InstallmentID: "i4", OwnerID: "owner-2", DueDate: domain.MustParseDate("2024-05-12")})

	got, err := suite.store.ListPendingDebtInstallments(suite.ctx, "owner-1", domain.MustParseDate("2024-05-01"), domain.MustParseDate("2024-05-31"))
	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal("i1", got[0].InstallmentID)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
