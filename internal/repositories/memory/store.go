// Package memory provides an in-process implementation of the storage ports.
// It enforces the same uniqueness and optimistic checks as the SQL backends
// and is used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
)

type txnKey struct {
	recurrenceID string
	dueDate      string
}

// Store keeps every record in maps guarded by one RWMutex.
type Store struct {
	mu           sync.RWMutex
	recurrences  map[string]domain.Recurrence
	order        []string // Recurrence insertion order
	transactions map[string]domain.Transaction
	byDue        map[txnKey]string
	categories   map[string]string
	installments []domain.DebtInstallment
	writes       int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		recurrences:  make(map[string]domain.Recurrence),
		transactions: make(map[string]domain.Transaction),
		byDue:        make(map[txnKey]string),
		categories:   make(map[string]string),
	}
}

var (
	_ portsrepo.RecurrenceRepositoryFacade  = (*Store)(nil)
	_ portsrepo.TransactionRepositoryFacade = (*Store)(nil)
	_ portsrepo.DebtInstallmentReader       = (*Store)(nil)
	_ portsrepo.Pinger                      = (*Store)(nil)
)

// NewRepositoryProvider wires one store into every port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RecurrenceRepo:  s,
		TransactionRepo: s,
		DebtRepo:        s,
		Health:          s,
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// AddCategory registers a category name for read-side joins.
func (s *Store) AddCategory(categoryID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[categoryID] = name
}

// AddDebtInstallment registers an installment for projections.
func (s *Store) AddDebtInstallment(inst domain.DebtInstallment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installments = append(s.installments, inst)
}

// Writes counts successful mutating calls.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *Store) withCategory(r domain.Recurrence) domain.Recurrence {
	r.CategoryName = ""
	if r.CategoryID != nil {
		r.CategoryName = s.categories[*r.CategoryID]
	}
	return r
}

func (s *Store) FindRecurrenceByID(ctx context.Context, recurrenceID string) (*domain.Recurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recurrences[recurrenceID]
	if !ok {
		return nil, fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrNotFound)
	}
	r = s.withCategory(r)
	return &r, nil
}

func (s *Store) listRecurrences(ctx context.Context, keep func(domain.Recurrence) bool) ([]domain.Recurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Recurrence{}
	for _, id := range s.order {
		r := s.recurrences[id]
		if keep(r) {
			out = append(out, s.withCategory(r))
		}
	}
	return out, nil
}

func (s *Store) ListActiveRecurrences(ctx context.Context, ownerID string) ([]domain.Recurrence, error) {
	return s.listRecurrences(ctx, func(r domain.Recurrence) bool {
		return r.OwnerID == ownerID && r.IsActive
	})
}

func (s *Store) ListRecurrencesByOwner(ctx context.Context, ownerID string) ([]domain.Recurrence, error) {
	return s.listRecurrences(ctx, func(r domain.Recurrence) bool {
		return r.OwnerID == ownerID
	})
}

func (s *Store) ListActiveOwnerIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	owners := []string{}
	for _, id := range s.order {
		r := s.recurrences[id]
		if !r.IsActive {
			continue
		}
		if _, ok := seen[r.OwnerID]; ok {
			continue
		}
		seen[r.OwnerID] = struct{}{}
		owners = append(owners, r.OwnerID)
	}
	sort.Strings(owners)
	return owners, nil
}

func (s *Store) SaveRecurrence(ctx context.Context, recurrence domain.Recurrence) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.recurrences[recurrence.RecurrenceID]; exists {
		return fmt.Errorf("recurrence %s: %w", recurrence.RecurrenceID, apperrors.ErrDuplicate)
	}
	recurrence.CategoryName = ""
	s.recurrences[recurrence.RecurrenceID] = recurrence
	s.order = append(s.order, recurrence.RecurrenceID)
	s.writes++
	return nil
}

func (s *Store) UpdateRecurrenceActive(ctx context.Context, recurrenceID string, active bool, userID string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recurrences[recurrenceID]
	if !ok {
		return fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrNotFound)
	}
	r.IsActive = active
	r.LastUpdatedAt = now
	r.LastUpdatedBy = userID
	s.recurrences[recurrenceID] = r
	s.writes++
	return nil
}

func (s *Store) UpdateRecurrenceLastMaterialized(ctx context.Context, recurrenceID string, expected *domain.Date, next domain.Date) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recurrences[recurrenceID]
	if !ok {
		return fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrNotFound)
	}
	if !sameDate(r.LastMaterializedDate, expected) {
		return fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrConcurrentModification)
	}
	advanced := next
	r.LastMaterializedDate = &advanced
	r.LastUpdatedAt = time.Now().UTC()
	r.LastUpdatedBy = domain.SystemActor
	s.recurrences[recurrenceID] = r
	s.writes++
	return nil
}

func sameDate(a, b *domain.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (s *Store) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[txn.TransactionID]; exists {
		return fmt.Errorf("transaction %s: %w", txn.TransactionID, apperrors.ErrDuplicate)
	}
	if txn.RecurrenceID != nil {
		key := txnKey{recurrenceID: *txn.RecurrenceID, dueDate: txn.DueDate.String()}
		if _, exists := s.byDue[key]; exists {
			return fmt.Errorf("transaction for recurrence %s due %s: %w", key.recurrenceID, key.dueDate, apperrors.ErrDuplicate)
		}
		s.byDue[key] = txn.TransactionID
	}
	s.transactions[txn.TransactionID] = txn
	s.writes++
	return nil
}

func (s *Store) ListTransactionsByRecurrence(ctx context.Context, recurrenceID string) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Transaction{}
	for _, t := range s.transactions {
		if t.RecurrenceID != nil && *t.RecurrenceID == recurrenceID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (s *Store) ListPendingDebtInstallments(ctx context.Context, ownerID string, from, to domain.Date) ([]domain.DebtInstallment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.DebtInstallment{}
	for _, inst := range s.installments {
		if inst.OwnerID != ownerID || inst.IsPaid {
			continue
		}
		if inst.DueDate.Before(from) || inst.DueDate.After(to) {
			continue
		}
		out = append(out, inst)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}
