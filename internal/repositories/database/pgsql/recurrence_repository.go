package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRecurrenceRepository struct {
	BaseRepository
}

// newPgxRecurrenceRepository creates a new repository for recurrence data.
func newPgxRecurrenceRepository(pool *pgxpool.Pool) *PgxRecurrenceRepository {
	return &PgxRecurrenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RecurrenceRepositoryFacade = (*PgxRecurrenceRepository)(nil)

const recurrenceColumns = `
	r.recurrence_id, r.owner_id, r.description, r.amount, r.direction, r.frequency,
	r.start_date, r.end_date, r.is_active, r.category_id, COALESCE(c.name, ''),
	r.source_debt_id, r.last_materialized_date,
	r.created_at, r.created_by, r.last_updated_at, r.last_updated_by`

const recurrenceFrom = `
	FROM recurrences r
	LEFT JOIN categories c ON c.category_id = r.category_id`

func scanRecurrence(row pgx.Row) (domain.Recurrence, error) {
	var (
		r               domain.Recurrence
		start           time.Time
		end, lastMat    *time.Time
		direction, freq string
	)
	err := row.Scan(
		&r.RecurrenceID, &r.OwnerID, &r.Description, &r.Amount, &direction, &freq,
		&start, &end, &r.IsActive, &r.CategoryID, &r.CategoryName,
		&r.SourceDebtID, &lastMat,
		&r.CreatedAt, &r.CreatedBy, &r.LastUpdatedAt, &r.LastUpdatedBy,
	)
	if err != nil {
		return domain.Recurrence{}, err
	}
	r.Direction = domain.Direction(direction)
	r.Frequency = domain.Frequency(freq)
	r.StartDate = domain.DateOf(start)
	r.EndDate = fromTimePtr(end)
	r.LastMaterializedDate = fromTimePtr(lastMat)
	return r, nil
}

func (r *PgxRecurrenceRepository) FindRecurrenceByID(ctx context.Context, recurrenceID string) (*domain.Recurrence, error) {
	query := `SELECT` + recurrenceColumns + recurrenceFrom + ` WHERE r.recurrence_id = $1;`
	rec, err := scanRecurrence(r.Pool.QueryRow(ctx, query, recurrenceID))
	if err != nil {
		return nil, mapError(fmt.Sprintf("find recurrence %s", recurrenceID), err)
	}
	return &rec, nil
}

func (r *PgxRecurrenceRepository) listRecurrences(ctx context.Context, op, where string, args ...any) ([]domain.Recurrence, error) {
	query := `SELECT` + recurrenceColumns + recurrenceFrom + ` WHERE ` + where + ` ORDER BY r.created_at, r.recurrence_id;`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	recurrences := []domain.Recurrence{}
	for rows.Next() {
		rec, err := scanRecurrence(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		recurrences = append(recurrences, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return recurrences, nil
}

func (r *PgxRecurrenceRepository) ListActiveRecurrences(ctx context.Context, ownerID string) ([]domain.Recurrence, error) {
	return r.listRecurrences(ctx, "list active recurrences", `r.owner_id = $1 AND r.is_active`, ownerID)
}

func (r *PgxRecurrenceRepository) ListRecurrencesByOwner(ctx context.Context, ownerID string) ([]domain.Recurrence, error) {
	return r.listRecurrences(ctx, "list recurrences", `r.owner_id = $1`, ownerID)
}

func (r *PgxRecurrenceRepository) ListActiveOwnerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT DISTINCT owner_id FROM recurrences WHERE is_active ORDER BY owner_id;`)
	if err != nil {
		return nil, mapError("list active owners", err)
	}
	owners, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError("list active owners", err)
	}
	return owners, nil
}

func (r *PgxRecurrenceRepository) SaveRecurrence(ctx context.Context, rec domain.Recurrence) error {
	query := `
		INSERT INTO recurrences (recurrence_id, owner_id, description, amount, direction, frequency,
			start_date, end_date, is_active, category_id, source_debt_id, last_materialized_date,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		rec.RecurrenceID,
		rec.OwnerID,
		rec.Description,
		rec.Amount,
		string(rec.Direction),
		string(rec.Frequency),
		rec.StartDate.Time,
		toTimePtr(rec.EndDate),
		rec.IsActive,
		rec.CategoryID,
		rec.SourceDebtID,
		toTimePtr(rec.LastMaterializedDate),
		rec.CreatedAt,
		rec.CreatedBy,
		rec.LastUpdatedAt,
		rec.LastUpdatedBy,
	)
	if err != nil {
		return mapError(fmt.Sprintf("save recurrence %s", rec.RecurrenceID), err)
	}
	return nil
}

func (r *PgxRecurrenceRepository) UpdateRecurrenceActive(ctx context.Context, recurrenceID string, active bool, userID string, now time.Time) error {
	query := `
		UPDATE recurrences
		SET is_active = $2, last_updated_at = $3, last_updated_by = $4
		WHERE recurrence_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, recurrenceID, active, now, userID)
	if err != nil {
		return mapError(fmt.Sprintf("update recurrence %s", recurrenceID), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrNotFound)
	}
	return nil
}

// UpdateRecurrenceLastMaterialized advances the marker only while it still
// holds expected, so two writers can never both move it from the same value.
func (r *PgxRecurrenceRepository) UpdateRecurrenceLastMaterialized(ctx context.Context, recurrenceID string, expected *domain.Date, next domain.Date) error {
	query := `
		UPDATE recurrences
		SET last_materialized_date = $3, last_updated_at = NOW(), last_updated_by = $4
		WHERE recurrence_id = $1
		  AND last_materialized_date IS NOT DISTINCT FROM $2::date;
	`
	op := fmt.Sprintf("advance recurrence %s", recurrenceID)
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, query, recurrenceID, toTimePtr(expected), next.Time, domain.SystemActor)
	if err != nil {
		return mapError(op, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM recurrences WHERE recurrence_id = $1);`, recurrenceID).Scan(&exists)
		if err != nil {
			return mapError(op, err)
		}
		if !exists {
			return fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrConcurrentModification)
	}
	return r.Commit(ctx, tx)
}

func toTimePtr(d *domain.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func fromTimePtr(t *time.Time) *domain.Date {
	if t == nil {
		return nil
	}
	d := domain.DateOf(*t)
	return &d
}
