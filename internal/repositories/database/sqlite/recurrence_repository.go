package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/money_recurrence/internal/apperrors"
	"github.com/SscSPs/money_recurrence/internal/core/domain"
	portsrepo "github.com/SscSPs/money_recurrence/internal/core/ports/repositories"
)

type SQLiteRecurrenceRepository struct {
	BaseRepository
}

func newSQLiteRecurrenceRepository(db *sql.DB) *SQLiteRecurrenceRepository {
	return &SQLiteRecurrenceRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.RecurrenceRepositoryFacade = (*SQLiteRecurrenceRepository)(nil)

const recurrenceSelect = `
	SELECT r.recurrence_id, r.owner_id, r.description, r.amount, r.direction, r.frequency,
		r.start_date, r.end_date, r.is_active, r.category_id, COALESCE(c.name, ''),
		r.source_debt_id, r.last_materialized_date,
		r.created_at, r.created_by, r.last_updated_at, r.last_updated_by
	FROM recurrences r
	LEFT JOIN categories c ON c.category_id = r.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecurrence(row rowScanner) (domain.Recurrence, error) {
	var (
		r                  domain.Recurrence
		direction, freq    string
		createdAt, updated string
	)
	err := row.Scan(
		&r.RecurrenceID, &r.OwnerID, &r.Description, &r.Amount, &direction, &freq,
		&r.StartDate, &r.EndDate, &r.IsActive, &r.CategoryID, &r.CategoryName,
		&r.SourceDebtID, &r.LastMaterializedDate,
		&createdAt, &r.CreatedBy, &updated, &r.LastUpdatedBy,
	)
	if err != nil {
		return domain.Recurrence{}, err
	}
	r.Direction = domain.Direction(direction)
	r.Frequency = domain.Frequency(freq)
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Recurrence{}, err
	}
	if r.LastUpdatedAt, err = parseTime(updated); err != nil {
		return domain.Recurrence{}, err
	}
	return r, nil
}

func (r *SQLiteRecurrenceRepository) FindRecurrenceByID(ctx context.Context, recurrenceID string) (*domain.Recurrence, error) {
	row := r.DB.QueryRowContext(ctx, recurrenceSelect+` WHERE r.recurrence_id = ?;`, recurrenceID)
	rec, err := scanRecurrence(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("find recurrence %s", recurrenceID), err)
	}
	return &rec, nil
}

func (r *SQLiteRecurrenceRepository) listRecurrences(ctx context.Context, op, where string, args ...any) ([]domain.Recurrence, error) {
	rows, err := r.DB.QueryContext(ctx, recurrenceSelect+` WHERE `+where+` ORDER BY r.created_at, r.recurrence_id;`, args...)
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

func (r *SQLiteRecurrenceRepository) ListActiveRecurrences(ctx context.Context, ownerID string) ([]domain.Recurrence, error) {
	return r.listRecurrences(ctx, "list active recurrences", `r.owner_id = ? AND r.is_active = 1`, ownerID)
}

func (r *SQLiteRecurrenceRepository) ListRecurrencesByOwner(ctx context.Context, ownerID string) ([]domain.Recurrence, error) {
	return r.listRecurrences(ctx, "list recurrences", `r.owner_id = ?`, ownerID)
}

func (r *SQLiteRecurrenceRepository) ListActiveOwnerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT DISTINCT owner_id FROM recurrences WHERE is_active = 1 ORDER BY owner_id;`)
	if err != nil {
		return nil, mapError("list active owners", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, mapError("list active owners", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list active owners", err)
	}
	return owners, nil
}

func (r *SQLiteRecurrenceRepository) SaveRecurrence(ctx context.Context, rec domain.Recurrence) error {
	query := `
		INSERT INTO recurrences (recurrence_id, owner_id, description, amount, direction, frequency,
			start_date, end_date, is_active, category_id, source_debt_id, last_materialized_date,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.DB.ExecContext(ctx, query,
		rec.RecurrenceID,
		rec.OwnerID,
		rec.Description,
		rec.Amount.StringFixed(2),
		string(rec.Direction),
		string(rec.Frequency),
		rec.StartDate.String(),
		dateArg(rec.EndDate),
		rec.IsActive,
		rec.CategoryID,
		rec.SourceDebtID,
		dateArg(rec.LastMaterializedDate),
		formatTime(rec.CreatedAt),
		rec.CreatedBy,
		formatTime(rec.LastUpdatedAt),
		rec.LastUpdatedBy,
	)
	if err != nil {
		return mapError(fmt.Sprintf("save recurrence %s", rec.RecurrenceID), err)
	}
	return nil
}

func (r *SQLiteRecurrenceRepository) UpdateRecurrenceActive(ctx context.Context, recurrenceID string, active bool, userID string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE recurrences SET is_active = ?, last_updated_at = ?, last_updated_by = ? WHERE recurrence_id = ?;`,
		active, formatTime(now), userID, recurrenceID)
	if err != nil {
		return mapError(fmt.Sprintf("update recurrence %s", recurrenceID), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(fmt.Sprintf("update recurrence %s", recurrenceID), err)
	}
	if n == 0 {
		return fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrNotFound)
	}
	return nil
}

// UpdateRecurrenceLastMaterialized moves the marker to next only if it still
// equals expected. SQLite's IS compares NULLs as equal.
func (r *SQLiteRecurrenceRepository) UpdateRecurrenceLastMaterialized(ctx context.Context, recurrenceID string, expected *domain.Date, next domain.Date) error {
	op := fmt.Sprintf("advance recurrence %s", recurrenceID)
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(tx)

	res, err := tx.ExecContext(ctx, `
		UPDATE recurrences
		SET last_materialized_date = ?, last_updated_at = ?, last_updated_by = ?
		WHERE recurrence_id = ? AND last_materialized_date IS ?;`,
		next.String(), formatTime(time.Now()), domain.SystemActor, recurrenceID, dateArg(expected))
	if err != nil {
		return mapError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(op, err)
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM recurrences WHERE recurrence_id = ?;`, recurrenceID).Scan(&exists); err != nil {
			return mapError(op, err)
		}
		if exists == 0 {
			return fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("recurrence %s: %w", recurrenceID, apperrors.ErrConcurrentModification)
	}
	return r.Commit(tx)
}
