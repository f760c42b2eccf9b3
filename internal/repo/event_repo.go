package repo

import (
	"context"
	"database/sql"
	"fmt"

	"eventease/internal/model"
)

func (r *repository) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	query := `
		SELECT id, name, event_date, COALESCE(description, ''), created_at, updated_at
		FROM events
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.Name, &e.EventDate, &e.Description, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `
		SELECT id, name, event_date, COALESCE(description, ''), created_at, updated_at
		FROM events WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var e model.Event
	if err := row.Scan(
		&e.ID, &e.Name, &e.EventDate, &e.Description, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, ErrEventNotFound
	}
	return &e, nil
}

func (r *repository) CreateEventTx(ctx context.Context, e *model.Event) (int64, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM events
			WHERE LOWER(TRIM(name)) = $1 AND event_date = $2
		)
	`, NormalizeEventName(e.Name), e.EventDate).Scan(&exists)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to check duplicate event: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return 0, ErrDuplicateEvent
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO events (name, event_date, description)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, created_at, updated_at
	`, e.Name, e.EventDate, e.Description).Scan(&id, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEvent
		}
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

func (r *repository) UpdateEventTx(ctx context.Context, e *model.Event) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM events
			WHERE id != $1 AND LOWER(TRIM(name)) = $2 AND event_date = $3
		)
	`, e.ID, NormalizeEventName(e.Name), e.EventDate).Scan(&exists)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to check duplicate event: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return ErrDuplicateEvent
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE events
		SET name = $1, event_date = $2, description = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $4 AND updated_at = $5
	`, e.Name, e.EventDate, e.Description, e.ID, e.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("failed to update event: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		var dummy int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1`, e.ID).Scan(&dummy)
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return ErrEventNotFound
		}
		return ErrConcurrentUpdate
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *repository) DeleteEventTx(ctx context.Context, id int64) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var hasActive bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings WHERE event_id = $1 AND booking_date > NOW()
		)
	`, id).Scan(&hasActive)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to check active bookings: %w", err)
	}
	if hasActive {
		_ = tx.Rollback()
		return ErrEventHasActiveBookings
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrEventNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
