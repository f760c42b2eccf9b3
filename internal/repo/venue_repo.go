package repo

import (
	"context"
	"database/sql"
	"fmt"

	"eventease/internal/model"
)

func (r *repository) GetAllVenues(ctx context.Context) ([]model.Venue, error) {
	query := `
		SELECT id, name, location, capacity, COALESCE(image_url, ''), created_at, updated_at
		FROM venues
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get venues: %w", err)
	}
	defer rows.Close()

	var venues []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Location, &v.Capacity, &v.ImageURL, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, v)
	}

	return venues, rows.Err()
}

func (r *repository) GetVenueByID(ctx context.Context, id int64) (*model.Venue, error) {
	query := `
		SELECT id, name, location, capacity, COALESCE(image_url, ''), created_at, updated_at
		FROM venues WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var v model.Venue
	if err := row.Scan(
		&v.ID, &v.Name, &v.Location, &v.Capacity, &v.ImageURL, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, ErrVenueNotFound
	}
	return &v, nil
}

func (r *repository) CreateVenueTx(ctx context.Context, v *model.Venue) (int64, error) {
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
			SELECT 1 FROM venues
			WHERE LOWER(name) = LOWER($1) AND LOWER(location) = LOWER($2)
		)
	`, v.Name, v.Location).Scan(&exists)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to check duplicate venue: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return 0, ErrDuplicateVenue
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO venues (name, location, capacity, image_url)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at, updated_at
	`, v.Name, v.Location, v.Capacity, v.ImageURL).Scan(&id, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return 0, ErrDuplicateVenue
		}
		return 0, fmt.Errorf("failed to insert venue: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

// UpdateVenueTx writes the venue back using v.UpdatedAt as the optimistic
// concurrency token. It returns ErrConcurrentUpdate when the row changed
// since it was read, ErrVenueNotFound when the row is gone.
func (r *repository) UpdateVenueTx(ctx context.Context, v *model.Venue) error {
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
			SELECT 1 FROM venues
			WHERE id != $1 AND LOWER(name) = LOWER($2) AND LOWER(location) = LOWER($3)
		)
	`, v.ID, v.Name, v.Location).Scan(&exists)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to check duplicate venue: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return ErrDuplicateVenue
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE venues
		SET name = $1, location = $2, capacity = $3, image_url = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $5 AND updated_at = $6
	`, v.Name, v.Location, v.Capacity, v.ImageURL, v.ID, v.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return ErrDuplicateVenue
		}
		return fmt.Errorf("failed to update venue: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		var dummy int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM venues WHERE id = $1`, v.ID).Scan(&dummy)
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return ErrVenueNotFound
		}
		return ErrConcurrentUpdate
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *repository) DeleteVenueTx(ctx context.Context, id int64) error {
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
			SELECT 1 FROM bookings WHERE venue_id = $1 AND booking_date > NOW()
		)
	`, id).Scan(&hasActive)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to check active bookings: %w", err)
	}
	if hasActive {
		_ = tx.Rollback()
		return ErrVenueHasActiveBookings
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrVenueNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
