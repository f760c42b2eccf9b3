package repo

import (
	"context"
	"database/sql"
	"fmt"

	"eventease/internal/model"
)

const bookingDetailColumns = `
	b.id, b.booking_date, b.venue_id, b.event_id, b.created_at, b.updated_at,
	v.id, v.name, v.location, v.capacity, COALESCE(v.image_url, ''), v.created_at, v.updated_at,
	e.id, e.name, e.event_date, COALESCE(e.description, ''), e.created_at, e.updated_at
`

func scanBookingDetail(row interface{ Scan(...any) error }) (*model.BookingDetail, error) {
	var d model.BookingDetail
	err := row.Scan(
		&d.ID, &d.BookingDate, &d.VenueID, &d.EventID, &d.CreatedAt, &d.UpdatedAt,
		&d.Venue.ID, &d.Venue.Name, &d.Venue.Location, &d.Venue.Capacity,
		&d.Venue.ImageURL, &d.Venue.CreatedAt, &d.Venue.UpdatedAt,
		&d.Event.ID, &d.Event.Name, &d.Event.EventDate, &d.Event.Description,
		&d.Event.CreatedAt, &d.Event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAllBookings returns bookings joined with their venue and event. A
// non-empty search narrows the list to bookings whose id (as text) contains
// the query or whose event name contains it, case-sensitively.
func (r *repository) GetAllBookings(ctx context.Context, search string) ([]model.BookingDetail, error) {
	query := `
		SELECT ` + bookingDetailColumns + `
		FROM bookings b
		JOIN venues v ON v.id = b.venue_id
		JOIN events e ON e.id = b.event_id
		WHERE $1 = '' OR b.id::TEXT LIKE '%' || $1 || '%' OR e.name LIKE '%' || $1 || '%'
		ORDER BY b.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, search)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.BookingDetail
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *d)
	}

	return bookings, rows.Err()
}

func (r *repository) GetBookingByID(ctx context.Context, id int64) (*model.BookingDetail, error) {
	query := `
		SELECT ` + bookingDetailColumns + `
		FROM bookings b
		JOIN venues v ON v.id = b.venue_id
		JOIN events e ON e.id = b.event_id
		WHERE b.id = $1
	`
	d, err := scanBookingDetail(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, ErrBookingNotFound
	}
	return d, nil
}

func (r *repository) CreateBookingTx(ctx context.Context, b *model.Booking) (int64, error) {
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
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM venues WHERE id = $1)`, b.VenueID).Scan(&exists); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to check venue: %w", err)
	}
	if !exists {
		_ = tx.Rollback()
		return 0, ErrVenueNotFound
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, b.EventID).Scan(&exists); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to check event: %w", err)
	}
	if !exists {
		_ = tx.Rollback()
		return 0, ErrEventNotFound
	}

	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE (venue_id = $1 AND event_id = $2)
			   OR (venue_id = $1 AND booking_date = $3)
		)
	`, b.VenueID, b.EventID, b.BookingDate).Scan(&exists)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to check duplicate booking: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return 0, ErrDuplicateBooking
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings (booking_date, venue_id, event_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, b.BookingDate, b.VenueID, b.EventID).Scan(&id, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return 0, ErrDuplicateBooking
		}
		return 0, fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

func (r *repository) UpdateBookingTx(ctx context.Context, b *model.Booking) error {
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
			SELECT 1 FROM bookings
			WHERE id != $1
			  AND ((venue_id = $2 AND event_id = $3)
			    OR (venue_id = $2 AND booking_date = $4))
		)
	`, b.ID, b.VenueID, b.EventID, b.BookingDate).Scan(&exists)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to check duplicate booking: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return ErrDuplicateBooking
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET booking_date = $1, venue_id = $2, event_id = $3, updated_at = NOW()
		WHERE id = $4 AND updated_at = $5
	`, b.BookingDate, b.VenueID, b.EventID, b.ID, b.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return ErrDuplicateBooking
		}
		return fmt.Errorf("failed to update booking: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		var dummy int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM bookings WHERE id = $1`, b.ID).Scan(&dummy)
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return ErrBookingNotFound
		}
		return ErrConcurrentUpdate
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteBooking is idempotent: deleting an id that does not exist is a no-op.
func (r *repository) DeleteBooking(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}
