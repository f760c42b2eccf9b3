package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"eventease/internal/model"
)

var (
	ErrVenueNotFound   = errors.New("venue not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")

	ErrDuplicateVenue   = errors.New("duplicate venue")
	ErrDuplicateEvent   = errors.New("duplicate event")
	ErrDuplicateBooking = errors.New("duplicate booking")

	ErrVenueHasActiveBookings = errors.New("venue has active bookings")
	ErrEventHasActiveBookings = errors.New("event has active bookings")

	ErrConcurrentUpdate = errors.New("concurrent update detected")
)

type Repository interface {
	GetAllVenues(ctx context.Context) ([]model.Venue, error)
	GetVenueByID(ctx context.Context, id int64) (*model.Venue, error)
	CreateVenueTx(ctx context.Context, v *model.Venue) (int64, error)
	UpdateVenueTx(ctx context.Context, v *model.Venue) error
	DeleteVenueTx(ctx context.Context, id int64) error

	GetAllEvents(ctx context.Context) ([]model.Event, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	CreateEventTx(ctx context.Context, e *model.Event) (int64, error)
	UpdateEventTx(ctx context.Context, e *model.Event) error
	DeleteEventTx(ctx context.Context, id int64) error

	GetAllBookings(ctx context.Context, search string) ([]model.BookingDetail, error)
	GetBookingByID(ctx context.Context, id int64) (*model.BookingDetail, error)
	CreateBookingTx(ctx context.Context, b *model.Booking) (int64, error)
	UpdateBookingTx(ctx context.Context, b *model.Booking) error
	DeleteBooking(ctx context.Context, id int64) error

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

// NormalizeEventName produces the form event names are compared in:
// surrounding whitespace stripped, lowercased.
func NormalizeEventName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}
