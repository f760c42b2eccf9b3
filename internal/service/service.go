package service

import (
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventease/internal/blob"
	"eventease/internal/repo"
)

type Service interface {
	GetAllVenues(ctx *ginext.Context)
	GetVenue(ctx *ginext.Context)
	CreateVenue(ctx *ginext.Context)
	UpdateVenue(ctx *ginext.Context)
	DeleteVenue(ctx *ginext.Context)

	GetAllEvents(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	CreateEvent(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)

	GetAllBookings(ctx *ginext.Context)
	GetBooking(ctx *ginext.Context)
	CreateBooking(ctx *ginext.Context)
	UpdateBooking(ctx *ginext.Context)
	DeleteBooking(ctx *ginext.Context)
}

// Publisher is the queue side the booking service needs; satisfied by
// rabbit.Client.
type Publisher interface {
	Publish(message []byte) error
}

type service struct {
	repo   repo.Repository
	log    *zerolog.Logger
	pub    Publisher
	images blob.Store
}

func NewService(repo repo.Repository, logger *zerolog.Logger, pub Publisher, images blob.Store) Service {
	return &service{
		repo:   repo,
		log:    logger,
		pub:    pub,
		images: images,
	}
}
