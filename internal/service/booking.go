package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/wb-go/wbf/ginext"

	"eventease/internal/dto"
	"eventease/internal/model"
	"eventease/internal/repo"
	"eventease/pkg/validator"
)

func bookingResponse(d *model.BookingDetail) dto.BookingResponse {
	venue := venueResponse(&d.Venue)
	event := eventResponse(&d.Event)
	return dto.BookingResponse{
		ID:          int64(d.ID),
		BookingDate: d.BookingDate,
		VenueID:     int64(d.VenueID),
		EventID:     int64(d.EventID),
		Venue:       &venue,
		Event:       &event,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *service) GetAllBookings(ctx *ginext.Context) {
	search := ctx.Query("search")

	bookings, err := s.repo.GetAllBookings(ctx, search)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get bookings")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, bookingResponse(&bookings[i]))
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) GetBooking(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid booking ID")
		return
	}

	booking, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		dto.BookingNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, bookingResponse(booking))
}

func (s *service) CreateBooking(ctx *ginext.Context) {
	var req dto.CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create booking request")
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	booking := &model.Booking{
		BookingDate: req.BookingDate,
		VenueID:     int(req.VenueID),
		EventID:     int(req.EventID),
	}

	id, err := s.repo.CreateBookingTx(ctx, booking)
	if err != nil {
		switch err {
		case repo.ErrVenueNotFound:
			dto.VenueNotFoundError(ctx)
		case repo.ErrEventNotFound:
			dto.EventNotFoundError(ctx)
		case repo.ErrDuplicateBooking:
			dto.BookingDuplicateError(ctx)
		default:
			s.log.Error().Err(err).Msg("failed to create booking in DB")
			dto.InternalServerError(ctx)
		}
		return
	}

	booking.ID = int(id)
	s.log.Info().Int64("booking_id", id).Msg("booking created successfully")

	s.publishBookingCreated(id, req.VenueID, req.EventID)

	detail, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		dto.SuccessCreatedResponse(ctx, dto.BookingResponse{
			ID:          id,
			BookingDate: booking.BookingDate,
			VenueID:     req.VenueID,
			EventID:     req.EventID,
			CreatedAt:   booking.CreatedAt,
			UpdatedAt:   booking.UpdatedAt,
		})
		return
	}
	dto.SuccessCreatedResponse(ctx, bookingResponse(detail))
}

// publishBookingCreated hands the new booking to the notification pipeline.
// Publish failures are logged and never fail the request.
func (s *service) publishBookingCreated(id, venueID, eventID int64) {
	if s.pub == nil {
		return
	}

	msg := dto.BookingOperateMessage{
		BookingID: id,
		VenueID:   venueID,
		EventID:   eventID,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal booking message")
		return
	}
	if err := s.pub.Publish(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to publish booking message to RabbitMQ")
	}
}

func (s *service) UpdateBooking(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid booking ID")
		return
	}

	var req dto.UpdateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	if id != req.ID {
		dto.BookingNotFoundError(ctx)
		return
	}

	existing, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		dto.BookingNotFoundError(ctx)
		return
	}

	booking := &model.Booking{
		ID:          existing.ID,
		BookingDate: req.BookingDate,
		VenueID:     int(req.VenueID),
		EventID:     int(req.EventID),
		UpdatedAt:   existing.UpdatedAt,
	}

	if err := s.repo.UpdateBookingTx(ctx, booking); err != nil {
		switch err {
		case repo.ErrBookingNotFound:
			dto.BookingNotFoundError(ctx)
		case repo.ErrDuplicateBooking:
			dto.BookingDuplicateError(ctx)
		case repo.ErrConcurrentUpdate:
			dto.ConflictError(ctx, dto.ConcurrentUpdate, "Booking was modified by another request")
		default:
			s.log.Error().Err(err).Msg("failed to update booking in DB")
			dto.InternalServerError(ctx)
		}
		return
	}

	updated, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		dto.BookingNotFoundError(ctx)
		return
	}
	s.log.Info().Int64("booking_id", id).Msg("booking updated successfully")
	dto.SuccessResponse(ctx, bookingResponse(updated))
}

func (s *service) DeleteBooking(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid booking ID")
		return
	}

	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		s.log.Error().Err(err).Msg("failed to delete booking in DB")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("booking_id", id).Msg("booking deleted")
	dto.SuccessResponse(ctx, nil)
}
