package service

import (
	"fmt"
	"strconv"

	"github.com/wb-go/wbf/ginext"

	"eventease/internal/dto"
	"eventease/internal/model"
	"eventease/internal/repo"
	"eventease/pkg/validator"
)

func eventResponse(e *model.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:          int64(e.ID),
		Name:        e.Name,
		EventDate:   e.EventDate,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (s *service) GetAllEvents(ctx *ginext.Context) {
	events, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get events")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, eventResponse(&events[i]))
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) GetEvent(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, eventResponse(event))
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := &model.Event{
		Name:        req.Name,
		EventDate:   req.EventDate,
		Description: req.Description,
	}

	id, err := s.repo.CreateEventTx(ctx, event)
	if err != nil {
		if err == repo.ErrDuplicateEvent {
			dto.EventDuplicateError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}

	event.ID = int(id)
	s.log.Info().Int64("event_id", id).Msg("event created successfully")
	dto.SuccessCreatedResponse(ctx, eventResponse(event))
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	existing, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}

	event := &model.Event{
		ID:          existing.ID,
		Name:        req.Name,
		EventDate:   req.EventDate,
		Description: req.Description,
		UpdatedAt:   existing.UpdatedAt,
	}

	if err := s.repo.UpdateEventTx(ctx, event); err != nil {
		switch err {
		case repo.ErrEventNotFound:
			dto.EventNotFoundError(ctx)
		case repo.ErrDuplicateEvent:
			dto.EventDuplicateError(ctx)
		case repo.ErrConcurrentUpdate:
			dto.ConflictError(ctx, dto.ConcurrentUpdate, "Event was modified by another request")
		default:
			s.log.Error().Err(err).Msg("failed to update event in DB")
			dto.InternalServerError(ctx)
		}
		return
	}

	updated, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		dto.SuccessResponse(ctx, eventResponse(event))
		return
	}
	s.log.Info().Int64("event_id", id).Msg("event updated successfully")
	dto.SuccessResponse(ctx, eventResponse(updated))
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if err := s.repo.DeleteEventTx(ctx, id); err != nil {
		switch err {
		case repo.ErrEventHasActiveBookings:
			dto.ConflictError(ctx, dto.EventHasActiveBookings,
				"This event cannot be deleted because there are active bookings")
		case repo.ErrEventNotFound:
			dto.EventNotFoundError(ctx)
		default:
			s.log.Error().Err(err).Msg("failed to delete event in DB")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().Int64("event_id", id).Msg("event deleted successfully")
	dto.SuccessResponse(ctx, nil)
}
