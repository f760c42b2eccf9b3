package service

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/wb-go/wbf/ginext"

	"eventease/internal/dto"
	"eventease/internal/model"
	"eventease/internal/repo"
	"eventease/pkg/validator"
)

func venueResponse(v *model.Venue) dto.VenueResponse {
	return dto.VenueResponse{
		ID:        int64(v.ID),
		Name:      v.Name,
		Location:  v.Location,
		Capacity:  v.Capacity,
		ImageURL:  v.ImageURL,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func (s *service) GetAllVenues(ctx *ginext.Context) {
	venues, err := s.repo.GetAllVenues(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get venues")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.VenueResponse, 0, len(venues))
	for i := range venues {
		resp = append(resp, venueResponse(&venues[i]))
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) GetVenue(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid venue ID")
		return
	}

	venue, err := s.repo.GetVenueByID(ctx, id)
	if err != nil {
		dto.VenueNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, venueResponse(venue))
}

// imageFile pulls the optional image from the multipart form. A missing file
// is not an error; a non-image content type is.
func imageFile(ctx *ginext.Context) (*multipart.FileHeader, bool, error) {
	header, err := ctx.FormFile("image")
	if err != nil || header == nil || header.Size == 0 {
		return nil, false, nil
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return nil, true, fmt.Errorf("content type %q is not an image", header.Header.Get("Content-Type"))
	}
	return header, true, nil
}

func (s *service) uploadImage(ctx *ginext.Context, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open image payload: %w", err)
	}
	defer file.Close()

	return s.images.Upload(ctx, file, header.Size, header.Header.Get("Content-Type"), header.Filename)
}

// deleteImage removes a stored image best-effort: the row write already
// succeeded, so a storage failure here only leaves an orphaned blob behind.
func (s *service) deleteImage(ctx *ginext.Context, publicURL string) {
	if publicURL == "" {
		return
	}
	if err := s.images.Delete(ctx, publicURL); err != nil {
		s.log.Warn().Err(err).Str("image_url", publicURL).Msg("failed to delete stored image")
	}
}

func (s *service) CreateVenue(ctx *ginext.Context) {
	var req dto.CreateVenueRequest
	if err := ctx.ShouldBind(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create venue request")
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid form data")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	header, present, err := imageFile(ctx)
	if present && err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Please upload a valid image file")
		return
	}

	var imageURL string
	if header != nil {
		imageURL, err = s.uploadImage(ctx, header)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to upload venue image")
			dto.StorageError(ctx)
			return
		}
	}

	venue := &model.Venue{
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
		ImageURL: imageURL,
	}

	id, err := s.repo.CreateVenueTx(ctx, venue)
	if err != nil {
		// the row never landed, so the uploaded image is unreferenced
		s.deleteImage(ctx, imageURL)
		if err == repo.ErrDuplicateVenue {
			dto.VenueDuplicateError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to create venue in DB")
		dto.InternalServerError(ctx)
		return
	}

	venue.ID = int(id)
	s.log.Info().Int64("venue_id", id).Msg("venue created successfully")
	dto.SuccessCreatedResponse(ctx, venueResponse(venue))
}

func (s *service) UpdateVenue(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid venue ID")
		return
	}

	var req dto.UpdateVenueRequest
	if err := ctx.ShouldBind(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid form data")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	existing, err := s.repo.GetVenueByID(ctx, id)
	if err != nil {
		dto.VenueNotFoundError(ctx)
		return
	}

	header, present, err := imageFile(ctx)
	if present && err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Please upload a valid image file")
		return
	}

	// Resolve the image reference: a fresh upload wins, an explicit delete
	// clears, otherwise the current reference is preserved. The old blob is
	// only removed after the new upload and the row write both succeed.
	imageURL := existing.ImageURL
	var oldToDelete string
	if req.DeleteImage && existing.ImageURL != "" {
		imageURL = ""
		oldToDelete = existing.ImageURL
	}
	if header != nil {
		newURL, err := s.uploadImage(ctx, header)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to upload venue image")
			dto.StorageError(ctx)
			return
		}
		imageURL = newURL
		oldToDelete = existing.ImageURL
	}

	venue := &model.Venue{
		ID:        existing.ID,
		Name:      req.Name,
		Location:  req.Location,
		Capacity:  req.Capacity,
		ImageURL:  imageURL,
		UpdatedAt: existing.UpdatedAt,
	}

	if err := s.repo.UpdateVenueTx(ctx, venue); err != nil {
		if header != nil {
			s.deleteImage(ctx, imageURL)
		}
		switch err {
		case repo.ErrVenueNotFound:
			dto.VenueNotFoundError(ctx)
		case repo.ErrDuplicateVenue:
			dto.VenueDuplicateError(ctx)
		case repo.ErrConcurrentUpdate:
			dto.ConflictError(ctx, dto.ConcurrentUpdate, "Venue was modified by another request")
		default:
			s.log.Error().Err(err).Msg("failed to update venue in DB")
			dto.InternalServerError(ctx)
		}
		return
	}

	if oldToDelete != "" && oldToDelete != imageURL {
		s.deleteImage(ctx, oldToDelete)
	}

	updated, err := s.repo.GetVenueByID(ctx, id)
	if err != nil {
		dto.SuccessResponse(ctx, venueResponse(venue))
		return
	}
	s.log.Info().Int64("venue_id", id).Msg("venue updated successfully")
	dto.SuccessResponse(ctx, venueResponse(updated))
}

func (s *service) DeleteVenue(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid venue ID")
		return
	}

	venue, err := s.repo.GetVenueByID(ctx, id)
	if err != nil {
		dto.VenueNotFoundError(ctx)
		return
	}

	if err := s.repo.DeleteVenueTx(ctx, id); err != nil {
		switch err {
		case repo.ErrVenueHasActiveBookings:
			dto.ConflictError(ctx, dto.VenueHasActiveBookings,
				"This venue cannot be deleted because there are active bookings")
		case repo.ErrVenueNotFound:
			dto.VenueNotFoundError(ctx)
		default:
			s.log.Error().Err(err).Msg("failed to delete venue in DB")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.deleteImage(ctx, venue.ImageURL)

	s.log.Info().Int64("venue_id", id).Msg("venue deleted successfully")
	dto.SuccessResponse(ctx, nil)
}
