package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	VenueNotFound   = "VENUE_NOT_FOUND"
	EventNotFound   = "EVENT_NOT_FOUND"
	BookingNotFound = "BOOKING_NOT_FOUND"

	VenueDuplicate   = "VENUE_DUPLICATE"
	EventDuplicate   = "EVENT_DUPLICATE"
	BookingDuplicate = "BOOKING_DUPLICATE"

	VenueHasActiveBookings = "VENUE_HAS_ACTIVE_BOOKINGS"
	EventHasActiveBookings = "EVENT_HAS_ACTIVE_BOOKINGS"

	ConcurrentUpdate   = "CONCURRENT_UPDATE"
	StorageUnavailable = "STORAGE_UNAVAILABLE"
)

type CreateVenueRequest struct {
	Name     string `form:"name" validate:"required,max=100"`
	Location string `form:"location" validate:"required,max=200"`
	Capacity int    `form:"capacity" validate:"required,positive"`
}

type UpdateVenueRequest struct {
	Name        string `form:"name" validate:"required,max=100"`
	Location    string `form:"location" validate:"required,max=200"`
	Capacity    int    `form:"capacity" validate:"required,positive"`
	DeleteImage bool   `form:"delete_image"`
}

type VenueResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	EventDate   time.Time `json:"event_date" validate:"required"`
	Description string    `json:"description" validate:"max=200"`
}

type EventResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	EventDate   time.Time `json:"event_date"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateBookingRequest struct {
	BookingDate time.Time `json:"booking_date" validate:"required"`
	VenueID     int64     `json:"venue_id" validate:"required,positive64"`
	EventID     int64     `json:"event_id" validate:"required,positive64"`
}

type UpdateBookingRequest struct {
	ID          int64     `json:"id" validate:"required,positive64"`
	BookingDate time.Time `json:"booking_date" validate:"required"`
	VenueID     int64     `json:"venue_id" validate:"required,positive64"`
	EventID     int64     `json:"event_id" validate:"required,positive64"`
}

type BookingResponse struct {
	ID          int64          `json:"id"`
	BookingDate time.Time      `json:"booking_date"`
	VenueID     int64          `json:"venue_id"`
	EventID     int64          `json:"event_id"`
	Venue       *VenueResponse `json:"venue,omitempty"`
	Event       *EventResponse `json:"event,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BookingOperateMessage is published to RabbitMQ after a booking is created.
type BookingOperateMessage struct {
	BookingID int64 `json:"booking_id"`
	VenueID   int64 `json:"venue_id"`
	EventID   int64 `json:"event_id"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func NotFoundError(c *ginext.Context, code, desc string) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func ConflictError(c *ginext.Context, code, desc string) {
	c.JSON(409, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func StorageError(c *ginext.Context) {
	c.JSON(502, Response{
		Status: "error",
		Error: &Error{
			Code: StorageUnavailable,
			Desc: "Image storage is currently unavailable",
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func VenueNotFoundError(c *ginext.Context) {
	NotFoundError(c, VenueNotFound, "Venue not found")
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func BookingNotFoundError(c *ginext.Context) {
	NotFoundError(c, BookingNotFound, "Booking not found")
}

func VenueDuplicateError(c *ginext.Context) {
	ConflictError(c, VenueDuplicate, "A venue with the same name and location already exists")
}

func EventDuplicateError(c *ginext.Context) {
	ConflictError(c, EventDuplicate, "An event with the same name and date already exists")
}

func BookingDuplicateError(c *ginext.Context) {
	ConflictError(c, BookingDuplicate, "A booking has already been made for the selected event and venue")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
