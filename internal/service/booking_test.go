package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventease/internal/dto"
	"eventease/internal/model"
)

func seedBooking(t *testing.T, e *env, venueID, eventID int, date time.Time) *model.Booking {
	t.Helper()
	b := &model.Booking{VenueID: venueID, EventID: eventID, BookingDate: date}
	_, err := e.repo.CreateBookingTx(context.Background(), b)
	require.NoError(t, err)
	return b
}

func bookingJSON(venueID, eventID int, date time.Time) string {
	return fmt.Sprintf(`{"booking_date":%q,"venue_id":%d,"event_id":%d}`,
		date.Format(time.RFC3339), venueID, eventID)
}

func updateBookingJSON(id, venueID, eventID int, date time.Time) string {
	return fmt.Sprintf(`{"id":%d,"booking_date":%q,"venue_id":%d,"event_id":%d}`,
		id, date.Format(time.RFC3339), venueID, eventID)
}

func seedPair(t *testing.T, e *env) (*model.Venue, *model.Event) {
	t.Helper()
	v := seedVenue(t, e, "Hall A", "Main St", 50)
	ev := seedEvent(t, e, "Gala", time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))
	return v, ev
}

func TestCreateBooking_Succeeds(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)
	date := time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)

	c, w := jsonRequest("POST", "/v1/bookings", bookingJSON(v.ID, ev.ID, date), nil)
	e.svc.CreateBooking(c)

	require.Equal(t, 201, w.Code)
	assert.Len(t, e.repo.bookings, 1)
	// joined venue and event come back with the booking
	assert.Contains(t, w.Body.String(), `"Hall A"`)
	assert.Contains(t, w.Body.String(), `"Gala"`)
}

func TestCreateBooking_RejectsSameVenueEventPairRegardlessOfDate(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)
	seedBooking(t, e, v.ID, ev.ID, time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC))

	c, w := jsonRequest("POST", "/v1/bookings",
		bookingJSON(v.ID, ev.ID, time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)), nil)
	e.svc.CreateBooking(c)

	require.Equal(t, 409, w.Code)
	assert.Contains(t, w.Body.String(), "BOOKING_DUPLICATE")
	assert.Len(t, e.repo.bookings, 1)
}

func TestCreateBooking_MissingVenueOrEvent(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)
	date := time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)

	c, w := jsonRequest("POST", "/v1/bookings", bookingJSON(99, ev.ID, date), nil)
	e.svc.CreateBooking(c)
	assert.Equal(t, 404, w.Code)

	c, w = jsonRequest("POST", "/v1/bookings", bookingJSON(v.ID, 99, date), nil)
	e.svc.CreateBooking(c)
	assert.Equal(t, 404, w.Code)
}

func TestCreateBooking_ValidatesRequiredFields(t *testing.T) {
	e := newEnv()

	c, w := jsonRequest("POST", "/v1/bookings", `{"venue_id":1,"event_id":1}`, nil)
	e.svc.CreateBooking(c)
	assert.Equal(t, 400, w.Code)

	c, w = jsonRequest("POST", "/v1/bookings", `{"booking_date":"2025-07-01T18:00:00Z","event_id":1}`, nil)
	e.svc.CreateBooking(c)
	assert.Equal(t, 400, w.Code)
}

func TestCreateBooking_PublishesNotification(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)

	c, w := jsonRequest("POST", "/v1/bookings",
		bookingJSON(v.ID, ev.ID, time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)), nil)
	e.svc.CreateBooking(c)

	require.Equal(t, 201, w.Code)
	require.Len(t, e.pub.messages, 1)

	var msg dto.BookingOperateMessage
	require.NoError(t, json.Unmarshal(e.pub.messages[0], &msg))
	assert.Equal(t, int64(3), msg.BookingID)
	assert.Equal(t, int64(v.ID), msg.VenueID)
	assert.Equal(t, int64(ev.ID), msg.EventID)
}

func TestUpdateBooking_RejectsVenueDateTakenByOther(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)
	ev2 := seedEvent(t, e, "Expo", time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC))
	taken := time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)
	seedBooking(t, e, v.ID, ev.ID, taken)
	b := seedBooking(t, e, v.ID, ev2.ID, taken.Add(24*time.Hour))

	c, w := jsonRequest("PUT", fmt.Sprintf("/v1/bookings/%d", b.ID),
		updateBookingJSON(b.ID, v.ID, ev2.ID, taken), idParam(b.ID))
	e.svc.UpdateBooking(c)

	require.Equal(t, 409, w.Code)
	assert.Contains(t, w.Body.String(), "BOOKING_DUPLICATE")
}

func TestUpdateBooking_OwnVenueDateSucceeds(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)
	date := time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)
	b := seedBooking(t, e, v.ID, ev.ID, date)

	c, w := jsonRequest("PUT", fmt.Sprintf("/v1/bookings/%d", b.ID),
		updateBookingJSON(b.ID, v.ID, ev.ID, date), idParam(b.ID))
	e.svc.UpdateBooking(c)

	assert.Equal(t, 200, w.Code)
}

func TestUpdateBooking_PathPayloadIDMismatch(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)
	b := seedBooking(t, e, v.ID, ev.ID, time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC))

	c, w := jsonRequest("PUT", "/v1/bookings/5",
		updateBookingJSON(b.ID, v.ID, ev.ID, b.BookingDate), idParam(5))
	e.svc.UpdateBooking(c)

	assert.Equal(t, 404, w.Code)
}

func TestUpdateBooking_NotFound(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)

	c, w := jsonRequest("PUT", "/v1/bookings/8",
		updateBookingJSON(8, v.ID, ev.ID, time.Now().UTC()), idParam(8))
	e.svc.UpdateBooking(c)

	assert.Equal(t, 404, w.Code)
}

func TestDeleteBooking_IsIdempotent(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)
	b := seedBooking(t, e, v.ID, ev.ID, time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC))

	c, w := testContext("DELETE", "/v1/bookings/3", nil, "", idParam(b.ID))
	e.svc.DeleteBooking(c)
	require.Equal(t, 200, w.Code)
	assert.Empty(t, e.repo.bookings)

	// deleting the same id again is still a success
	c, w = testContext("DELETE", "/v1/bookings/3", nil, "", idParam(b.ID))
	e.svc.DeleteBooking(c)
	assert.Equal(t, 200, w.Code)
}

func TestGetAllBookings_SearchFiltersByIDAndEventName(t *testing.T) {
	e := newEnv()
	v := seedVenue(t, e, "Hall A", "Main St", 50)
	ev1 := seedEvent(t, e, "Conference 42", time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))
	ev2 := seedEvent(t, e, "Gala", time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC))
	seedBooking(t, e, v.ID, ev1.ID, time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC))
	seedBooking(t, e, v.ID, ev2.ID, time.Date(2025, 7, 2, 18, 0, 0, 0, time.UTC))

	c, w := testContext("GET", "/v1/bookings?search=42", nil, "", nil)
	e.svc.GetAllBookings(c)
	require.Equal(t, 200, w.Code)

	var resp struct {
		Data []dto.BookingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Conference 42", resp.Data[0].Event.Name)

	// empty query returns everything
	c, w = testContext("GET", "/v1/bookings", nil, "", nil)
	e.svc.GetAllBookings(c)
	require.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestGetBooking_NotFound(t *testing.T) {
	e := newEnv()

	c, w := testContext("GET", "/v1/bookings/1", nil, "", idParam(1))
	e.svc.GetBooking(c)

	assert.Equal(t, 404, w.Code)
}

func TestGetBooking_ReturnsJoinedDetail(t *testing.T) {
	e := newEnv()
	v, ev := seedPair(t, e)
	b := seedBooking(t, e, v.ID, ev.ID, time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC))

	c, w := testContext("GET", "/v1/bookings/3", nil, "", idParam(b.ID))
	e.svc.GetBooking(c)

	require.Equal(t, 200, w.Code)
	var resp struct {
		Data dto.BookingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Venue)
	require.NotNil(t, resp.Data.Event)
	assert.Equal(t, "Hall A", resp.Data.Venue.Name)
	assert.Equal(t, "Gala", resp.Data.Event.Name)
}
