package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"eventease/internal/model"
	"eventease/internal/repo"
)

// fakeRepo is an in-memory Repository enforcing the same rules as the SQL
// implementation.
type fakeRepo struct {
	venues   map[int]model.Venue
	events   map[int]model.Event
	bookings map[int]model.Booking
	nextID   int
	now      time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		venues:   make(map[int]model.Venue),
		events:   make(map[int]model.Event),
		bookings: make(map[int]model.Booking),
		nextID:   1,
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) id() int {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeRepo) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeRepo) GetAllVenues(ctx context.Context) ([]model.Venue, error) {
	var out []model.Venue
	for i := 1; i < f.nextID; i++ {
		if v, ok := f.venues[i]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetVenueByID(ctx context.Context, id int64) (*model.Venue, error) {
	v, ok := f.venues[int(id)]
	if !ok {
		return nil, repo.ErrVenueNotFound
	}
	return &v, nil
}

func sameVenueKey(a, b model.Venue) bool {
	return strings.EqualFold(a.Name, b.Name) && strings.EqualFold(a.Location, b.Location)
}

func (f *fakeRepo) CreateVenueTx(ctx context.Context, v *model.Venue) (int64, error) {
	for _, existing := range f.venues {
		if sameVenueKey(existing, *v) {
			return 0, repo.ErrDuplicateVenue
		}
	}
	v.ID = f.id()
	v.CreatedAt = f.tick()
	v.UpdatedAt = v.CreatedAt
	f.venues[v.ID] = *v
	return int64(v.ID), nil
}

func (f *fakeRepo) UpdateVenueTx(ctx context.Context, v *model.Venue) error {
	stored, ok := f.venues[v.ID]
	if !ok {
		return repo.ErrVenueNotFound
	}
	for id, existing := range f.venues {
		if id != v.ID && sameVenueKey(existing, *v) {
			return repo.ErrDuplicateVenue
		}
	}
	if !stored.UpdatedAt.Equal(v.UpdatedAt) {
		return repo.ErrConcurrentUpdate
	}
	v.CreatedAt = stored.CreatedAt
	v.UpdatedAt = f.tick()
	f.venues[v.ID] = *v
	return nil
}

func (f *fakeRepo) DeleteVenueTx(ctx context.Context, id int64) error {
	if _, ok := f.venues[int(id)]; !ok {
		return repo.ErrVenueNotFound
	}
	for _, b := range f.bookings {
		if b.VenueID == int(id) && b.BookingDate.After(f.now) {
			return repo.ErrVenueHasActiveBookings
		}
	}
	delete(f.venues, int(id))
	return nil
}

func (f *fakeRepo) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	for i := 1; i < f.nextID; i++ {
		if e, ok := f.events[i]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	e, ok := f.events[int(id)]
	if !ok {
		return nil, repo.ErrEventNotFound
	}
	return &e, nil
}

func sameEventKey(a, b model.Event) bool {
	return repo.NormalizeEventName(a.Name) == repo.NormalizeEventName(b.Name) &&
		a.EventDate.Equal(b.EventDate)
}

func (f *fakeRepo) CreateEventTx(ctx context.Context, e *model.Event) (int64, error) {
	for _, existing := range f.events {
		if sameEventKey(existing, *e) {
			return 0, repo.ErrDuplicateEvent
		}
	}
	e.ID = f.id()
	e.CreatedAt = f.tick()
	e.UpdatedAt = e.CreatedAt
	f.events[e.ID] = *e
	return int64(e.ID), nil
}

func (f *fakeRepo) UpdateEventTx(ctx context.Context, e *model.Event) error {
	stored, ok := f.events[e.ID]
	if !ok {
		return repo.ErrEventNotFound
	}
	for id, existing := range f.events {
		if id != e.ID && sameEventKey(existing, *e) {
			return repo.ErrDuplicateEvent
		}
	}
	if !stored.UpdatedAt.Equal(e.UpdatedAt) {
		return repo.ErrConcurrentUpdate
	}
	e.CreatedAt = stored.CreatedAt
	e.UpdatedAt = f.tick()
	f.events[e.ID] = *e
	return nil
}

func (f *fakeRepo) DeleteEventTx(ctx context.Context, id int64) error {
	if _, ok := f.events[int(id)]; !ok {
		return repo.ErrEventNotFound
	}
	for _, b := range f.bookings {
		if b.EventID == int(id) && b.BookingDate.After(f.now) {
			return repo.ErrEventHasActiveBookings
		}
	}
	delete(f.events, int(id))
	return nil
}

func (f *fakeRepo) detail(b model.Booking) model.BookingDetail {
	return model.BookingDetail{
		Booking: b,
		Venue:   f.venues[b.VenueID],
		Event:   f.events[b.EventID],
	}
}

func (f *fakeRepo) GetAllBookings(ctx context.Context, search string) ([]model.BookingDetail, error) {
	var out []model.BookingDetail
	for i := 1; i < f.nextID; i++ {
		b, ok := f.bookings[i]
		if !ok {
			continue
		}
		if search != "" &&
			!strings.Contains(strconv.Itoa(b.ID), search) &&
			!strings.Contains(f.events[b.EventID].Name, search) {
			continue
		}
		out = append(out, f.detail(b))
	}
	return out, nil
}

func (f *fakeRepo) GetBookingByID(ctx context.Context, id int64) (*model.BookingDetail, error) {
	b, ok := f.bookings[int(id)]
	if !ok {
		return nil, repo.ErrBookingNotFound
	}
	d := f.detail(b)
	return &d, nil
}

func (f *fakeRepo) bookingConflicts(b model.Booking, excludeID int) bool {
	for id, existing := range f.bookings {
		if id == excludeID {
			continue
		}
		if existing.VenueID == b.VenueID && existing.EventID == b.EventID {
			return true
		}
		if existing.VenueID == b.VenueID && existing.BookingDate.Equal(b.BookingDate) {
			return true
		}
	}
	return false
}

func (f *fakeRepo) CreateBookingTx(ctx context.Context, b *model.Booking) (int64, error) {
	if _, ok := f.venues[b.VenueID]; !ok {
		return 0, repo.ErrVenueNotFound
	}
	if _, ok := f.events[b.EventID]; !ok {
		return 0, repo.ErrEventNotFound
	}
	if f.bookingConflicts(*b, 0) {
		return 0, repo.ErrDuplicateBooking
	}
	b.ID = f.id()
	b.CreatedAt = f.tick()
	b.UpdatedAt = b.CreatedAt
	f.bookings[b.ID] = *b
	return int64(b.ID), nil
}

func (f *fakeRepo) UpdateBookingTx(ctx context.Context, b *model.Booking) error {
	stored, ok := f.bookings[b.ID]
	if !ok {
		return repo.ErrBookingNotFound
	}
	if f.bookingConflicts(*b, b.ID) {
		return repo.ErrDuplicateBooking
	}
	if !stored.UpdatedAt.Equal(b.UpdatedAt) {
		return repo.ErrConcurrentUpdate
	}
	b.CreatedAt = stored.CreatedAt
	b.UpdatedAt = f.tick()
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeRepo) DeleteBooking(ctx context.Context, id int64) error {
	delete(f.bookings, int(id))
	return nil
}

func (f *fakeRepo) MigrateUp(migrationsDir string) error   { return nil }
func (f *fakeRepo) MigrateDown(migrationsDir string) error { return nil }

// fakeBlob records the order of storage calls.
type fakeBlob struct {
	calls     []string
	uploads   int
	uploadErr error
}

func (f *fakeBlob) Upload(ctx context.Context, data io.Reader, size int64, contentType, fileName string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	url := fmt.Sprintf("http://blob.local/venue-images/img-%d.png", f.uploads)
	f.calls = append(f.calls, "upload "+url)
	return url, nil
}

func (f *fakeBlob) Delete(ctx context.Context, publicURL string) error {
	if publicURL == "" {
		return nil
	}
	f.calls = append(f.calls, "delete "+publicURL)
	return nil
}

type fakePublisher struct {
	messages [][]byte
}

func (f *fakePublisher) Publish(message []byte) error {
	f.messages = append(f.messages, message)
	return nil
}

type env struct {
	repo *fakeRepo
	blob *fakeBlob
	pub  *fakePublisher
	svc  Service
}

func newEnv() *env {
	gin.SetMode(gin.TestMode)
	r := newFakeRepo()
	b := &fakeBlob{}
	p := &fakePublisher{}
	log := testLogger()
	return &env{repo: r, blob: b, pub: p, svc: NewService(r, log, p, b)}
}

func testContext(method, target string, body io.Reader, contentType string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.Request = req
	c.Params = params
	return c, w
}

func jsonRequest(method, target, body string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	return testContext(method, target, strings.NewReader(body), "application/json", params)
}

func formRequest(method, target string, values url.Values, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	return testContext(method, target, strings.NewReader(values.Encode()),
		"application/x-www-form-urlencoded", params)
}

// multipartRequest builds a venue form with an optional file part.
func multipartRequest(method, target string, fields map[string]string, fileName, fileType string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="image"; filename="%s"`, fileName))
		h.Set("Content-Type", fileType)
		part, _ := mw.CreatePart(h)
		_, _ = part.Write([]byte("fake image bytes"))
	}
	_ = mw.Close()
	return testContext(method, target, &buf, mw.FormDataContentType(), params)
}

func idParam(id int) gin.Params {
	return gin.Params{{Key: "id", Value: strconv.Itoa(id)}}
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
