package model

import "time"

type Venue struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  string    `db:"location" json:"location"`
	Capacity  int       `db:"capacity" json:"capacity"`
	ImageURL  string    `db:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Event struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	EventDate   time.Time `db:"event_date" json:"event_date"`
	Description string    `db:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Booking struct {
	ID          int       `db:"id" json:"id"`
	BookingDate time.Time `db:"booking_date" json:"booking_date"`
	VenueID     int       `db:"venue_id" json:"venue_id"`
	EventID     int       `db:"event_id" json:"event_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BookingDetail is a booking joined with the venue and event it references.
type BookingDetail struct {
	Booking
	Venue Venue `json:"venue"`
	Event Event `json:"event"`
}
