package entity

import "time"

// RoomStatus is the booking state of a room.
type RoomStatus int

const (
	RoomAvailable RoomStatus = 1
	RoomBooked    RoomStatus = 2
)

// Valid reports whether s is a known status.
func (s RoomStatus) Valid() bool {
	return s == RoomAvailable || s == RoomBooked
}

// RoomType groups rooms by kind (single, double, suite...).
type RoomType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Room is a rentable unit.
type Room struct {
	ID            int64      `json:"id"`
	RoomNumber    string     `json:"room_number"`
	RoomTypeID    int64      `json:"room_type_id"`
	RoomType      *RoomType  `json:"room_type,omitempty"`
	PricePerMonth float64    `json:"price_per_month"`
	Status        RoomStatus `json:"status"`
	Description   string     `json:"description"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
