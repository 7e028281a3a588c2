package dto

// RoomRequest is the payload of room create and update calls. Absent fields
// stay nil so updates only touch what was sent.
type RoomRequest struct {
	RoomNumber    *string  `json:"room_number"`
	RoomTypeID    *int64   `json:"room_type_id"`
	PricePerMonth *float64 `json:"price_per_month"`
	Status        *int     `json:"status"`
	Description   *string  `json:"description"`
}

// RoomTypeRequest is the payload of room type create and update calls.
type RoomTypeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type RoomTypeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RoomResponse struct {
	ID            int64             `json:"id"`
	RoomNumber    string            `json:"room_number"`
	RoomType      *RoomTypeResponse `json:"room_type"`
	PricePerMonth float64           `json:"price_per_month"`
	Status        int               `json:"status"`
	Description   string            `json:"description"`
}
