package dto

// TenantRequest is the payload of tenant create and update calls. The
// payment fields are optional; a rent payment is recorded only when all
// four are present.
type TenantRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Gender      *int    `json:"gender"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	JoinedAt    *string `json:"joined_at"`

	RoomID        *int64   `json:"room_id"`
	AmountPaid    *float64 `json:"amount_paid"`
	PaymentDate   *string  `json:"payment_date"`
	PaymentStatus *int     `json:"payment_status"`
}

type RentPaymentResponse struct {
	ID            int64   `json:"id"`
	RoomID        int64   `json:"room_id"`
	AmountPaid    float64 `json:"amount_paid"`
	PaymentDate   string  `json:"payment_date"`
	PaymentStatus int     `json:"payment_status"`
}

type TenantResponse struct {
	ID          int64                 `json:"id"`
	FirstName   string                `json:"first_name"`
	LastName    string                `json:"last_name"`
	Gender      int                   `json:"gender"`
	Email       string                `json:"email"`
	PhoneNumber string                `json:"phone_number"`
	Address     string                `json:"address"`
	JoinedAt    string                `json:"joined_at"`
	Payments    []RentPaymentResponse `json:"payments,omitempty"`
}
