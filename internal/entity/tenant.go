package entity

import "time"

// Gender of a tenant.
type Gender int

const (
	GenderMale   Gender = 1
	GenderFemale Gender = 2
	GenderOther  Gender = 3
)

// Valid reports whether g is a known gender code.
func (g Gender) Valid() bool {
	return g >= GenderMale && g <= GenderOther
}

// PaymentStatus tracks a rent payment.
type PaymentStatus int

const (
	PaymentPending PaymentStatus = 0
	PaymentPaid    PaymentStatus = 1
	PaymentLate    PaymentStatus = 2
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s >= PaymentPending && s <= PaymentLate
}

// Tenant is a person renting one or more rooms.
type Tenant struct {
	ID          int64         `json:"id"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	Gender      Gender        `json:"gender"`
	Email       string        `json:"email"`
	PhoneNumber string        `json:"phone_number"`
	Address     string        `json:"address"`
	JoinedAt    time.Time     `json:"joined_at"`
	Payments    []RentPayment `json:"payments,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// RentPayment links a tenant to a room with the latest payment information.
type RentPayment struct {
	ID            int64         `json:"id"`
	TenantID      int64         `json:"tenant_id"`
	RoomID        int64         `json:"room_id"`
	AmountPaid    float64       `json:"amount_paid"`
	PaymentDate   time.Time     `json:"payment_date"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
