package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification.
type NotificationType int

const (
	NotificationRoomSubmitted NotificationType = iota + 1
	NotificationRoomPublished
	NotificationNewLogin
	NotificationBookingRequest
	NotificationPayment
	NotificationBookingApproved
	NotificationBookingRejected
	NotificationTenantAdded
	NotificationTenantRemoved
	NotificationRoomUnavailable
	NotificationPasswordChanged
	NotificationProfileUpdated
	NotificationOthers
)

var notificationTypeNames = map[NotificationType]string{
	NotificationRoomSubmitted:   "room_submitted",
	NotificationRoomPublished:   "room_published",
	NotificationNewLogin:        "new_login",
	NotificationBookingRequest:  "booking_request",
	NotificationPayment:         "payment",
	NotificationBookingApproved: "booking_approved",
	NotificationBookingRejected: "booking_rejected",
	NotificationTenantAdded:     "tenant_added",
	NotificationTenantRemoved:   "tenant_removed",
	NotificationRoomUnavailable: "room_unavailable",
	NotificationPasswordChanged: "password_changed",
	NotificationProfileUpdated:  "profile_updated",
	NotificationOthers:          "others",
}

// String returns the snake_case name of the type.
func (t NotificationType) String() string {
	if name, ok := notificationTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether t is one of the known types.
func (t NotificationType) Valid() bool {
	_, ok := notificationTypeNames[t]
	return ok
}

// ReadStatus of a notification.
type ReadStatus int

const (
	NotificationUnread ReadStatus = 1
	NotificationRead   ReadStatus = 2
)

// Notification is a message addressed to a single user.
type Notification struct {
	ID         int64            `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	ReadStatus ReadStatus       `json:"read_status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
