package handler

import (
	"github.com/octobees/rentroom/api/internal/dto"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/listquery"
)

func roomTypeResponse(rt entity.RoomType) dto.RoomTypeResponse {
	return dto.RoomTypeResponse{ID: rt.ID, Name: rt.Name, Description: rt.Description}
}

func roomResponse(r entity.Room) dto.RoomResponse {
	out := dto.RoomResponse{
		ID:            r.ID,
		RoomNumber:    r.RoomNumber,
		PricePerMonth: r.PricePerMonth,
		Status:        int(r.Status),
		Description:   r.Description,
	}
	if r.RoomType != nil {
		rt := roomTypeResponse(*r.RoomType)
		out.RoomType = &rt
	}
	return out
}

func tenantResponse(t entity.Tenant) dto.TenantResponse {
	out := dto.TenantResponse{
		ID:          t.ID,
		FirstName:   t.FirstName,
		LastName:    t.LastName,
		Gender:      int(t.Gender),
		Email:       t.Email,
		PhoneNumber: t.PhoneNumber,
		Address:     t.Address,
	}
	if !t.JoinedAt.IsZero() {
		out.JoinedAt = t.JoinedAt.Format(listquery.DateLayout)
	}
	for _, p := range t.Payments {
		out.Payments = append(out.Payments, dto.RentPaymentResponse{
			ID:            p.ID,
			RoomID:        p.RoomID,
			AmountPaid:    p.AmountPaid,
			PaymentDate:   p.PaymentDate.Format(listquery.DateLayout),
			PaymentStatus: int(p.PaymentStatus),
		})
	}
	return out
}

func notificationResponse(n entity.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:         n.ID,
		Message:    n.Message,
		Type:       int(n.Type),
		TypeName:   n.Type.String(),
		ReadStatus: int(n.ReadStatus),
		CreatedAt:  n.CreatedAt,
	}
}

func mapAll[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
