package service

import (
	"context"
	"fmt"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/dto"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/listquery"
	"github.com/octobees/rentroom/api/internal/repository"
)

const (
	maxNameLength    = 250
	maxEmailLength   = 255
	maxPhoneLength   = 20
	maxAddressLength = 500
)

// TenantService implements the tenant use cases.
type TenantService struct {
	repo        repository.TenantsRepository
	lookup      repository.Lookup
	notifier    Notifier
	phoneRegion string
}

func NewTenantService(repo repository.TenantsRepository, lookup repository.Lookup, notifier Notifier, phoneRegion string) *TenantService {
	if phoneRegion == "" {
		phoneRegion = defaultPhoneRegion
	}
	return &TenantService{repo: repo, lookup: lookup, notifier: notifier, phoneRegion: phoneRegion}
}

func (s *TenantService) List(ctx context.Context, raw listquery.Request) (listquery.PageResult[entity.Tenant], error) {
	return listquery.Run[entity.Tenant](ctx, raw, TenantPolicy, TenantFields, s.repo)
}

// Find loads a tenant with its rent payments.
func (s *TenantService) Find(ctx context.Context, id int64) (*entity.Tenant, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TenantService) Create(ctx context.Context, actor auth.Identity, req dto.TenantRequest) (*entity.Tenant, error) {
	patch, payment, err := s.check(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	tenant := entity.Tenant{
		FirstName:   *patch.FirstName,
		LastName:    *patch.LastName,
		Gender:      *patch.Gender,
		Email:       *patch.Email,
		PhoneNumber: *patch.PhoneNumber,
		JoinedAt:    *patch.JoinedAt,
	}
	if patch.Address != nil {
		tenant.Address = *patch.Address
	}

	created, err := s.repo.Create(ctx, tenant, payment)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, actor, fmt.Sprintf("Tenant %s %s has been added", created.FirstName, created.LastName), entity.NotificationTenantAdded)
	}
	return created, nil
}

func (s *TenantService) Update(ctx context.Context, id int64, req dto.TenantRequest) (*entity.Tenant, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	patch, payment, err := s.check(ctx, req, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch, payment)
}

func (s *TenantService) Delete(ctx context.Context, actor auth.Identity, id int64) error {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, actor, fmt.Sprintf("Tenant %s %s has been removed", tenant.FirstName, tenant.LastName), entity.NotificationTenantRemoved)
	}
	return nil
}

func (s *TenantService) BulkDelete(ctx context.Context, actor auth.Identity, raw []any) (int64, error) {
	ids, err := checkBulkIDs(ctx, s.lookup, "tenants", raw)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, apperror.ErrNothingDeleted
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, actor, fmt.Sprintf("%d tenants have been removed", n), entity.NotificationTenantRemoved)
	}
	return n, nil
}

func (s *TenantService) check(ctx context.Context, req dto.TenantRequest, ignoreID int64) (repository.TenantPatch, *entity.RentPayment, error) {
	creating := ignoreID == 0
	c := newFieldChecker()
	var patch repository.TenantPatch

	if v, ok := c.text("first_name", req.FirstName, creating, maxNameLength); ok {
		patch.FirstName = &v
	}
	if v, ok := c.text("last_name", req.LastName, creating, maxNameLength); ok {
		patch.LastName = &v
	}
	if v, ok := c.oneOf("gender", req.Gender, creating, func(g int) bool { return entity.Gender(g).Valid() }); ok {
		g := entity.Gender(v)
		patch.Gender = &g
	}
	if v, ok := c.text("email", req.Email, creating, maxEmailLength); ok {
		if email, valid := normalizeEmail(v); !valid {
			c.fail("email", "The email field must be a valid email address.")
		} else {
			if err := c.unique(ctx, s.lookup, "tenants", "email", "email", email, ignoreID); err != nil {
				return patch, nil, apperror.Storage("lookup", err)
			}
			patch.Email = &email
		}
	}
	if v, ok := c.text("phone_number", req.PhoneNumber, creating, maxPhoneLength); ok {
		if !possiblePhone(v, s.phoneRegion) {
			c.fail("phone_number", "The phone number field must be a valid number.")
		} else {
			if err := c.unique(ctx, s.lookup, "tenants", "phone_number", "phone_number", v, ignoreID); err != nil {
				return patch, nil, apperror.Storage("lookup", err)
			}
			patch.PhoneNumber = &v
		}
	}
	if v, ok := c.optionalText("address", req.Address, maxAddressLength); ok {
		patch.Address = &v
	}
	if v, ok := c.date("joined_at", req.JoinedAt, creating); ok {
		patch.JoinedAt = &v
	}

	payment, err := s.checkPayment(ctx, c, req)
	if err != nil {
		return patch, nil, err
	}
	return patch, payment, c.err()
}

// checkPayment validates the optional payment fields. A payment is returned
// only when every field is present and valid.
func (s *TenantService) checkPayment(ctx context.Context, c *fieldChecker, req dto.TenantRequest) (*entity.RentPayment, error) {
	var (
		p        entity.RentPayment
		complete = true
	)

	if v, ok := c.positiveID("room_id", req.RoomID, false); ok {
		if err := c.exists(ctx, s.lookup, "rooms", "room_id", v); err != nil {
			return nil, apperror.Storage("lookup", err)
		}
		p.RoomID = v
	} else {
		complete = false
	}
	if v, ok := c.between("amount_paid", req.AmountPaid, false, 0, listquery.MaxPrice); ok {
		p.AmountPaid = v
	} else {
		complete = false
	}
	if v, ok := c.date("payment_date", req.PaymentDate, false); ok {
		p.PaymentDate = v
	} else {
		complete = false
	}
	if v, ok := c.oneOf("payment_status", req.PaymentStatus, false, func(st int) bool { return entity.PaymentStatus(st).Valid() }); ok {
		p.PaymentStatus = entity.PaymentStatus(v)
	} else {
		complete = false
	}

	if !complete {
		return nil, nil
	}
	return &p, nil
}
