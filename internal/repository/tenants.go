package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/listquery"
)

// TenantsRepository describes persistence operations for tenants.
type TenantsRepository interface {
	listquery.Store[entity.Tenant]
	FindByID(ctx context.Context, id int64) (*entity.Tenant, error)
	Create(ctx context.Context, tenant entity.Tenant, payment *entity.RentPayment) (*entity.Tenant, error)
	Update(ctx context.Context, id int64, patch TenantPatch, payment *entity.RentPayment) (*entity.Tenant, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

// TenantPatch lists the tenant attributes to change; nil fields are left alone.
type TenantPatch struct {
	FirstName   *string
	LastName    *string
	Gender      *entity.Gender
	Email       *string
	PhoneNumber *string
	Address     *string
	JoinedAt    *time.Time
}

const tenantColumns = `id, first_name, last_name, gender, email, phone_number, address, joined_at, created_at, updated_at`

const paymentColumns = `id, tenant_id, room_id, amount_paid, payment_date, payment_status, created_at, updated_at`

var tenantsSource = listSource{
	selectList: tenantColumns,
	from:       "tenants",
	cols: columnMap{
		"id":           "id",
		"first_name":   "first_name",
		"last_name":    "last_name",
		"email":        "email",
		"phone_number": "phone_number",
		"address":      "address",
		"gender":       "gender",
		"joined_at":    "joined_at",
	},
}

// PGXTenantsRepository implements TenantsRepository using pgx.
type PGXTenantsRepository struct {
	pool pgxPool
}

// NewPGXTenantsRepository wires a pgx backed repository.
func NewPGXTenantsRepository(pool *pgxpool.Pool) *PGXTenantsRepository {
	return &PGXTenantsRepository{pool: pool}
}

func (r *PGXTenantsRepository) Count(ctx context.Context, plan listquery.QueryPlan) (int, error) {
	return tenantsSource.count(ctx, r.pool, plan)
}

func (r *PGXTenantsRepository) Fetch(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Tenant, error) {
	rows, err := tenantsSource.fetch(ctx, r.pool, plan, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := make([]entity.Tenant, 0, limit)
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant row: %w", err)
		}
		tenants = append(tenants, *tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return tenants, nil
}

// FindByID loads a tenant together with its rent payments.
func (r *PGXTenantsRepository) FindByID(ctx context.Context, id int64) (*entity.Tenant, error) {
	tenant, err := scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFoundError{Resource: "Tenant"}
		}
		return nil, fmt.Errorf("query tenant by id: %w", err)
	}

	payments, err := r.payments(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	tenant.Payments = payments
	return tenant, nil
}

// Create inserts the tenant and, when given, its first rent payment in one transaction.
func (r *PGXTenantsRepository) Create(ctx context.Context, tenant entity.Tenant, payment *entity.RentPayment) (*entity.Tenant, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tenant tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	created, err := scanTenant(tx.QueryRow(ctx, `
        INSERT INTO tenants (first_name, last_name, gender, email, phone_number, address, joined_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+tenantColumns,
		tenant.FirstName, tenant.LastName, int(tenant.Gender), tenant.Email, tenant.PhoneNumber, tenant.Address, tenant.JoinedAt))
	if err != nil {
		if fe := tenantConstraintError(err); fe != nil {
			return nil, fe
		}
		return nil, fmt.Errorf("insert tenant: %w", err)
	}

	if payment != nil {
		p, err := upsertPayment(ctx, tx, created.ID, *payment)
		if err != nil {
			return nil, err
		}
		created.Payments = []entity.RentPayment{*p}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tenant: %w", err)
	}
	return created, nil
}

// Update patches the tenant and upserts the rent payment for (tenant, room) when given.
func (r *PGXTenantsRepository) Update(ctx context.Context, id int64, patch TenantPatch, payment *entity.RentPayment) (*entity.Tenant, error) {
	setClauses := make([]string, 0, 8)
	args := make([]any, 0, 8)
	idx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}
	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.Gender != nil {
		set("gender", int(*patch.Gender))
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.PhoneNumber != nil {
		set("phone_number", *patch.PhoneNumber)
	}
	if patch.Address != nil {
		set("address", *patch.Address)
	}
	if patch.JoinedAt != nil {
		set("joined_at", *patch.JoinedAt)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tenants SET %s WHERE id = $%d RETURNING %s`, strings.Join(setClauses, ", "), idx, tenantColumns)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tenant tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	updated, err := scanTenant(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFoundError{Resource: "Tenant"}
		}
		if fe := tenantConstraintError(err); fe != nil {
			return nil, fe
		}
		return nil, fmt.Errorf("update tenant: %w", err)
	}

	if payment != nil {
		if _, err := upsertPayment(ctx, tx, id, *payment); err != nil {
			return nil, err
		}
	}

	payments, err := r.payments(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	updated.Payments = payments

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tenant: %w", err)
	}
	return updated, nil
}

// Delete removes a tenant and its payments.
func (r *PGXTenantsRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperror.NotFoundError{Resource: "Tenant"}
	}
	return nil
}

func (r *PGXTenantsRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete tenants: %w", err)
	}
	return cmd.RowsAffected(), nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PGXTenantsRepository) payments(ctx context.Context, q querier, tenantID int64) ([]entity.RentPayment, error) {
	rows, err := q.Query(ctx, `SELECT `+paymentColumns+` FROM rent_payments WHERE tenant_id = $1 ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list rent payments: %w", err)
	}
	defer rows.Close()

	var payments []entity.RentPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rent payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rent payments: %w", err)
	}
	return payments, nil
}

func upsertPayment(ctx context.Context, q querier, tenantID int64, p entity.RentPayment) (*entity.RentPayment, error) {
	saved, err := scanPayment(q.QueryRow(ctx, `
        INSERT INTO rent_payments (tenant_id, room_id, amount_paid, payment_date, payment_status)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (tenant_id, room_id) DO UPDATE
            SET amount_paid = EXCLUDED.amount_paid,
                payment_date = EXCLUDED.payment_date,
                payment_status = EXCLUDED.payment_status,
                updated_at = NOW()
        RETURNING `+paymentColumns,
		tenantID, p.RoomID, p.AmountPaid, p.PaymentDate, int(p.PaymentStatus)))
	if err != nil {
		if _, ok := pgConstraint(err, pgForeignKeyViolation); ok {
			errs := apperror.FieldErrors{}
			errs.Add("room_id", "The selected room id is invalid.")
			return nil, errs
		}
		return nil, fmt.Errorf("upsert rent payment: %w", err)
	}
	return saved, nil
}

func scanTenant(row pgx.Row) (*entity.Tenant, error) {
	var (
		t      entity.Tenant
		gender int
	)
	if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &gender, &t.Email, &t.PhoneNumber, &t.Address, &t.JoinedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Gender = entity.Gender(gender)
	return &t, nil
}

func scanPayment(row pgx.Row) (*entity.RentPayment, error) {
	var (
		p      entity.RentPayment
		status int
	)
	if err := row.Scan(&p.ID, &p.TenantID, &p.RoomID, &p.AmountPaid, &p.PaymentDate, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.PaymentStatus = entity.PaymentStatus(status)
	return &p, nil
}

func tenantConstraintError(err error) error {
	constraint, ok := pgConstraint(err, pgUniqueViolation)
	if !ok {
		return nil
	}
	errs := apperror.FieldErrors{}
	switch {
	case strings.Contains(constraint, "phone"):
		errs.Add("phone_number", "The phone number has already been taken.")
	default:
		errs.Add("email", "The email has already been taken.")
	}
	return errs
}
