package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/entity"
)

// ErrUserNotFound is returned when no user matches the lookup criteria.
var ErrUserNotFound = apperror.NotFoundError{Resource: "User"}

// UsersRepository declares operations for back office accounts.
type UsersRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Create(ctx context.Context, name, email, passwordHash string, roleIDs []int) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, id uuid.UUID, patch UserPatch) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserPatch lists the account attributes to change. A nil RoleIDs keeps the
// current roles.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	RoleIDs      []int
}

const userColumns = `id, name, email, password_hash, created_at, updated_at`

const userRolesQuery = `
    SELECT ur.user_id, r.id, r.name,
           COALESCE(array_agg(p.name ORDER BY p.name) FILTER (WHERE p.name IS NOT NULL), '{}')
    FROM user_role ur
    JOIN roles r ON r.id = ur.role_id
    LEFT JOIN role_permission rp ON rp.role_id = r.id
    LEFT JOIN permissions p ON p.id = rp.permission_id
    WHERE ur.user_id = ANY($1)
    GROUP BY ur.user_id, r.id, r.name
    ORDER BY r.id`

// PGXUsersRepository implements UsersRepository with pgx.
type PGXUsersRepository struct {
	pool pgxPool
}

// NewPGXUsersRepository instantiates a users repository.
func NewPGXUsersRepository(pool *pgxpool.Pool) *PGXUsersRepository {
	return &PGXUsersRepository{pool: pool}
}

// FindByEmail fetches a user and its roles by email if present.
func (r *PGXUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByID retrieves a user by identifier.
func (r *PGXUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PGXUsersRepository) findOne(ctx context.Context, q querier, query string, arg any) (*entity.User, error) {
	user, err := scanUser(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	users := []entity.User{*user}
	if err := r.attachRoles(ctx, q, users); err != nil {
		return nil, err
	}
	return &users[0], nil
}

// Create inserts a new user row and assigns its roles.
func (r *PGXUsersRepository) Create(ctx context.Context, name, email, passwordHash string, roleIDs []int) (*entity.User, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin user tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	user, err := scanUser(tx.QueryRow(ctx, `
        INSERT INTO users (name, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING `+userColumns, name, email, passwordHash))
	if err != nil {
		if fe := userConstraintError(err); fe != nil {
			return nil, fe
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := assignRoles(ctx, tx, user.ID, roleIDs); err != nil {
		return nil, err
	}
	users := []entity.User{*user}
	if err := r.attachRoles(ctx, tx, users); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit user: %w", err)
	}
	return &users[0], nil
}

// List returns all users ordered by creation date (desc).
func (r *PGXUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	rows.Close()

	if err := r.attachRoles(ctx, r.pool, users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update patches user attributes and, when RoleIDs is set, replaces the roles.
func (r *PGXUsersRepository) Update(ctx context.Context, id uuid.UUID, patch UserPatch) (*entity.User, error) {
	setClauses := make([]string, 0, 4)
	args := make([]any, 0, 4)
	idx := 1

	if patch.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", idx))
		args = append(args, *patch.Name)
		idx++
	}
	if patch.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", idx))
		args = append(args, *patch.Email)
		idx++
	}
	if patch.PasswordHash != nil {
		setClauses = append(setClauses, fmt.Sprintf("password_hash = $%d", idx))
		args = append(args, *patch.PasswordHash)
		idx++
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`, strings.Join(setClauses, ", "), idx, userColumns)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin user tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	user, err := scanUser(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if fe := userConstraintError(err); fe != nil {
			return nil, fe
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if patch.RoleIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM user_role WHERE user_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear user roles: %w", err)
		}
		if err := assignRoles(ctx, tx, id, patch.RoleIDs); err != nil {
			return nil, err
		}
	}
	users := []entity.User{*user}
	if err := r.attachRoles(ctx, tx, users); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit user: %w", err)
	}
	return &users[0], nil
}

// Delete removes a user by id.
func (r *PGXUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PGXUsersRepository) attachRoles(ctx context.Context, q querier, users []entity.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(users))
	pos := make(map[uuid.UUID]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
		pos[u.ID] = i
	}

	rows, err := q.Query(ctx, userRolesQuery, ids)
	if err != nil {
		return fmt.Errorf("load user roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID uuid.UUID
			role   entity.Role
		)
		if err := rows.Scan(&userID, &role.ID, &role.Name, &role.Permissions); err != nil {
			return fmt.Errorf("scan user role: %w", err)
		}
		if i, ok := pos[userID]; ok {
			users[i].Roles = append(users[i].Roles, role)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate user roles: %w", err)
	}
	return nil
}

func assignRoles(ctx context.Context, tx pgx.Tx, userID uuid.UUID, roleIDs []int) error {
	for _, roleID := range roleIDs {
		_, err := tx.Exec(ctx, `INSERT INTO user_role (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, roleID)
		if err != nil {
			if _, ok := pgConstraint(err, pgForeignKeyViolation); ok {
				errs := apperror.FieldErrors{}
				errs.Add("role_ids", "The selected role ids is invalid.")
				return errs
			}
			return fmt.Errorf("assign role %d: %w", roleID, err)
		}
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func userConstraintError(err error) error {
	if _, ok := pgConstraint(err, pgUniqueViolation); ok {
		errs := apperror.FieldErrors{}
		errs.Add("email", "The email has already been taken.")
		return errs
	}
	return nil
}
