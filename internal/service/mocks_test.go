package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/listquery"
	"github.com/octobees/rentroom/api/internal/repository"
)

type mockUsersRepository struct {
	findByEmail func(ctx context.Context, email string) (*entity.User, error)
	findByID    func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	create      func(ctx context.Context, name, email, passwordHash string, roleIDs []int) (*entity.User, error)
	list        func(ctx context.Context) ([]entity.User, error)
	update      func(ctx context.Context, id uuid.UUID, patch repository.UserPatch) (*entity.User, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.findByEmail != nil {
		return m.findByEmail(ctx, email)
	}
	return nil, errors.New("findByEmail not implemented")
}

func (m *mockUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockUsersRepository) Create(ctx context.Context, name, email, passwordHash string, roleIDs []int) (*entity.User, error) {
	if m.create != nil {
		return m.create(ctx, name, email, passwordHash, roleIDs)
	}
	return nil, errors.New("create not implemented")
}

func (m *mockUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	if m.list != nil {
		return m.list(ctx)
	}
	return nil, errors.New("List not implemented")
}

func (m *mockUsersRepository) Update(ctx context.Context, id uuid.UUID, patch repository.UserPatch) (*entity.User, error) {
	if m.update != nil {
		return m.update(ctx, id, patch)
	}
	return nil, errors.New("Update not implemented")
}

func (m *mockUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return errors.New("Delete not implemented")
}

type mockRoomsRepository struct {
	count      func(ctx context.Context, plan listquery.QueryPlan) (int, error)
	fetch      func(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Room, error)
	findByID   func(ctx context.Context, id int64) (*entity.Room, error)
	create     func(ctx context.Context, room entity.Room) (*entity.Room, error)
	update     func(ctx context.Context, id int64, patch repository.RoomPatch) (*entity.Room, error)
	delete     func(ctx context.Context, id int64) error
	deleteMany func(ctx context.Context, ids []int64) (int64, error)
}

func (m *mockRoomsRepository) Count(ctx context.Context, plan listquery.QueryPlan) (int, error) {
	if m.count != nil {
		return m.count(ctx, plan)
	}
	return 0, errors.New("count not implemented")
}

func (m *mockRoomsRepository) Fetch(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Room, error) {
	if m.fetch != nil {
		return m.fetch(ctx, plan, offset, limit)
	}
	return nil, errors.New("fetch not implemented")
}

func (m *mockRoomsRepository) FindByID(ctx context.Context, id int64) (*entity.Room, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("findByID not implemented")
}

func (m *mockRoomsRepository) Create(ctx context.Context, room entity.Room) (*entity.Room, error) {
	if m.create != nil {
		return m.create(ctx, room)
	}
	return nil, errors.New("create not implemented")
}

func (m *mockRoomsRepository) Update(ctx context.Context, id int64, patch repository.RoomPatch) (*entity.Room, error) {
	if m.update != nil {
		return m.update(ctx, id, patch)
	}
	return nil, errors.New("update not implemented")
}

func (m *mockRoomsRepository) Delete(ctx context.Context, id int64) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return errors.New("delete not implemented")
}

func (m *mockRoomsRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if m.deleteMany != nil {
		return m.deleteMany(ctx, ids)
	}
	return 0, errors.New("deleteMany not implemented")
}

type mockRoomTypesRepository struct {
	count      func(ctx context.Context, plan listquery.QueryPlan) (int, error)
	fetch      func(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.RoomType, error)
	findByID   func(ctx context.Context, id int64) (*entity.RoomType, error)
	create     func(ctx context.Context, name, description string) (*entity.RoomType, error)
	update     func(ctx context.Context, id int64, name, description *string) (*entity.RoomType, error)
	deleteMany func(ctx context.Context, ids []int64) (int64, error)
}

func (m *mockRoomTypesRepository) Count(ctx context.Context, plan listquery.QueryPlan) (int, error) {
	if m.count != nil {
		return m.count(ctx, plan)
	}
	return 0, errors.New("count not implemented")
}

func (m *mockRoomTypesRepository) Fetch(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.RoomType, error) {
	if m.fetch != nil {
		return m.fetch(ctx, plan, offset, limit)
	}
	return nil, errors.New("fetch not implemented")
}

func (m *mockRoomTypesRepository) FindByID(ctx context.Context, id int64) (*entity.RoomType, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("findByID not implemented")
}

func (m *mockRoomTypesRepository) Create(ctx context.Context, name, description string) (*entity.RoomType, error) {
	if m.create != nil {
		return m.create(ctx, name, description)
	}
	return nil, errors.New("create not implemented")
}

func (m *mockRoomTypesRepository) Update(ctx context.Context, id int64, name, description *string) (*entity.RoomType, error) {
	if m.update != nil {
		return m.update(ctx, id, name, description)
	}
	return nil, errors.New("update not implemented")
}

func (m *mockRoomTypesRepository) Delete(ctx context.Context, id int64) error {
	return errors.New("delete not implemented")
}

func (m *mockRoomTypesRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if m.deleteMany != nil {
		return m.deleteMany(ctx, ids)
	}
	return 0, errors.New("deleteMany not implemented")
}

type mockTenantsRepository struct {
	count      func(ctx context.Context, plan listquery.QueryPlan) (int, error)
	fetch      func(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Tenant, error)
	findByID   func(ctx context.Context, id int64) (*entity.Tenant, error)
	create     func(ctx context.Context, tenant entity.Tenant, payment *entity.RentPayment) (*entity.Tenant, error)
	update     func(ctx context.Context, id int64, patch repository.TenantPatch, payment *entity.RentPayment) (*entity.Tenant, error)
	delete     func(ctx context.Context, id int64) error
	deleteMany func(ctx context.Context, ids []int64) (int64, error)
}

func (m *mockTenantsRepository) Count(ctx context.Context, plan listquery.QueryPlan) (int, error) {
	if m.count != nil {
		return m.count(ctx, plan)
	}
	return 0, errors.New("count not implemented")
}

func (m *mockTenantsRepository) Fetch(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Tenant, error) {
	if m.fetch != nil {
		return m.fetch(ctx, plan, offset, limit)
	}
	return nil, errors.New("fetch not implemented")
}

func (m *mockTenantsRepository) FindByID(ctx context.Context, id int64) (*entity.Tenant, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("findByID not implemented")
}

func (m *mockTenantsRepository) Create(ctx context.Context, tenant entity.Tenant, payment *entity.RentPayment) (*entity.Tenant, error) {
	if m.create != nil {
		return m.create(ctx, tenant, payment)
	}
	return nil, errors.New("create not implemented")
}

func (m *mockTenantsRepository) Update(ctx context.Context, id int64, patch repository.TenantPatch, payment *entity.RentPayment) (*entity.Tenant, error) {
	if m.update != nil {
		return m.update(ctx, id, patch, payment)
	}
	return nil, errors.New("update not implemented")
}

func (m *mockTenantsRepository) Delete(ctx context.Context, id int64) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return errors.New("delete not implemented")
}

func (m *mockTenantsRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if m.deleteMany != nil {
		return m.deleteMany(ctx, ids)
	}
	return 0, errors.New("deleteMany not implemented")
}

type mockNotificationsRepository struct {
	listByUser  func(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error)
	create      func(ctx context.Context, userID uuid.UUID, message string, typ entity.NotificationType) (*entity.Notification, error)
	markRead    func(ctx context.Context, id int64, userID uuid.UUID) (*entity.Notification, error)
	markAllRead func(ctx context.Context, userID uuid.UUID) (int64, error)
	delete      func(ctx context.Context, id int64, userID uuid.UUID) error
}

func (m *mockNotificationsRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error) {
	if m.listByUser != nil {
		return m.listByUser(ctx, userID, unreadOnly)
	}
	return nil, errors.New("listByUser not implemented")
}

func (m *mockNotificationsRepository) Create(ctx context.Context, userID uuid.UUID, message string, typ entity.NotificationType) (*entity.Notification, error) {
	if m.create != nil {
		return m.create(ctx, userID, message, typ)
	}
	return nil, errors.New("create not implemented")
}

func (m *mockNotificationsRepository) MarkRead(ctx context.Context, id int64, userID uuid.UUID) (*entity.Notification, error) {
	if m.markRead != nil {
		return m.markRead(ctx, id, userID)
	}
	return nil, errors.New("markRead not implemented")
}

func (m *mockNotificationsRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.markAllRead != nil {
		return m.markAllRead(ctx, userID)
	}
	return 0, errors.New("markAllRead not implemented")
}

func (m *mockNotificationsRepository) Delete(ctx context.Context, id int64, userID uuid.UUID) error {
	if m.delete != nil {
		return m.delete(ctx, id, userID)
	}
	return errors.New("delete not implemented")
}

// stubLookup answers from fixed sets: taken holds "table.column=value",
// known holds "table" -> existing ids.
type stubLookup struct {
	taken map[string]bool
	known map[string][]int64
	err   error
}

func (l *stubLookup) Exists(ctx context.Context, table, column string, value any, excludeID int64) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return l.taken[fmt.Sprintf("%s.%s=%v", table, column, value)], nil
}

func (l *stubLookup) MissingIDs(ctx context.Context, table string, ids []int64) ([]int64, error) {
	if l.err != nil {
		return nil, l.err
	}
	var missing []int64
	for _, id := range ids {
		found := false
		for _, k := range l.known[table] {
			if k == id {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type notified struct {
	subject string
	message string
	typ     entity.NotificationType
}

type recordingNotifier struct {
	calls []notified
}

func (n *recordingNotifier) Notify(ctx context.Context, actor auth.Identity, message string, typ entity.NotificationType) {
	n.calls = append(n.calls, notified{subject: actor.Subject, message: message, typ: typ})
}

var actor = auth.Identity{
	Subject:     "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
	Email:       "admin@rris.com",
	Roles:       []string{"Admin"},
	Permissions: []string{entity.PermManageRooms, entity.PermManageTenants},
}

func ptr[T any](v T) *T { return &v }
