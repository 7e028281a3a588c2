package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/listquery"
	"github.com/octobees/rentroom/api/internal/middleware"
	"github.com/octobees/rentroom/api/internal/repository"
)

var actor = auth.Identity{
	Subject:     "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
	Email:       "admin@rris.com",
	Roles:       []string{"Admin"},
	Permissions: []string{entity.PermManageRooms, entity.PermManageTenants},
}

func ptr[T any](v T) *T { return &v }

type call struct {
	method string
	target string
	body   string
	id     string
	as     *auth.Identity
}

// serve runs h against a recorded request built from cl.
func serve(h echo.HandlerFunc, cl call) *httptest.ResponseRecorder {
	e := echo.New()
	var body io.Reader
	if cl.body != "" {
		body = strings.NewReader(cl.body)
	}
	req := httptest.NewRequest(cl.method, cl.target, body)
	if cl.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if cl.id != "" {
		c.SetParamNames("id")
		c.SetParamValues(cl.id)
	}
	if cl.as != nil {
		c.Set(middleware.ContextKeyIdentity, *cl.as)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

type stubRooms struct {
	count      func(ctx context.Context, plan listquery.QueryPlan) (int, error)
	fetch      func(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Room, error)
	findByID   func(ctx context.Context, id int64) (*entity.Room, error)
	create     func(ctx context.Context, room entity.Room) (*entity.Room, error)
	update     func(ctx context.Context, id int64, patch repository.RoomPatch) (*entity.Room, error)
	delete     func(ctx context.Context, id int64) error
	deleteMany func(ctx context.Context, ids []int64) (int64, error)
}

func (s *stubRooms) Count(ctx context.Context, plan listquery.QueryPlan) (int, error) {
	if s.count != nil {
		return s.count(ctx, plan)
	}
	return 0, errors.New("not implemented")
}

func (s *stubRooms) Fetch(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Room, error) {
	if s.fetch != nil {
		return s.fetch(ctx, plan, offset, limit)
	}
	return nil, errors.New("not implemented")
}

func (s *stubRooms) FindByID(ctx context.Context, id int64) (*entity.Room, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (s *stubRooms) Create(ctx context.Context, room entity.Room) (*entity.Room, error) {
	if s.create != nil {
		return s.create(ctx, room)
	}
	return nil, errors.New("not implemented")
}

func (s *stubRooms) Update(ctx context.Context, id int64, patch repository.RoomPatch) (*entity.Room, error) {
	if s.update != nil {
		return s.update(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (s *stubRooms) Delete(ctx context.Context, id int64) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return errors.New("not implemented")
}

func (s *stubRooms) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if s.deleteMany != nil {
		return s.deleteMany(ctx, ids)
	}
	return 0, errors.New("not implemented")
}

type stubRoomTypes struct {
	count      func(ctx context.Context, plan listquery.QueryPlan) (int, error)
	fetch      func(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.RoomType, error)
	findByID   func(ctx context.Context, id int64) (*entity.RoomType, error)
	create     func(ctx context.Context, name, description string) (*entity.RoomType, error)
	update     func(ctx context.Context, id int64, name, description *string) (*entity.RoomType, error)
	delete     func(ctx context.Context, id int64) error
	deleteMany func(ctx context.Context, ids []int64) (int64, error)
}

func (s *stubRoomTypes) Count(ctx context.Context, plan listquery.QueryPlan) (int, error) {
	if s.count != nil {
		return s.count(ctx, plan)
	}
	return 0, errors.New("not implemented")
}

func (s *stubRoomTypes) Fetch(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.RoomType, error) {
	if s.fetch != nil {
		return s.fetch(ctx, plan, offset, limit)
	}
	return nil, errors.New("not implemented")
}

func (s *stubRoomTypes) FindByID(ctx context.Context, id int64) (*entity.RoomType, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (s *stubRoomTypes) Create(ctx context.Context, name, description string) (*entity.RoomType, error) {
	if s.create != nil {
		return s.create(ctx, name, description)
	}
	return nil, errors.New("not implemented")
}

func (s *stubRoomTypes) Update(ctx context.Context, id int64, name, description *string) (*entity.RoomType, error) {
	if s.update != nil {
		return s.update(ctx, id, name, description)
	}
	return nil, errors.New("not implemented")
}

func (s *stubRoomTypes) Delete(ctx context.Context, id int64) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return errors.New("not implemented")
}

func (s *stubRoomTypes) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if s.deleteMany != nil {
		return s.deleteMany(ctx, ids)
	}
	return 0, errors.New("not implemented")
}

type stubTenants struct {
	count      func(ctx context.Context, plan listquery.QueryPlan) (int, error)
	fetch      func(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Tenant, error)
	findByID   func(ctx context.Context, id int64) (*entity.Tenant, error)
	create     func(ctx context.Context, tenant entity.Tenant, payment *entity.RentPayment) (*entity.Tenant, error)
	update     func(ctx context.Context, id int64, patch repository.TenantPatch, payment *entity.RentPayment) (*entity.Tenant, error)
	delete     func(ctx context.Context, id int64) error
	deleteMany func(ctx context.Context, ids []int64) (int64, error)
}

func (s *stubTenants) Count(ctx context.Context, plan listquery.QueryPlan) (int, error) {
	if s.count != nil {
		return s.count(ctx, plan)
	}
	return 0, errors.New("not implemented")
}

func (s *stubTenants) Fetch(ctx context.Context, plan listquery.QueryPlan, offset, limit int) ([]entity.Tenant, error) {
	if s.fetch != nil {
		return s.fetch(ctx, plan, offset, limit)
	}
	return nil, errors.New("not implemented")
}

func (s *stubTenants) FindByID(ctx context.Context, id int64) (*entity.Tenant, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (s *stubTenants) Create(ctx context.Context, tenant entity.Tenant, payment *entity.RentPayment) (*entity.Tenant, error) {
	if s.create != nil {
		return s.create(ctx, tenant, payment)
	}
	return nil, errors.New("not implemented")
}

func (s *stubTenants) Update(ctx context.Context, id int64, patch repository.TenantPatch, payment *entity.RentPayment) (*entity.Tenant, error) {
	if s.update != nil {
		return s.update(ctx, id, patch, payment)
	}
	return nil, errors.New("not implemented")
}

func (s *stubTenants) Delete(ctx context.Context, id int64) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return errors.New("not implemented")
}

func (s *stubTenants) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if s.deleteMany != nil {
		return s.deleteMany(ctx, ids)
	}
	return 0, errors.New("not implemented")
}

type stubNotifications struct {
	listByUser  func(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error)
	create      func(ctx context.Context, userID uuid.UUID, message string, typ entity.NotificationType) (*entity.Notification, error)
	markRead    func(ctx context.Context, id int64, userID uuid.UUID) (*entity.Notification, error)
	markAllRead func(ctx context.Context, userID uuid.UUID) (int64, error)
	delete      func(ctx context.Context, id int64, userID uuid.UUID) error
}

func (s *stubNotifications) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]entity.Notification, error) {
	if s.listByUser != nil {
		return s.listByUser(ctx, userID, unreadOnly)
	}
	return nil, errors.New("not implemented")
}

func (s *stubNotifications) Create(ctx context.Context, userID uuid.UUID, message string, typ entity.NotificationType) (*entity.Notification, error) {
	if s.create != nil {
		return s.create(ctx, userID, message, typ)
	}
	return nil, errors.New("not implemented")
}

func (s *stubNotifications) MarkRead(ctx context.Context, id int64, userID uuid.UUID) (*entity.Notification, error) {
	if s.markRead != nil {
		return s.markRead(ctx, id, userID)
	}
	return nil, errors.New("not implemented")
}

func (s *stubNotifications) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.markAllRead != nil {
		return s.markAllRead(ctx, userID)
	}
	return 0, errors.New("not implemented")
}

func (s *stubNotifications) Delete(ctx context.Context, id int64, userID uuid.UUID) error {
	if s.delete != nil {
		return s.delete(ctx, id, userID)
	}
	return errors.New("not implemented")
}

type stubUsersRepo struct {
	findByEmail func(ctx context.Context, email string) (*entity.User, error)
	create      func(ctx context.Context, name, email, passwordHash string, roleIDs []int) (*entity.User, error)
	list        func(ctx context.Context) ([]entity.User, error)
	update      func(ctx context.Context, id uuid.UUID, patch repository.UserPatch) (*entity.User, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if s.findByEmail != nil {
		return s.findByEmail(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) Create(ctx context.Context, name, email, passwordHash string, roleIDs []int) (*entity.User, error) {
	if s.create != nil {
		return s.create(ctx, name, email, passwordHash, roleIDs)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) List(ctx context.Context) ([]entity.User, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) Update(ctx context.Context, id uuid.UUID, patch repository.UserPatch) (*entity.User, error) {
	if s.update != nil {
		return s.update(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return errors.New("not implemented")
}

// stubLookup treats "table.column=value" entries in taken as existing values
// and known[table] as the ids present in table.
type stubLookup struct {
	taken map[string]bool
	known map[string][]int64
}

func (l *stubLookup) Exists(ctx context.Context, table, column string, value any, excludeID int64) (bool, error) {
	return l.taken[fmt.Sprintf("%s.%s=%v", table, column, value)], nil
}

func (l *stubLookup) MissingIDs(ctx context.Context, table string, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if !slices.Contains(l.known[table], id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(ctx context.Context, actor auth.Identity, message string, typ entity.NotificationType) {
	n.messages = append(n.messages, message)
}
