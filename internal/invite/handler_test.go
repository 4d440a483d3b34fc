package invite

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesdesk/api-commissions/internal/auth"
	"github.com/salesdesk/api-commissions/internal/user"
)

type mockRepository struct {
	store  map[uint]Invite
	nextID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{store: make(map[uint]Invite), nextID: 1}
}

func (m *mockRepository) Create(db *gorm.DB, i *Invite) error {
	i.ID = m.nextID
	m.nextID++
	m.store[i.ID] = *i
	return nil
}

func (m *mockRepository) FindByToken(db *gorm.DB, token string) (*Invite, error) {
	for _, i := range m.store {
		if i.Token == token {
			inv := i
			return &inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepository) FindByID(db *gorm.DB, id uint) (*Invite, error) {
	i, ok := m.store[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &i, nil
}

func (m *mockRepository) FindPendingByEmail(db *gorm.DB, email string) (*Invite, error) {
	for _, i := range m.store {
		if i.Email == email && i.Status == StatusPending {
			inv := i
			return &inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepository) ListAll(db *gorm.DB) ([]Invite, error) {
	var list []Invite
	for _, i := range m.store {
		list = append(list, i)
	}
	return list, nil
}

func (m *mockRepository) Save(db *gorm.DB, i *Invite) error {
	m.store[i.ID] = *i
	return nil
}

type mockUsers struct {
	byEmail map[string]user.User
	saved   []user.User
}

func (m *mockUsers) FindByEmail(db *gorm.DB, email string) (*user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *mockUsers) FindByID(db *gorm.DB, id uint) (*user.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUsers) ListAll(db *gorm.DB) ([]user.User, error) { return nil, nil }

func (m *mockUsers) Save(db *gorm.DB, u *user.User) error {
	m.saved = append(m.saved, *u)
	m.byEmail[u.Email] = *u
	return nil
}

func (m *mockUsers) UpdateCommissionRate(db *gorm.DB, id uint, rate decimal.Decimal) error {
	return nil
}
func (m *mockUsers) UpdateActive(db *gorm.DB, id uint, active bool) error { return nil }

func newTestHandler() (*Handler, *mockRepository, *mockUsers) {
	repo := newMockRepository()
	users := &mockUsers{byEmail: make(map[string]user.User)}
	return &Handler{Repository: repo, Users: users}, repo, users
}

func asManager(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), auth.CtxUserID, uint(1))
	ctx = context.WithValue(ctx, auth.CtxRole, auth.RoleManager)
	return r.WithContext(ctx)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewBuffer(b)
}

func TestCreateInvite(t *testing.T) {
	h, repo, _ := newTestHandler()

	req := asManager(httptest.NewRequest(http.MethodPost, "/invites", jsonBody(t, createRequest{
		Email:          "New.Hire@salesdesk.test",
		FullName:       "New Hire",
		CommissionRate: decimal.NewFromFloat(0.04),
	})))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}

	inv := repo.store[1]
	if inv.Email != "new.hire@salesdesk.test" {
		t.Errorf("email not normalised: %q", inv.Email)
	}
	if inv.Token == "" {
		t.Error("no token issued")
	}
	if inv.InvitedBy != 1 {
		t.Errorf("invitedBy = %d", inv.InvitedBy)
	}
	until := time.Until(inv.ExpiresAt)
	if until < TTL-time.Minute || until > TTL {
		t.Errorf("expiry %v away, want about %v", until, TTL)
	}
}

func TestCreateInviteRejectsBadRate(t *testing.T) {
	h, _, _ := newTestHandler()
	for _, rate := range []decimal.Decimal{decimal.NewFromFloat(-0.01), decimal.NewFromFloat(1.5)} {
		req := asManager(httptest.NewRequest(http.MethodPost, "/invites", jsonBody(t, createRequest{
			Email:          "x@salesdesk.test",
			FullName:       "X",
			CommissionRate: rate,
		})))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("rate %s: status %d, want 400", rate, rec.Code)
		}
	}
}

func TestCreateInviteSupersedesPending(t *testing.T) {
	h, repo, _ := newTestHandler()

	payload := createRequest{
		Email:          "hire@salesdesk.test",
		FullName:       "Hire",
		CommissionRate: decimal.NewFromFloat(0.03),
	}
	for i := 0; i < 2; i++ {
		req := asManager(httptest.NewRequest(http.MethodPost, "/invites", jsonBody(t, payload)))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: status %d", i, rec.Code)
		}
	}

	if got := repo.store[1].Status; got != StatusCancelled {
		t.Errorf("first invite status = %s, want cancelled", got)
	}
	if got := repo.store[2].Status; got != StatusPending {
		t.Errorf("second invite status = %s, want pending", got)
	}
}

func TestAcceptCreatesSalespersonWithProposedRate(t *testing.T) {
	h, repo, users := newTestHandler()

	inv := Invite{
		Email:          "hire@salesdesk.test",
		FullName:       "Hire Me",
		CommissionRate: decimal.NewFromFloat(0.045),
		Token:          "tok-1",
		InvitedBy:      1,
		Status:         StatusPending,
		ExpiresAt:      time.Now().Add(TTL),
	}
	_ = repo.Create(nil, &inv)

	req := httptest.NewRequest(http.MethodPost, "/invites/accept",
		jsonBody(t, acceptRequest{Token: "tok-1", Password: "s3cret-password"}))
	rec := httptest.NewRecorder()
	h.Accept(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}

	if len(users.saved) != 1 {
		t.Fatalf("saved %d users, want 1", len(users.saved))
	}
	u := users.saved[0]
	if u.Role != user.RoleSalesperson {
		t.Errorf("role = %s", u.Role)
	}
	if !u.CommissionRate.Equal(decimal.NewFromFloat(0.045)) {
		t.Errorf("rate = %s, want the invite's 0.045", u.CommissionRate)
	}
	if !u.IsActive || !u.IsApproved {
		t.Error("accepted account must be active and approved")
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret-password" {
		t.Error("password not hashed")
	}
	if got := repo.store[inv.ID]; got.Status != StatusAccepted || got.AcceptedAt == nil {
		t.Errorf("invite not marked accepted: %+v", got)
	}
}

func TestAcceptRejectsExpiredToken(t *testing.T) {
	h, repo, users := newTestHandler()

	inv := Invite{
		Email:     "late@salesdesk.test",
		FullName:  "Late",
		Token:     "tok-2",
		Status:    StatusPending,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	_ = repo.Create(nil, &inv)

	req := httptest.NewRequest(http.MethodPost, "/invites/accept",
		jsonBody(t, acceptRequest{Token: "tok-2", Password: "s3cret-password"}))
	rec := httptest.NewRecorder()
	h.Accept(rec, req)
	if rec.Code != http.StatusGone {
		t.Fatalf("status %d, want 410", rec.Code)
	}
	if len(users.saved) != 0 {
		t.Error("expired invite still created a user")
	}
}

func TestAcceptRejectsUsedToken(t *testing.T) {
	h, repo, _ := newTestHandler()

	inv := Invite{
		Email:     "used@salesdesk.test",
		Token:     "tok-3",
		Status:    StatusAccepted,
		ExpiresAt: time.Now().Add(TTL),
	}
	_ = repo.Create(nil, &inv)

	req := httptest.NewRequest(http.MethodPost, "/invites/accept",
		jsonBody(t, acceptRequest{Token: "tok-3", Password: "s3cret-password"}))
	rec := httptest.NewRecorder()
	h.Accept(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
}
