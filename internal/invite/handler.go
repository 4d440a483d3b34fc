package invite

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesdesk/api-commissions/internal/auth"
	"github.com/salesdesk/api-commissions/internal/notification"
	"github.com/salesdesk/api-commissions/internal/user"
	"github.com/salesdesk/api-commissions/internal/utils"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Users      user.Repository
	Notifier   *notification.Notifier
}

func NewHandler(db *gorm.DB, notifier *notification.Notifier) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Users:      user.NewRepository(),
		Notifier:   notifier,
	}
}

type createRequest struct {
	Email          string          `json:"email"`
	FullName       string          `json:"fullName"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
}

type acceptRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

var decimalOne = decimal.NewFromInt(1)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Create handles POST /invites (manager only). A fresh token replaces any
// pending invite for the same address.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	managerID, _, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		http.Error(w, "a valid email is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		http.Error(w, "full name is required", http.StatusBadRequest)
		return
	}
	if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThan(decimalOne) {
		http.Error(w, "commission rate must be between 0 and 1", http.StatusBadRequest)
		return
	}
	if _, err := h.Users.FindByEmail(h.DB, req.Email); err == nil {
		http.Error(w, "a user with this email already exists", http.StatusConflict)
		return
	}

	// Supersede an earlier pending invite for the same address.
	if prev, err := h.Repository.FindPendingByEmail(h.DB, req.Email); err == nil {
		prev.Status = StatusCancelled
		if err := h.Repository.Save(h.DB, prev); err != nil {
			http.Error(w, "could not replace previous invite", http.StatusInternalServerError)
			return
		}
	}

	inv := Invite{
		Email:          req.Email,
		FullName:       req.FullName,
		CommissionRate: req.CommissionRate,
		Token:          uuid.NewString(),
		InvitedBy:      managerID,
		Status:         StatusPending,
		ExpiresAt:      time.Now().Add(TTL),
	}
	if err := h.Repository.Create(h.DB, &inv); err != nil {
		http.Error(w, "could not create invite", http.StatusInternalServerError)
		return
	}

	h.Notifier.Notify("invite.created", map[string]any{
		"email":     inv.Email,
		"fullName":  inv.FullName,
		"token":     inv.Token,
		"expiresAt": inv.ExpiresAt,
	})

	writeJSON(w, http.StatusCreated, inv)
}

// List handles GET /invites (manager only).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.ListAll(h.DB)
	if err != nil {
		http.Error(w, "could not list invites", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Resend handles POST /invites/{id}/resend (manager only): rotates the
// token and pushes the expiry out by another week.
func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.pendingFromPath(w, r)
	if !ok {
		return
	}
	inv.Token = uuid.NewString()
	inv.ExpiresAt = time.Now().Add(TTL)
	if err := h.Repository.Save(h.DB, inv); err != nil {
		http.Error(w, "could not resend invite", http.StatusInternalServerError)
		return
	}
	h.Notifier.Notify("invite.resent", map[string]any{
		"email":     inv.Email,
		"token":     inv.Token,
		"expiresAt": inv.ExpiresAt,
	})
	writeJSON(w, http.StatusOK, inv)
}

// Cancel handles DELETE /invites/{id} (manager only).
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.pendingFromPath(w, r)
	if !ok {
		return
	}
	inv.Status = StatusCancelled
	if err := h.Repository.Save(h.DB, inv); err != nil {
		http.Error(w, "could not cancel invite", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pendingFromPath(w http.ResponseWriter, r *http.Request) (*Invite, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid invite id", http.StatusBadRequest)
		return nil, false
	}
	inv, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "invite not found", http.StatusNotFound)
		} else {
			http.Error(w, "could not load invite", http.StatusInternalServerError)
		}
		return nil, false
	}
	if inv.Status != StatusPending {
		http.Error(w, "invite is no longer pending", http.StatusConflict)
		return nil, false
	}
	return inv, true
}

// Accept handles POST /invites/accept. Unauthenticated: the token is the
// credential. On success the salesperson account is created active and
// approved, with the rate the manager proposed.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	inv, err := h.Repository.FindByToken(h.DB, req.Token)
	if err != nil {
		http.Error(w, "invalid invite token", http.StatusNotFound)
		return
	}
	if inv.Status != StatusPending {
		http.Error(w, "invite has already been used or cancelled", http.StatusConflict)
		return
	}
	if inv.Expired(time.Now()) {
		http.Error(w, "invite has expired", http.StatusGone)
		return
	}
	if _, err := h.Users.FindByEmail(h.DB, inv.Email); err == nil {
		http.Error(w, "a user with this email already exists", http.StatusConflict)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "could not create account", http.StatusInternalServerError)
		return
	}

	u := user.User{
		Email:          inv.Email,
		FullName:       inv.FullName,
		Role:           user.RoleSalesperson,
		CommissionRate: inv.CommissionRate,
		IsActive:       true,
		IsApproved:     true,
		PasswordHash:   hash,
	}

	if err := h.Users.Save(h.DB, &u); err != nil {
		http.Error(w, "could not create account", http.StatusInternalServerError)
		return
	}
	now := time.Now()
	inv.Status = StatusAccepted
	inv.AcceptedAt = &now
	if err := h.Repository.Save(h.DB, inv); err != nil {
		http.Error(w, "could not update invite", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, u)
}
