package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/salesdesk/api-commissions/internal/auth"
	"github.com/salesdesk/api-commissions/internal/utils"
)

// Handler wraps DB access for user routes.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

// Login handles POST /auth/login. On success it returns an access token and
// sets the refresh cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.FindByEmail(h.DB, req.Email)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !utils.CheckPassword(u.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !u.IsActive || !u.IsApproved {
		http.Error(w, "account disabled or pending approval", http.StatusForbidden)
		return
	}

	access, err := auth.IssueTokensOnLogin(h.DB, w, u.ID, string(u.Role))
	if err != nil {
		http.Error(w, "could not issue tokens", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{AccessToken: access, User: u})
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	u, err := h.Repository.FindByID(h.DB, userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// List handles GET /users (manager only, enforced by middleware).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Repository.ListAll(h.DB)
	if err != nil {
		http.Error(w, "could not list users", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(users)
}

// Get handles GET /users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	u, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// UpdateCommissionRate handles PATCH /users/{id}/commission-rate (manager
// only). The new rate applies to submissions created after the change;
// existing submissions keep their snapshot.
func (h *Handler) UpdateCommissionRate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req UpdateCommissionRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThan(decimalOne) {
		http.Error(w, "commission rate must be between 0 and 1", http.StatusBadRequest)
		return
	}

	if err := h.Repository.UpdateCommissionRate(h.DB, uint(id), req.CommissionRate); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not update commission rate", http.StatusInternalServerError)
		return
	}

	u, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// UpdateActive handles PATCH /users/{id}/active (manager only).
func (h *Handler) UpdateActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req UpdateActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.Repository.UpdateActive(h.DB, uint(id), req.IsActive); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not update user", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
