package analytics

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/salesdesk/api-commissions/internal/auth"
	"github.com/salesdesk/api-commissions/internal/submission"
)

// Handler serves the dashboard numbers. Salespeople get their own figures;
// managers get the whole org plus the per-salesperson breakdown.
type Handler struct {
	DB          *gorm.DB
	Submissions submission.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Submissions: submission.NewRepository()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// scoped loads the submissions the caller may aggregate over. Managers see
// everything, optionally narrowed with ?salespersonId=; salespeople always
// see exactly their own.
func (h *Handler) scoped(r *http.Request) ([]submission.Submission, int, error) {
	id, role, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, http.StatusUnauthorized, nil
	}
	if role != auth.RoleManager {
		list, err := h.Submissions.ListBySalesperson(h.DB, id)
		return list, 0, err
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("salespersonId")); err == nil && v > 0 {
		list, err := h.Submissions.ListBySalesperson(h.DB, uint(v))
		return list, 0, err
	}
	list, err := h.Submissions.ListAll(h.DB)
	return list, 0, err
}

// GetSummary handles GET /analytics/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	list, failStatus, err := h.scoped(r)
	if failStatus != 0 {
		http.Error(w, http.StatusText(failStatus), failStatus)
		return
	}
	if err != nil {
		http.Error(w, "could not load submissions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, Summarize(list))
}

// GetMonthly handles GET /analytics/monthly.
func (h *Handler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	list, failStatus, err := h.scoped(r)
	if failStatus != 0 {
		http.Error(w, http.StatusText(failStatus), failStatus)
		return
	}
	if err != nil {
		http.Error(w, "could not load submissions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, Monthly(list))
}

// GetSalespeople handles GET /analytics/salespeople (manager only, enforced
// by middleware).
func (h *Handler) GetSalespeople(w http.ResponseWriter, r *http.Request) {
	list, err := h.Submissions.ListAll(h.DB)
	if err != nil {
		http.Error(w, "could not load submissions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, BySalesperson(list))
}
