package comment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/salesdesk/api-commissions/internal/auth"
	"github.com/salesdesk/api-commissions/internal/submission"
	"github.com/salesdesk/api-commissions/internal/user"
)

type Handler struct {
	DB          *gorm.DB
	Repository  Repository
	Submissions submission.Repository
	Users       user.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:          db,
		Repository:  NewRepository(),
		Submissions: submission.NewRepository(),
		Users:       user.NewRepository(),
	}
}

type createRequest struct {
	Body string `json:"body"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// participant allows the owning salesperson and any manager near a thread.
func (h *Handler) participant(r *http.Request, submissionID uint) (uint, string, int) {
	id, role, ok := auth.UserFromContext(r.Context())
	if !ok {
		return 0, "", http.StatusUnauthorized
	}
	s, err := h.Submissions.FindByID(h.DB, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", http.StatusNotFound
		}
		return 0, "", http.StatusInternalServerError
	}
	if role != auth.RoleManager && s.SalespersonID != id {
		return 0, "", http.StatusForbidden
	}
	return id, role, 0
}

// Create handles POST /submissions/{id}/comments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	submissionID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return
	}
	authorID, role, failStatus := h.participant(r, uint(submissionID))
	if failStatus != 0 {
		http.Error(w, http.StatusText(failStatus), failStatus)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		http.Error(w, "comment body is required", http.StatusBadRequest)
		return
	}

	c := Comment{
		SubmissionID: uint(submissionID),
		AuthorID:     authorID,
		AuthorRole:   role,
		Body:         req.Body,
	}
	if author, err := h.Users.FindByID(h.DB, authorID); err == nil {
		c.AuthorName = author.FullName
	}
	if err := h.Repository.Create(h.DB, &c); err != nil {
		http.Error(w, "could not save comment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// List handles GET /submissions/{id}/comments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	submissionID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return
	}
	if _, _, failStatus := h.participant(r, uint(submissionID)); failStatus != 0 {
		http.Error(w, http.StatusText(failStatus), failStatus)
		return
	}

	list, err := h.Repository.ListBySubmission(h.DB, uint(submissionID))
	if err != nil {
		http.Error(w, "could not list comments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Delete handles DELETE /comments/{id}. Authors delete their own comments;
// managers can delete any.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, role, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	c, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "comment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not load comment", http.StatusInternalServerError)
		return
	}
	if role != auth.RoleManager && c.AuthorID != actorID {
		http.Error(w, "access denied", http.StatusForbidden)
		return
	}
	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		http.Error(w, "could not delete comment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
