package submission

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesdesk/api-commissions/internal/auth"
	"github.com/salesdesk/api-commissions/internal/commission"
	"github.com/salesdesk/api-commissions/internal/notification"
	"github.com/salesdesk/api-commissions/internal/user"
)

// Handler wires the calculator, lifecycle rules and repository to HTTP.
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

func actorFromRequest(r *http.Request) (Actor, bool) {
	id, role, ok := auth.UserFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: id, Role: user.Role(role)}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps engine errors onto HTTP statuses. Every business
// error is surfaced to the actor; nothing is silently coerced.
func writeDomainError(w http.ResponseWriter, err error) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verrs})
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrMissingRequiredField):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrConflict):
		http.Error(w, "submission was modified concurrently, refetch and retry", http.StatusConflict)
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "submission not found", http.StatusNotFound)
	case errors.Is(err, commission.ErrInvalidAmount),
		errors.Is(err, commission.ErrInvalidDateOrder),
		errors.Is(err, commission.ErrMissingDates),
		errors.Is(err, commission.ErrInvalidRate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) compute(req SubmissionRequest, rate decimal.Decimal) (commission.Result, error) {
	documentDate, paymentDate := req.Dates()
	return commission.Compute(commission.Input{
		AmountWithTax:         req.AmountWithTax,
		AmountWithoutTax:      req.AmountWithoutTax,
		ClientRequiresInvoice: req.ClientRequiresInvoice,
		IsMarketplaceSale:     req.IsMarketplaceSale,
		FeeSale:               req.FeeSale,
		FeeShipping:           req.FeeShipping,
		DocumentDate:          documentDate,
		ClientPaymentDate:     paymentDate,
		CommissionRate:        rate,
	})
}

// Create handles POST /submissions. Only salespeople submit claims; the
// commission fields are computed here and never taken from the payload.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if actor.Role != user.RoleSalesperson {
		http.Error(w, "only salespeople submit commission claims", http.StatusForbidden)
		return
	}

	var req SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if errs := ValidateRequest(req); len(errs) > 0 {
		writeDomainError(w, errs)
		return
	}

	salesperson, err := h.Users.FindByID(h.DB, actor.ID)
	if err != nil {
		http.Error(w, "salesperson not found", http.StatusUnauthorized)
		return
	}

	// The rate is snapshotted now; later rate changes do not touch this
	// submission.
	res, err := h.compute(req, salesperson.CommissionRate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	documentDate, paymentDate := req.Dates()
	s := Submission{
		SalespersonID:         actor.ID,
		DocumentType:          documentTypeFor(req),
		InvoiceNumber:         req.InvoiceNumber,
		PurchaseOrderNumber:   req.PurchaseOrderNumber,
		ClientName:            req.ClientName,
		DocumentDate:          documentDate,
		ClientPaymentDate:     paymentDate,
		ClientRequiresInvoice: req.ClientRequiresInvoice,
		IsMarketplaceSale:     req.IsMarketplaceSale,
		FeeSale:               req.FeeSale,
		FeeShipping:           req.FeeShipping,
		CommissionRate:        salesperson.CommissionRate,
		Status:                StatusPending,
		DocumentPath:          req.DocumentPath,
		Version:               1,
	}
	s.ApplyComputed(res)

	if err := h.Repository.Create(h.DB, &s); err != nil {
		http.Error(w, "could not save submission", http.StatusInternalServerError)
		return
	}

	h.Notifier.Notify("submission.created", map[string]any{
		"submissionId": s.ID,
		"salesperson":  salesperson.FullName,
		"clientName":   s.ClientName,
		"commission":   s.CommissionAmount,
	})

	writeJSON(w, http.StatusCreated, s)
}

func documentTypeFor(req SubmissionRequest) DocumentType {
	if req.ClientRequiresInvoice {
		return DocumentInvoice
	}
	return DocumentPurchaseOrder
}

// Get handles GET /submissions/{id}. Salespeople only see their own.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return
	}

	s, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if actor.Role != user.RoleManager && s.SalespersonID != actor.ID {
		http.Error(w, "access denied", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// List handles GET /submissions with query-param filters and pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	f := filtersFromQuery(r)
	// Salespeople are pinned to their own submissions regardless of the
	// filter they ask for.
	if actor.Role != user.RoleManager {
		f.SalespersonID = actor.ID
	}

	list, total, err := h.Repository.List(h.DB, f)
	if err != nil {
		http.Error(w, "could not list submissions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{
		Submissions: list,
		Total:       total,
		Page:        f.Page,
		PerPage:     f.PerPage,
	})
}

func filtersFromQuery(r *http.Request) Filters {
	q := r.URL.Query()
	f := Filters{
		Status:        Status(q.Get("status")),
		ClientName:    q.Get("clientName"),
		InvoiceNumber: q.Get("invoiceNumber"),
	}
	if v, err := strconv.Atoi(q.Get("salespersonId")); err == nil {
		f.SalespersonID = uint(v)
	}
	if t, err := time.Parse(DateLayout, q.Get("startDate")); err == nil {
		f.StartDate = t
	}
	if t, err := time.Parse(DateLayout, q.Get("endDate")); err == nil {
		f.EndDate = t
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PerPage, _ = strconv.Atoi(q.Get("perPage"))
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = 20
	}
	return f
}

// Update handles PUT /submissions/{id}: the owner editing a pending
// submission. Every derived field is recomputed from scratch.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return
	}

	s, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := CanEdit(s, actor); err != nil {
		writeDomainError(w, err)
		return
	}

	var req SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if errs := ValidateRequest(req); len(errs) > 0 {
		writeDomainError(w, errs)
		return
	}

	// The rate snapshot survives edits; only the declared facts change.
	res, err := h.compute(req, s.CommissionRate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	documentDate, paymentDate := req.Dates()
	s.DocumentType = documentTypeFor(req)
	s.InvoiceNumber = req.InvoiceNumber
	s.PurchaseOrderNumber = req.PurchaseOrderNumber
	s.ClientName = req.ClientName
	s.DocumentDate = documentDate
	s.ClientPaymentDate = paymentDate
	s.ClientRequiresInvoice = req.ClientRequiresInvoice
	s.IsMarketplaceSale = req.IsMarketplaceSale
	s.FeeSale = req.FeeSale
	s.FeeShipping = req.FeeShipping
	s.DocumentPath = req.DocumentPath
	s.ApplyComputed(res)

	if err := h.Repository.SaveWithVersion(h.DB, s); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Delete handles DELETE /submissions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return
	}

	s, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := CanDelete(s, actor); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartReview handles PATCH /submissions/{id}/review.
func (h *Handler) StartReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, ActionStartReview, TransitionPayload{})
}

// Flag handles PATCH /submissions/{id}/flag.
func (h *Handler) Flag(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, ActionFlag, TransitionPayload{})
}

// Approve handles PATCH /submissions/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, ActionApprove, TransitionPayload{})
}

// Reject handles PATCH /submissions/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	h.transition(w, r, ActionReject, TransitionPayload{RejectionReason: req.RejectionReason})
}

// MarkPaid handles PATCH /submissions/{id}/pay.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	paymentDate, _ := time.Parse(DateLayout, req.PaymentDate)
	h.transition(w, r, ActionMarkPaid, TransitionPayload{
		PaymentDate:      paymentDate,
		PaymentReference: req.PaymentReference,
		PaymentMethod:    req.PaymentMethod,
		ReceiptPath:      req.ReceiptPath,
		Notes:            req.Notes,
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action Action, payload TransitionPayload) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return
	}

	s, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := ApplyTransition(s, action, actor, payload, time.Now()); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Repository.SaveWithVersion(h.DB, s); err != nil {
		writeDomainError(w, err)
		return
	}

	if s.Status.Terminal() || s.Status == StatusApproved {
		h.Notifier.Notify("submission."+string(s.Status), map[string]any{
			"submissionId": s.ID,
			"clientName":   s.ClientName,
			"commission":   s.CommissionAmount,
		})
	}

	writeJSON(w, http.StatusOK, s)
}
