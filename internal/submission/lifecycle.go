package submission

import (
	"fmt"
	"strings"
	"time"

	"github.com/salesdesk/api-commissions/internal/user"
)

// Action is a status-changing operation on a submission.
type Action string

const (
	ActionStartReview Action = "start_review"
	ActionFlag        Action = "flag"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionMarkPaid    Action = "mark_paid"
)

// Actor identifies who is attempting an operation.
type Actor struct {
	ID   uint
	Role user.Role
}

// TransitionPayload carries the data a transition must attach.
type TransitionPayload struct {
	RejectionReason  string
	PaymentDate      time.Time
	PaymentReference string
	PaymentMethod    string
	ReceiptPath      string
	Notes            string
}

// Payment methods accepted by mark_paid.
const (
	PaymentTransfer = "transfer"
	PaymentCheck    = "check"
	PaymentCash     = "cash"
)

var paymentMethodNames = map[string]string{
	PaymentTransfer: "Transfer",
	PaymentCheck:    "Check",
	PaymentCash:     "Cash",
}

// transitionPolicy is the single place role/status/action rules live; every
// surface goes through ApplyTransition instead of re-checking per screen.
// All five review actions are manager operations.
var transitionPolicy = map[Action][]Status{
	ActionStartReview: {StatusPending},
	ActionFlag:        {StatusPending},
	ActionApprove:     {StatusPending, StatusUnderReview, StatusFlagged},
	ActionReject:      {StatusPending, StatusUnderReview, StatusFlagged},
	ActionMarkPaid:    {StatusApproved},
}

func allowedFrom(action Action, status Status) bool {
	for _, s := range transitionPolicy[action] {
		if s == status {
			return true
		}
	}
	return false
}

// ApplyTransition mutates s according to the requested action, or returns
// ErrForbidden / ErrInvalidTransition / ErrMissingRequiredField without
// touching it. Persisting the mutated record (and losing the version race
// with ErrConflict) is the repository's job.
func ApplyTransition(s *Submission, action Action, actor Actor, p TransitionPayload, now time.Time) error {
	if actor.Role != user.RoleManager {
		return fmt.Errorf("%w: %s requires the manager role", ErrForbidden, action)
	}
	if !allowedFrom(action, s.Status) {
		return fmt.Errorf("%w: cannot %s a %s submission", ErrInvalidTransition, action, s.Status)
	}

	switch action {
	case ActionStartReview:
		s.Status = StatusUnderReview

	case ActionFlag:
		s.Status = StatusFlagged

	case ActionApprove:
		s.Status = StatusApproved
		s.ReviewedAt = &now

	case ActionReject:
		if strings.TrimSpace(p.RejectionReason) == "" {
			return fmt.Errorf("%w: rejection reason", ErrMissingRequiredField)
		}
		s.Status = StatusRejected
		s.RejectionReason = p.RejectionReason
		s.ReviewedAt = &now

	case ActionMarkPaid:
		if p.PaymentDate.IsZero() {
			return fmt.Errorf("%w: payment date", ErrMissingRequiredField)
		}
		if strings.TrimSpace(p.PaymentReference) == "" {
			return fmt.Errorf("%w: payment reference", ErrMissingRequiredField)
		}
		methodName, ok := paymentMethodNames[p.PaymentMethod]
		if !ok {
			return fmt.Errorf("%w: payment method must be transfer, check or cash", ErrMissingRequiredField)
		}
		s.Status = StatusPaid
		paidAt := p.PaymentDate
		s.PaidAt = &paidAt
		s.PayoutReceiptPath = p.ReceiptPath
		s.Notes = encodePaymentNotes(methodName, p)

	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}

	return nil
}

// encodePaymentNotes packs the payment metadata into the notes field.
func encodePaymentNotes(methodName string, p TransitionPayload) string {
	lines := []string{
		"Method: " + methodName,
		"Reference: " + p.PaymentReference,
		"Payment date: " + p.PaymentDate.Format(DateLayout),
	}
	if strings.TrimSpace(p.Notes) != "" {
		lines = append(lines, "Notes: "+p.Notes)
	}
	return strings.Join(lines, "\n")
}

// CanEdit checks the edit rule: only the owning salesperson, and only while
// the submission is still pending. An edit must re-run the calculator in
// full; callers never patch computed fields directly.
func CanEdit(s *Submission, actor Actor) error {
	if actor.Role != user.RoleSalesperson || actor.ID != s.SalespersonID {
		return fmt.Errorf("%w: only the owning salesperson may edit", ErrForbidden)
	}
	if s.Status != StatusPending {
		return fmt.Errorf("%w: cannot edit a %s submission", ErrInvalidTransition, s.Status)
	}
	return nil
}

// CanDelete checks the delete rule: salespeople may delete their own
// non-terminal submissions, managers anything that is not paid.
func CanDelete(s *Submission, actor Actor) error {
	if actor.Role == user.RoleManager {
		if s.Status == StatusPaid {
			return fmt.Errorf("%w: paid submissions are permanent", ErrInvalidTransition)
		}
		return nil
	}
	if actor.ID != s.SalespersonID {
		return fmt.Errorf("%w: not the owner", ErrForbidden)
	}
	if s.Status.Terminal() {
		return fmt.Errorf("%w: cannot delete a %s submission", ErrInvalidTransition, s.Status)
	}
	return nil
}
