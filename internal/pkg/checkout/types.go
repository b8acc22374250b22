package checkout

import (
	"sync"
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
)

// Step is the current position in the checkout flow.
type Step string

const (
	StepMethod       Step = "method"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

// AuthContext carries the authenticated caller into the orchestrator's
// entry points. It is always passed explicitly, never read from ambient
// state, so the flow is testable without a running session framework.
type AuthContext struct {
	UserID    uint
	CompanyID uint
	Name      string
	Email     string
}

// Authenticated reports whether the context belongs to a signed-in user.
func (a AuthContext) Authenticated() bool {
	return a.UserID != 0
}

// EligibleMethod is a configured payment method that passed all eligibility
// filters for a specific plan. Derived, never persisted.
type EligibleMethod struct {
	ID          uint              `json:"id"`
	Provider    string            `json:"provider"`
	DisplayName string            `json:"display_name"`
	Config      map[string]string `json:"-"`
}

// ActionResult is the provider-specific payload produced by executing a
// payment action: a redirect URL, a QR image, or bank transfer details.
type ActionResult struct {
	RedirectURL   string   `json:"redirect_url,omitempty"`
	Reference     string   `json:"reference,omitempty"`
	QRImageURL    string   `json:"qr_image_url,omitempty"`
	BankName      string   `json:"bank_name,omitempty"`
	AccountNumber string   `json:"account_number,omitempty"`
	AccountType   string   `json:"account_type,omitempty"`
	Beneficiary   string   `json:"beneficiary,omitempty"`
	Instructions  []string `json:"instructions,omitempty"`

	// RequiresManualConfirm marks flows that need an explicit "I paid"
	// acknowledgement from the user before confirmation. This is a
	// UI-trust gate, not payment verification.
	RequiresManualConfirm bool `json:"requires_manual_confirm"`
}

// Session is the transient, in-memory state of one user's checkout. It
// lives for the duration of the open flow and is discarded on close or
// completion; nothing here is persisted.
type Session struct {
	ID        string
	Auth      AuthContext
	Plan      models.Plan
	CreatedAt time.Time

	mu          sync.Mutex
	step        Step
	method      *EligibleMethod
	fields      map[string]string
	result      *ActionResult
	lastError   string
	stale       bool
	subRecorded bool
}

// Step returns the session's current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Method returns the selected eligible method, or nil.
func (s *Session) Method() *EligibleMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// Result returns the provider action result, or nil before execution.
func (s *Session) Result() *ActionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// LastError returns the verbatim provider error from the last failed
// action, or empty. A non-empty value is the flow's error sub-state.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Fields returns a copy of the collected provider-specific fields.
func (s *Session) Fields() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

func (s *Session) subscriptionRecorded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subRecorded
}

// markStale flags the session's cached eligibility as outdated after a
// configuration change event; the next transition re-validates.
func (s *Session) markStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
}

func (s *Session) isStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}
