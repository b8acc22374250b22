package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/google/uuid"
)

// Options configures the orchestrator.
type Options struct {
	// BaseURL is the public base URL used to build provider return URLs.
	BaseURL string
	// Sandbox reports whether providers should use sandbox redirects.
	// Evaluated per action so an admin toggle takes effect immediately.
	Sandbox func() bool
}

// Orchestrator sequences a user through payment method selection, the
// provider-specific action and confirmation. Sessions are in-memory only;
// each belongs to a single open checkout flow and shares no state with
// other sessions.
type Orchestrator struct {
	store    Store
	registry *Registry
	opts     Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewOrchestrator wires the default provider registry against the given
// store. Additional providers can be registered afterwards.
func NewOrchestrator(store Store, opts Options) *Orchestrator {
	if opts.Sandbox == nil {
		opts.Sandbox = func() bool { return false }
	}

	o := &Orchestrator{
		store:    store,
		registry: NewRegistry(),
		opts:     opts,
		sessions: make(map[string]*Session),
	}

	qrLookup := QRAssetLookup(store.FindQRAsset)

	o.registry.Register(models.PaymentProviderStripe, func(cfg map[string]string) Provider {
		return newStripeProvider(cfg, opts.BaseURL)
	})
	o.registry.Register(models.PaymentProviderMercadoPago, func(cfg map[string]string) Provider {
		return newMercadoPagoProvider(cfg, opts.BaseURL, o.opts.Sandbox())
	})
	o.registry.Register(models.PaymentProviderNequi, func(cfg map[string]string) Provider {
		return newNequiProvider(cfg)
	})
	o.registry.Register(models.PaymentProviderBancolombia, func(cfg map[string]string) Provider {
		return newBancolombiaProvider(cfg, qrLookup)
	})
	o.registry.Register(models.PaymentProviderQRCode, func(cfg map[string]string) Provider {
		return newQRProvider(qrLookup)
	})

	return o
}

// Registry exposes the provider registry for custom registrations.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Begin opens a checkout session for an authenticated user and plan. Free
// plans never enter checkout; callers subscribe them directly.
func (o *Orchestrator) Begin(ctx context.Context, auth AuthContext, plan models.Plan) (*Session, error) {
	if !auth.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if plan.IsFree() {
		return nil, ErrCheckoutNotRequired
	}
	if !models.GetAppSettings().IsCheckoutEnabled() {
		return nil, ErrCheckoutDisabled
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Auth:      auth,
		Plan:      plan,
		CreatedAt: time.Now(),
		step:      StepMethod,
		fields:    make(map[string]string),
	}

	o.mu.Lock()
	o.sessions[sess.ID] = sess
	o.mu.Unlock()

	return sess, nil
}

// Get returns a live session by ID.
func (o *Orchestrator) Get(sessionID string) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Close discards a session. Closing an unknown ID is a no-op.
func (o *Orchestrator) Close(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.sessions, sessionID)
}

// EligibleMethods recomputes the eligible set for the session's plan from
// the current configuration. Returns ErrNoMethodsConfigured alongside the
// empty set so callers can direct the user to an administrator.
func (o *Orchestrator) EligibleMethods(ctx context.Context, sess *Session) ([]EligibleMethod, error) {
	methods, err := o.store.ListMethodConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRequestFailed, err)
	}
	qrAssets, err := o.store.ListQRAssets(ctx, sess.Plan.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRequestFailed, err)
	}

	eligible := ComputeEligibleMethods(&sess.Plan, methods, qrAssets)
	if len(eligible) == 0 {
		return nil, ErrNoMethodsConfigured
	}
	return eligible, nil
}

// SelectMethod picks a payment method for the session. Eligibility is
// recomputed at call time, not taken from the render that showed the
// method, so a method deactivated in between is rejected.
func (o *Orchestrator) SelectMethod(ctx context.Context, sess *Session, methodID uint) error {
	if sess.Step() != StepMethod {
		return ErrInvalidTransition
	}

	eligible, err := o.EligibleMethods(ctx, sess)
	if err != nil {
		return err
	}
	method, ok := containsMethod(eligible, methodID)
	if !ok {
		return ErrMethodNoLongerEligible
	}

	sess.mu.Lock()
	sess.method = method
	sess.stale = false
	sess.mu.Unlock()
	return nil
}

// AdvanceToPayment moves the session from method selection to the payment
// step. If a configuration change was pushed since selection, the selected
// method is re-validated first; losing eligibility sends the user back to
// the method list.
func (o *Orchestrator) AdvanceToPayment(ctx context.Context, sess *Session) error {
	if sess.Step() != StepMethod {
		return ErrInvalidTransition
	}
	method := sess.Method()
	if method == nil {
		return ErrMethodNoLongerEligible
	}

	if sess.isStale() {
		eligible, err := o.EligibleMethods(ctx, sess)
		if err != nil {
			o.resetToMethodStep(sess)
			return err
		}
		if _, ok := containsMethod(eligible, method.ID); !ok {
			o.resetToMethodStep(sess)
			return ErrMethodNoLongerEligible
		}
		sess.mu.Lock()
		sess.stale = false
		sess.mu.Unlock()
	}

	sess.mu.Lock()
	sess.step = StepPayment
	sess.mu.Unlock()
	return nil
}

// ExecuteProviderAction validates the collected fields and runs the
// provider-specific action. On failure the session enters its error
// sub-state and stays at the payment step; the user may retry.
func (o *Orchestrator) ExecuteProviderAction(ctx context.Context, sess *Session, fields map[string]string) error {
	if sess.Step() != StepPayment {
		return ErrInvalidTransition
	}
	method := sess.Method()
	if method == nil {
		return ErrMethodNoLongerEligible
	}

	sess.mu.Lock()
	for k, v := range fields {
		sess.fields[k] = v
	}
	sess.mu.Unlock()

	provider, err := o.registry.New(method)
	if err != nil {
		return err
	}

	if err := provider.Validate(sess.Fields()); err != nil {
		// Caught before any network call; surfaced inline, no error
		// sub-state.
		return err
	}

	result, err := provider.Execute(ctx, sess)
	if err != nil {
		sess.mu.Lock()
		sess.lastError = err.Error()
		sess.mu.Unlock()
		return err
	}

	// Hosted checkouts verify out of band: the provider webhook can fire
	// before the user's browser finishes the redirect back. The pending
	// subscription must exist before the redirect is handed out, or the
	// webhook has no row to activate.
	if result.RedirectURL != "" {
		if err := o.recordPendingSubscription(ctx, sess, method, result); err != nil {
			return err
		}
	}

	sess.mu.Lock()
	sess.result = result
	sess.lastError = ""
	sess.mu.Unlock()
	return nil
}

// Retry clears the error sub-state so the payment step can be re-executed.
func (o *Orchestrator) Retry(sess *Session) error {
	if sess.Step() != StepPayment {
		return ErrInvalidTransition
	}
	sess.mu.Lock()
	sess.lastError = ""
	sess.result = nil
	sess.mu.Unlock()
	return nil
}

// Confirm is the terminal transition: the user states the payment was
// made. It records an audit event and a pending subscription; it does NOT
// mark anything as paid. Verified payment state only ever comes from
// provider webhooks, outside this flow.
func (o *Orchestrator) Confirm(ctx context.Context, sess *Session) error {
	if sess.Step() != StepPayment {
		return ErrInvalidTransition
	}
	result := sess.Result()
	if result == nil {
		return ErrInvalidTransition
	}
	method := sess.Method()

	payload, _ := json.Marshal(map[string]interface{}{
		"session_id": sess.ID,
		"plan_id":    sess.Plan.ID,
		"provider":   method.Provider,
		"reference":  result.Reference,
	})
	event := &models.PaymentEvent{
		Provider:        method.Provider,
		ProviderEventID: "checkout:" + sess.ID,
		EventType:       models.PaymentEventCheckoutConfirmed,
		CompanyID:       &sess.Auth.CompanyID,
		PayloadJSON:     string(payload),
		SignatureValid:  true,
	}
	if err := o.store.RecordEvent(ctx, event); err != nil {
		return fmt.Errorf("recording confirmation: %w", err)
	}

	// Hosted flows recorded the pending subscription when the redirect was
	// handed out; manual flows record it here.
	if !sess.subscriptionRecorded() {
		if err := o.recordPendingSubscription(ctx, sess, method, result); err != nil {
			return err
		}
	}

	sess.mu.Lock()
	sess.step = StepConfirmation
	sess.mu.Unlock()
	return nil
}

// recordPendingSubscription persists the unverified subscription row the
// provider webhook later activates by reference.
func (o *Orchestrator) recordPendingSubscription(ctx context.Context, sess *Session, method *EligibleMethod, result *ActionResult) error {
	providerRef := result.Reference
	if providerRef == "" {
		providerRef = "checkout:" + sess.ID
	}
	sub := &models.Subscription{
		CompanyID:              sess.Auth.CompanyID,
		PlanID:                 sess.Plan.ID,
		Provider:               method.Provider,
		ProviderSubscriptionID: providerRef,
		PaymentReference:       result.Reference,
		Status:                 models.SubscriptionStatusPending,
	}
	if err := o.store.CreatePendingSubscription(ctx, sub); err != nil {
		return fmt.Errorf("recording pending subscription: %w", err)
	}

	sess.mu.Lock()
	sess.subRecorded = true
	sess.mu.Unlock()
	return nil
}

// HandleConfigChanged marks every live session's eligibility as stale.
// Wired to the realtime config-change channel; sessions re-validate on
// their next transition instead of locking against admin edits.
func (o *Orchestrator) HandleConfigChanged() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, sess := range o.sessions {
		sess.markStale()
	}
}

func (o *Orchestrator) resetToMethodStep(sess *Session) {
	sess.mu.Lock()
	sess.step = StepMethod
	sess.method = nil
	sess.mu.Unlock()
}
