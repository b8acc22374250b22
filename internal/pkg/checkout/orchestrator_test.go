package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
)

// memStore is an in-memory Store for orchestrator tests. Mutating the
// methods slice between calls simulates concurrent admin edits.
type memStore struct {
	methods  []models.PaymentMethodConfig
	qrAssets []models.QRAsset

	events []models.PaymentEvent
	subs   []models.Subscription

	listErr error
}

func (s *memStore) ListMethodConfigs(ctx context.Context) ([]models.PaymentMethodConfig, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.methods, nil
}

func (s *memStore) ListQRAssets(ctx context.Context, planID uint) ([]models.QRAsset, error) {
	var out []models.QRAsset
	for _, a := range s.qrAssets {
		if a.PlanID == planID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memStore) FindQRAsset(ctx context.Context, planID uint, provider string) (*models.QRAsset, error) {
	assets, _ := s.ListQRAssets(ctx, planID)
	for i := range assets {
		if assets[i].Provider == provider && assets[i].IsUsable(time.Now()) {
			return &assets[i], nil
		}
	}
	return nil, nil
}

func (s *memStore) RecordEvent(ctx context.Context, event *models.PaymentEvent) error {
	s.events = append(s.events, *event)
	return nil
}

func (s *memStore) CreatePendingSubscription(ctx context.Context, sub *models.Subscription) error {
	s.subs = append(s.subs, *sub)
	return nil
}

// hostedProvider simulates a redirect-based checkout like Stripe or
// Mercado Pago: the payment reference is known before the user leaves.
type hostedProvider struct{ name string }

func (p *hostedProvider) Name() string { return p.name }

func (p *hostedProvider) Validate(fields map[string]string) error { return nil }

func (p *hostedProvider) Execute(ctx context.Context, sess *Session) (*ActionResult, error) {
	return &ActionResult{
		RedirectURL: "https://pay.example.com/session/cs_test_42",
		Reference:   "cs_test_42",
	}, nil
}

// failingProvider always errors on Execute with a provider-worded message.
type failingProvider struct{ name string }

func (p *failingProvider) Name() string { return p.name }

func (p *failingProvider) Validate(fields map[string]string) error { return nil }

func (p *failingProvider) Execute(ctx context.Context, sess *Session) (*ActionResult, error) {
	return nil, errors.New("upstream rejected the request: invalid api key")
}

func testAuth() AuthContext {
	return AuthContext{UserID: 7, CompanyID: 3, Name: "Laura Gómez", Email: "laura@example.com"}
}

func newTestOrchestrator(store Store) *Orchestrator {
	return NewOrchestrator(store, Options{BaseURL: "https://mesafacil.test"})
}

func TestBeginRequiresAuthentication(t *testing.T) {
	o := newTestOrchestrator(&memStore{})
	_, err := o.Begin(context.Background(), AuthContext{}, *basicPlan())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestBeginFreePlanBypassesCheckout(t *testing.T) {
	o := newTestOrchestrator(&memStore{})
	_, err := o.Begin(context.Background(), testAuth(), *freePlan())
	if !errors.Is(err, ErrCheckoutNotRequired) {
		t.Fatalf("expected ErrCheckoutNotRequired, got %v", err)
	}
}

func TestBeginOpensSessionAtMethodStep(t *testing.T) {
	o := newTestOrchestrator(&memStore{})
	sess, err := o.Begin(context.Background(), testAuth(), *basicPlan())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if sess.Step() != StepMethod {
		t.Fatalf("expected step %s, got %s", StepMethod, sess.Step())
	}

	got, err := o.Get(sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Get should return the live session, got %v, %v", got, err)
	}

	o.Close(sess.ID)
	if _, err := o.Get(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after Close, got %v", err)
	}
}

func TestEligibleMethodsEmptySet(t *testing.T) {
	o := newTestOrchestrator(&memStore{})
	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())

	_, err := o.EligibleMethods(context.Background(), sess)
	if !errors.Is(err, ErrNoMethodsConfigured) {
		t.Fatalf("expected ErrNoMethodsConfigured, got %v", err)
	}
}

func TestSelectMethodRevalidatesAtCallTime(t *testing.T) {
	store := &memStore{methods: fullMethodSet()}
	o := newTestOrchestrator(store)
	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())

	// Deactivate nequi after the user saw the list but before selecting.
	store.methods[2].IsActive = false

	err := o.SelectMethod(context.Background(), sess, 3)
	if !errors.Is(err, ErrMethodNoLongerEligible) {
		t.Fatalf("expected ErrMethodNoLongerEligible, got %v", err)
	}
	if sess.Step() != StepMethod {
		t.Fatalf("session must stay at method step, got %s", sess.Step())
	}
}

func TestConfigChangeInvalidatesSelection(t *testing.T) {
	store := &memStore{methods: fullMethodSet()}
	o := newTestOrchestrator(store)
	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())

	if err := o.SelectMethod(context.Background(), sess, 3); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}

	// Admin deactivates the selected method; the change event arrives.
	store.methods[2].IsActive = false
	o.HandleConfigChanged()

	err := o.AdvanceToPayment(context.Background(), sess)
	if !errors.Is(err, ErrMethodNoLongerEligible) {
		t.Fatalf("expected ErrMethodNoLongerEligible, got %v", err)
	}
	if sess.Step() != StepMethod {
		t.Fatalf("session must return to method step, got %s", sess.Step())
	}
	if sess.Method() != nil {
		t.Fatal("stale selection must be cleared")
	}
}

func TestConfigChangeKeepsStillEligibleSelection(t *testing.T) {
	store := &memStore{methods: fullMethodSet()}
	o := newTestOrchestrator(store)
	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())

	if err := o.SelectMethod(context.Background(), sess, 3); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}

	// Unrelated change: stripe deactivated, nequi untouched.
	store.methods[0].IsActive = false
	o.HandleConfigChanged()

	if err := o.AdvanceToPayment(context.Background(), sess); err != nil {
		t.Fatalf("AdvanceToPayment: %v", err)
	}
	if sess.Step() != StepPayment {
		t.Fatalf("expected payment step, got %s", sess.Step())
	}
}

func TestExecuteBancolombiaFlow(t *testing.T) {
	store := &memStore{methods: fullMethodSet()}
	o := newTestOrchestrator(store)
	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())

	if err := o.SelectMethod(context.Background(), sess, 4); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := o.AdvanceToPayment(context.Background(), sess); err != nil {
		t.Fatalf("AdvanceToPayment: %v", err)
	}
	if err := o.ExecuteProviderAction(context.Background(), sess, nil); err != nil {
		t.Fatalf("ExecuteProviderAction: %v", err)
	}

	result := sess.Result()
	if result == nil {
		t.Fatal("expected an action result")
	}
	if !strings.HasPrefix(result.Reference, "MF-") {
		t.Fatalf("expected MF- reference, got %q", result.Reference)
	}
	if result.AccountNumber != "12345678901" || result.Beneficiary != "MesaFácil SAS" {
		t.Fatalf("unexpected transfer details: %+v", result)
	}
	if !result.RequiresManualConfirm {
		t.Fatal("bank transfer must require manual confirmation")
	}
}

func TestExecuteNequiValidatesFields(t *testing.T) {
	store := &memStore{methods: fullMethodSet()}
	o := newTestOrchestrator(store)
	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())

	if err := o.SelectMethod(context.Background(), sess, 3); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := o.AdvanceToPayment(context.Background(), sess); err != nil {
		t.Fatalf("AdvanceToPayment: %v", err)
	}

	err := o.ExecuteProviderAction(context.Background(), sess, map[string]string{
		"phone_number": "300123456", // 9 digits
		"full_name":    "Laura Gómez",
		"email":        "laura@example.com",
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if sess.LastError() != "" {
		t.Fatal("validation failures must not enter the error sub-state")
	}

	err = o.ExecuteProviderAction(context.Background(), sess, map[string]string{
		"phone_number": "3001234567",
	})
	if err != nil {
		t.Fatalf("ExecuteProviderAction: %v", err)
	}
	if !strings.HasPrefix(sess.Result().Reference, "NEQ-") {
		t.Fatalf("expected NEQ- reference, got %q", sess.Result().Reference)
	}
}

func TestExecuteFailureEntersErrorSubStateAndRetryClears(t *testing.T) {
	store := &memStore{methods: fullMethodSet()}
	o := newTestOrchestrator(store)
	o.Registry().Register(models.PaymentProviderStripe, func(cfg map[string]string) Provider {
		return &failingProvider{name: models.PaymentProviderStripe}
	})

	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())
	if err := o.SelectMethod(context.Background(), sess, 1); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := o.AdvanceToPayment(context.Background(), sess); err != nil {
		t.Fatalf("AdvanceToPayment: %v", err)
	}

	err := o.ExecuteProviderAction(context.Background(), sess, nil)
	if err == nil {
		t.Fatal("expected provider failure")
	}
	if sess.Step() != StepPayment {
		t.Fatalf("failure must keep the payment step, got %s", sess.Step())
	}
	if !strings.Contains(sess.LastError(), "invalid api key") {
		t.Fatalf("error sub-state must carry the provider message verbatim, got %q", sess.LastError())
	}

	if err := o.Retry(sess); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if sess.LastError() != "" || sess.Result() != nil {
		t.Fatal("Retry must clear the error sub-state")
	}
	if sess.Step() != StepPayment {
		t.Fatalf("Retry must stay at payment step, got %s", sess.Step())
	}
}

func TestConfirmRecordsEventAndPendingSubscription(t *testing.T) {
	store := &memStore{methods: fullMethodSet()}
	o := newTestOrchestrator(store)
	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())

	if err := o.SelectMethod(context.Background(), sess, 4); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := o.AdvanceToPayment(context.Background(), sess); err != nil {
		t.Fatalf("AdvanceToPayment: %v", err)
	}

	// Confirming before the action ran is not a valid transition.
	if err := o.Confirm(context.Background(), sess); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition before execute, got %v", err)
	}

	if err := o.ExecuteProviderAction(context.Background(), sess, nil); err != nil {
		t.Fatalf("ExecuteProviderAction: %v", err)
	}
	if err := o.Confirm(context.Background(), sess); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if sess.Step() != StepConfirmation {
		t.Fatalf("expected confirmation step, got %s", sess.Step())
	}

	if len(store.events) != 1 {
		t.Fatalf("expected 1 payment event, got %d", len(store.events))
	}
	event := store.events[0]
	if event.EventType != models.PaymentEventCheckoutConfirmed {
		t.Fatalf("unexpected event type %q", event.EventType)
	}
	if event.Provider != models.PaymentProviderBancolombia {
		t.Fatalf("unexpected event provider %q", event.Provider)
	}

	if len(store.subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(store.subs))
	}
	sub := store.subs[0]
	if sub.Status != models.SubscriptionStatusPending {
		t.Fatalf("confirmation must create a pending subscription, got %q", sub.Status)
	}
	if sub.CompanyID != 3 || sub.PlanID != basicPlan().ID {
		t.Fatalf("unexpected subscription scope: %+v", sub)
	}
	if sub.PaymentReference != sess.Result().Reference {
		t.Fatalf("subscription must carry the payment reference, got %q", sub.PaymentReference)
	}

	// The terminal step accepts no further transitions.
	if err := o.Confirm(context.Background(), sess); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after confirmation, got %v", err)
	}
	if err := o.AdvanceToPayment(context.Background(), sess); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after confirmation, got %v", err)
	}
}

func TestHostedFlowRecordsPendingSubscriptionBeforeRedirect(t *testing.T) {
	store := &memStore{methods: fullMethodSet()}
	o := newTestOrchestrator(store)
	o.Registry().Register(models.PaymentProviderStripe, func(cfg map[string]string) Provider {
		return &hostedProvider{name: models.PaymentProviderStripe}
	})

	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())
	if err := o.SelectMethod(context.Background(), sess, 1); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := o.AdvanceToPayment(context.Background(), sess); err != nil {
		t.Fatalf("AdvanceToPayment: %v", err)
	}
	if err := o.ExecuteProviderAction(context.Background(), sess, nil); err != nil {
		t.Fatalf("ExecuteProviderAction: %v", err)
	}

	// The provider webhook can arrive while the user is still on the
	// hosted page, so the row it activates must already exist.
	if len(store.subs) != 1 {
		t.Fatalf("expected the pending subscription before the redirect, got %d", len(store.subs))
	}
	sub := store.subs[0]
	if sub.Status != models.SubscriptionStatusPending {
		t.Fatalf("expected pending status, got %q", sub.Status)
	}
	if sub.ProviderSubscriptionID != "cs_test_42" || sub.PaymentReference != "cs_test_42" {
		t.Fatalf("subscription must be keyed by the provider reference, got %+v", sub)
	}

	// The user returning and confirming must not create a second row.
	if err := o.Confirm(context.Background(), sess); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(store.subs) != 1 {
		t.Fatalf("confirmation must not duplicate the subscription, got %d", len(store.subs))
	}
	if len(store.events) != 1 {
		t.Fatalf("confirmation must still record the audit event, got %d", len(store.events))
	}
	if sess.Step() != StepConfirmation {
		t.Fatalf("expected confirmation step, got %s", sess.Step())
	}
}

func TestQRProviderWithoutAsset(t *testing.T) {
	store := &memStore{
		methods: fullMethodSet(),
		qrAssets: []models.QRAsset{
			{ID: 1, PlanID: 1, Provider: models.PaymentProviderBancolombia, ImageURL: "https://cdn.example.com/qr/1.png", IsActive: true},
		},
	}
	o := newTestOrchestrator(store)
	sess, _ := o.Begin(context.Background(), testAuth(), *basicPlan())

	if err := o.SelectMethod(context.Background(), sess, 5); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if err := o.AdvanceToPayment(context.Background(), sess); err != nil {
		t.Fatalf("AdvanceToPayment: %v", err)
	}

	// The nequi sub-provider has no provisioned image.
	err := o.ExecuteProviderAction(context.Background(), sess, map[string]string{"target_provider": models.PaymentProviderNequi})
	if !errors.Is(err, ErrNoQRConfigured) {
		t.Fatalf("expected ErrNoQRConfigured, got %v", err)
	}

	if err := o.Retry(sess); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	err = o.ExecuteProviderAction(context.Background(), sess, map[string]string{"target_provider": models.PaymentProviderBancolombia})
	if err != nil {
		t.Fatalf("ExecuteProviderAction: %v", err)
	}
	if sess.Result().QRImageURL != "https://cdn.example.com/qr/1.png" {
		t.Fatalf("expected the provisioned QR image, got %q", sess.Result().QRImageURL)
	}
}
