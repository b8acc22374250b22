package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/checkout"
)

// stripeWebhookSecret returns the webhook signing secret from the active
// stripe method configuration.
func stripeWebhookSecret() string {
	methods, err := repository.GetGlobalRepositories().PaymentMethod.GetActive()
	if err != nil {
		return ""
	}
	for _, m := range methods {
		if m.Provider == models.PaymentProviderStripe {
			return m.Config()["webhook_secret"]
		}
	}
	return ""
}

func mercadoPagoWebhookSecret() string {
	methods, err := repository.GetGlobalRepositories().PaymentMethod.GetActive()
	if err != nil {
		return ""
	}
	for _, m := range methods {
		if m.Provider == models.PaymentProviderMercadoPago {
			return m.Config()["webhook_secret"]
		}
	}
	return ""
}

// HandleStripeWebhook verifies, deduplicates and processes Stripe events.
// Only webhooks move subscriptions into verified states.
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	secret := stripeWebhookSecret()

	event, err := webhook.ConstructEvent(payload, c.Get("Stripe-Signature"), secret)
	if err != nil {
		log.Warnf("[Webhook] Stripe signature verification failed: %v", err)
		return c.SendStatus(fiber.StatusBadRequest)
	}

	repos := repository.GetGlobalRepositories()
	record := &models.PaymentEvent{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(payload),
		SignatureValid:  true,
	}
	created, err := repos.PaymentEvent.CreateIfNotExists(record)
	if err != nil {
		log.Errorf("[Webhook] Failed to store stripe event %s: %v", event.ID, err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if !created {
		// Duplicate delivery; already handled.
		return c.SendStatus(fiber.StatusOK)
	}

	processingErr := processStripeEvent(&event)
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
		log.Errorf("[Webhook] Processing stripe event %s failed: %v", event.ID, processingErr)
	}
	if stored, err := repos.PaymentEvent.GetByProviderEventID(models.PaymentProviderStripe, event.ID); err == nil {
		_ = repos.PaymentEvent.MarkProcessed(stored.ID, errMsg)
	}

	// Always 200 once stored: Stripe retries on non-2xx, and the failure is
	// recorded for manual inspection.
	return c.SendStatus(fiber.StatusOK)
}

func processStripeEvent(event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return fmt.Errorf("decoding checkout session: %w", err)
		}
		return activateStripeSubscription(&cs)
	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decoding subscription: %w", err)
		}
		return syncStripeSubscriptionStatus(&sub)
	default:
		// Unhandled event types are stored but not processed.
		return nil
	}
}

func activateStripeSubscription(cs *stripe.CheckoutSession) error {
	repos := repository.GetGlobalRepositories()

	sub, err := repos.Subscription.GetByProviderRef(models.PaymentProviderStripe, cs.ID)
	if err != nil {
		return fmt.Errorf("no pending subscription for checkout session %s: %w", cs.ID, err)
	}

	now := time.Now()
	sub.Status = models.SubscriptionStatusActive
	sub.CurrentPeriodStart = &now
	if cs.Subscription != nil {
		// Re-key to the durable subscription ID for later lifecycle events.
		sub.ProviderSubscriptionID = cs.Subscription.ID
	}
	return repos.Subscription.Update(sub)
}

func syncStripeSubscriptionStatus(stripeSub *stripe.Subscription) error {
	repos := repository.GetGlobalRepositories()

	sub, err := repos.Subscription.GetByProviderRef(models.PaymentProviderStripe, stripeSub.ID)
	if err != nil {
		return fmt.Errorf("unknown stripe subscription %s: %w", stripeSub.ID, err)
	}

	switch stripeSub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		sub.Status = models.SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		sub.Status = models.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled:
		sub.Status = models.SubscriptionStatusCanceled
	default:
		sub.Status = models.SubscriptionStatusExpired
	}
	sub.CancelAtPeriodEnd = stripeSub.CancelAtPeriodEnd

	return repos.Subscription.Update(sub)
}

// mercadoPagoNotification is the body Mercado Pago posts for payment events
type mercadoPagoNotification struct {
	ID     int64  `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// validateMercadoPagoSignature checks the x-signature header (HMAC-SHA256
// over the documented manifest string).
func validateMercadoPagoSignature(c *fiber.Ctx, dataID, secret string) bool {
	if secret == "" {
		return false
	}
	signature := c.Get("x-signature")
	requestID := c.Get("x-request-id")
	if signature == "" {
		return false
	}

	var ts, v1 string
	for _, part := range strings.Split(signature, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "ts":
			ts = kv[1]
		case "v1":
			v1 = kv[1]
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(dataID), requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(v1))
}

// HandleMercadoPagoWebhook verifies, deduplicates and stores Mercado Pago
// payment notifications.
func HandleMercadoPagoWebhook(c *fiber.Ctx) error {
	var notification mercadoPagoNotification
	if err := json.Unmarshal(c.Body(), &notification); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	dataID := notification.Data.ID
	if dataID == "" {
		dataID = c.Query("data.id")
	}
	if dataID == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	signatureValid := validateMercadoPagoSignature(c, dataID, mercadoPagoWebhookSecret())
	if !signatureValid {
		log.Warnf("[Webhook] Mercado Pago signature verification failed for %s", dataID)
		return c.SendStatus(fiber.StatusBadRequest)
	}

	repos := repository.GetGlobalRepositories()
	record := &models.PaymentEvent{
		Provider:        models.PaymentProviderMercadoPago,
		ProviderEventID: fmt.Sprintf("%s:%s", notification.Type, dataID),
		EventType:       notification.Action,
		PayloadJSON:     string(c.Body()),
		SignatureValid:  true,
	}
	created, err := repos.PaymentEvent.CreateIfNotExists(record)
	if err != nil {
		log.Errorf("[Webhook] Failed to store mercado pago event %s: %v", dataID, err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if !created {
		return c.SendStatus(fiber.StatusOK)
	}

	// Payment approval activates the pending subscription keyed by the
	// checkout preference.
	if notification.Type == "payment" {
		if err := activateMercadoPagoSubscription(c, dataID); err != nil {
			log.Warnf("[Webhook] Mercado pago payment %s not matched: %v", dataID, err)
		}
	}
	if stored, err := repos.PaymentEvent.GetByProviderEventID(models.PaymentProviderMercadoPago, record.ProviderEventID); err == nil {
		_ = repos.PaymentEvent.MarkProcessed(stored.ID, "")
	}

	return c.SendStatus(fiber.StatusOK)
}

func activateMercadoPagoSubscription(c *fiber.Ctx, paymentID string) error {
	repos := repository.GetGlobalRepositories()

	token := ""
	if methods, err := repos.PaymentMethod.GetActive(); err == nil {
		for _, m := range methods {
			if m.Provider == models.PaymentProviderMercadoPago {
				cfg := m.Config()
				token = cfg["access_token"]
				if token == "" {
					token = cfg["public_key"]
				}
			}
		}
	}

	client := checkout.NewMercadoPagoClient(token)
	payment, err := client.GetPayment(c.Context(), paymentID)
	if err != nil {
		return err
	}
	if payment.Status != "approved" {
		return nil
	}

	// external_reference carries the local payment reference generated at
	// checkout.
	sub, err := repos.Subscription.GetByPaymentReference(payment.ExternalReference)
	if err != nil {
		return err
	}

	now := time.Now()
	sub.Status = models.SubscriptionStatusActive
	sub.CurrentPeriodStart = &now
	return repos.Subscription.Update(sub)
}
