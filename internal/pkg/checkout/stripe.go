package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// stripeProvider creates a hosted Stripe Checkout session in subscription
// mode and hands the redirect URL back to the caller.
type stripeProvider struct {
	publicKey string
	secretKey string
	baseURL   string
}

func newStripeProvider(cfg map[string]string, baseURL string) *stripeProvider {
	return &stripeProvider{
		publicKey: strings.TrimSpace(cfg["public_key"]),
		secretKey: strings.TrimSpace(cfg["secret_key"]),
		baseURL:   baseURL,
	}
}

func (p *stripeProvider) Name() string {
	return models.PaymentProviderStripe
}

func (p *stripeProvider) Validate(fields map[string]string) error {
	// Card collection happens on Stripe's hosted page; nothing to collect here.
	if p.secretKey == "" {
		return fmt.Errorf("%w: stripe secret key not configured", ErrValidationFailed)
	}
	return nil
}

func (p *stripeProvider) Execute(ctx context.Context, sess *Session) (*ActionResult, error) {
	// Per-method API client: keys come from the method config, not a
	// process-global, so several configs can coexist.
	sc := &client.API{}
	sc.Init(p.secretKey, nil)

	returnBase := p.baseURL + "/checkout/" + sess.ID + "/return"

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(returnBase + "?status=success"),
		CancelURL:         stripe.String(returnBase + "?status=cancel"),
		CustomerEmail:     stripe.String(sess.Auth.Email),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(sess.Auth.CompanyID), 10)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(sess.Plan.Currency)),
					UnitAmount: stripe.Int64(sess.Plan.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(sess.Plan.Name),
					},
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(stripeInterval(sess.Plan.BillingInterval)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	s, err := sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRequestFailed, err)
	}
	if s.URL == "" {
		return nil, fmt.Errorf("%w: stripe returned no checkout URL", ErrProviderRequestFailed)
	}

	return &ActionResult{
		RedirectURL: s.URL,
		Reference:   s.ID,
	}, nil
}

func stripeInterval(billingInterval string) string {
	switch billingInterval {
	case models.BillingIntervalYearly:
		return "year"
	case models.BillingIntervalWeekly:
		return "week"
	default:
		return "month"
	}
}
