package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/google/uuid"
)

const defaultMercadoPagoAPIBaseURL = "https://api.mercadopago.com"

// MercadoPagoClient talks to the Mercado Pago checkout preference API.
type MercadoPagoClient struct {
	AccessToken string
	APIBaseURL  string
	HTTPClient  *http.Client
}

func NewMercadoPagoClient(accessToken string) *MercadoPagoClient {
	return &MercadoPagoClient{
		AccessToken: strings.TrimSpace(accessToken),
		APIBaseURL:  defaultMercadoPagoAPIBaseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type PreferencePayer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type PreferenceBackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type PreferenceRequest struct {
	Items             []PreferenceItem   `json:"items"`
	Payer             PreferencePayer    `json:"payer"`
	ExternalReference string             `json:"external_reference,omitempty"`
	BackURLs          PreferenceBackURLs `json:"back_urls,omitempty"`
	AutoReturn        string             `json:"auto_return,omitempty"`
}

type PreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference creates a checkout preference and returns the hosted
// checkout URLs. Non-2xx responses are returned with the raw body so the
// provider's own error text reaches the user.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, pref PreferenceRequest) (*PreferenceResponse, error) {
	if c.AccessToken == "" {
		return nil, errors.New("mercado pago access token is not configured")
	}

	body, err := json.Marshal(pref)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/checkout/preferences"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercado pago preference creation failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out PreferenceResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.InitPoint) == "" && strings.TrimSpace(out.SandboxInitPoint) == "" {
		return nil, errors.New("mercado pago preference response missing init_point")
	}
	return &out, nil
}

// PaymentResponse is the subset of the payment object used for webhook
// reconciliation.
type PaymentResponse struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

// GetPayment fetches a payment by ID.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (*PaymentResponse, error) {
	if c.AccessToken == "" {
		return nil, errors.New("mercado pago access token is not configured")
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/v1/payments/" + paymentID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercado pago payment lookup failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out PaymentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// mercadoPagoProvider requests a hosted checkout preference and hands back
// the redirect URL (sandbox variant when sandbox mode is on).
type mercadoPagoProvider struct {
	client  *MercadoPagoClient
	sandbox bool
	backURL string
}

func newMercadoPagoProvider(cfg map[string]string, backURL string, sandbox bool) *mercadoPagoProvider {
	// The private access token is optional in the method config; the
	// public key is used as a fallback credential for sandbox setups.
	token := strings.TrimSpace(cfg["access_token"])
	if token == "" {
		token = strings.TrimSpace(cfg["public_key"])
	}
	return &mercadoPagoProvider{
		client:  NewMercadoPagoClient(token),
		sandbox: sandbox,
		backURL: backURL,
	}
}

func (p *mercadoPagoProvider) Name() string {
	return models.PaymentProviderMercadoPago
}

func (p *mercadoPagoProvider) Validate(fields map[string]string) error {
	if p.client.AccessToken == "" {
		return fmt.Errorf("%w: mercado pago credentials not configured", ErrValidationFailed)
	}
	return nil
}

func (p *mercadoPagoProvider) Execute(ctx context.Context, sess *Session) (*ActionResult, error) {
	// Local reference: carried through the preference as external_reference
	// so payment webhooks can be matched back to the subscription.
	reference := "MP-" + strings.ToUpper(uuid.NewString()[:10])

	pref := PreferenceRequest{
		Items: []PreferenceItem{
			{
				Title:      sess.Plan.Name,
				Quantity:   1,
				UnitPrice:  float64(sess.Plan.PriceCents) / 100,
				CurrencyID: sess.Plan.Currency,
			},
		},
		Payer: PreferencePayer{
			Name:  sess.Auth.Name,
			Email: sess.Auth.Email,
		},
		ExternalReference: reference,
		BackURLs: PreferenceBackURLs{
			Success: p.backURL + "/checkout/" + sess.ID + "/return?status=success",
			Failure: p.backURL + "/checkout/" + sess.ID + "/return?status=failure",
			Pending: p.backURL + "/checkout/" + sess.ID + "/return?status=pending",
		},
		AutoReturn: "approved",
	}

	resp, err := p.client.CreatePreference(ctx, pref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRequestFailed, err)
	}

	redirect := resp.InitPoint
	if p.sandbox && resp.SandboxInitPoint != "" {
		redirect = resp.SandboxInitPoint
	}
	return &ActionResult{
		RedirectURL: redirect,
		Reference:   reference,
	}, nil
}
