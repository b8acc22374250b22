package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreatePreference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checkout/preferences" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer TEST-token" {
			t.Fatalf("unexpected authorization header %q", got)
		}

		var pref PreferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(pref.Items) != 1 || pref.Items[0].UnitPrice != 29900 {
			t.Fatalf("unexpected items: %+v", pref.Items)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PreferenceResponse{
			ID:               "pref-123",
			InitPoint:        "https://www.mercadopago.com.co/checkout/v1/redirect?pref_id=pref-123",
			SandboxInitPoint: "https://sandbox.mercadopago.com.co/checkout/v1/redirect?pref_id=pref-123",
		})
	}))
	defer server.Close()

	client := NewMercadoPagoClient("TEST-token")
	client.APIBaseURL = server.URL

	resp, err := client.CreatePreference(context.Background(), PreferenceRequest{
		Items: []PreferenceItem{{Title: "Plan Básico", Quantity: 1, UnitPrice: 29900, CurrencyID: "COP"}},
		Payer: PreferencePayer{Email: "laura@example.com"},
	})
	if err != nil {
		t.Fatalf("CreatePreference: %v", err)
	}
	if resp.ID != "pref-123" {
		t.Fatalf("unexpected preference id %q", resp.ID)
	}
	if !strings.Contains(resp.InitPoint, "pref_id=pref-123") {
		t.Fatalf("unexpected init point %q", resp.InitPoint)
	}
}

func TestCreatePreferenceAPIErrorKeepsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid access token","status":400}`))
	}))
	defer server.Close()

	client := NewMercadoPagoClient("TEST-bad")
	client.APIBaseURL = server.URL

	_, err := client.CreatePreference(context.Background(), PreferenceRequest{})
	if err == nil {
		t.Fatal("expected an error for status 400")
	}
	if !strings.Contains(err.Error(), "invalid access token") {
		t.Fatalf("error must carry the provider body verbatim, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("error must carry the status, got %q", err.Error())
	}
}

func TestCreatePreferenceRequiresToken(t *testing.T) {
	client := NewMercadoPagoClient("   ")
	if _, err := client.CreatePreference(context.Background(), PreferenceRequest{}); err == nil {
		t.Fatal("expected an error without an access token")
	}
}

func TestMercadoPagoProviderSandboxRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PreferenceResponse{
			ID:               "pref-9",
			InitPoint:        "https://www.mercadopago.com.co/checkout?pref_id=pref-9",
			SandboxInitPoint: "https://sandbox.mercadopago.com.co/checkout?pref_id=pref-9",
		})
	}))
	defer server.Close()

	provider := newMercadoPagoProvider(map[string]string{"access_token": "TEST-token"}, "https://mesafacil.test", true)
	provider.client.APIBaseURL = server.URL

	sess := &Session{ID: "sess-1", Auth: testAuth(), Plan: *basicPlan(), fields: map[string]string{}}
	result, err := provider.Execute(context.Background(), sess)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(result.RedirectURL, "https://sandbox.") {
		t.Fatalf("sandbox mode must use the sandbox init point, got %q", result.RedirectURL)
	}
	if !strings.HasPrefix(result.Reference, "MP-") || len(result.Reference) != 13 {
		t.Fatalf("unexpected reference %q", result.Reference)
	}
}
