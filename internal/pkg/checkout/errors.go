package checkout

import "errors"

// Error taxonomy surfaced to users. Provider error text is wrapped, never
// translated, so support can see the real backend message.
var (
	// ErrUnauthenticated means the caller must sign in before checkout.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrCheckoutNotRequired means the plan is free and bypasses payment.
	ErrCheckoutNotRequired = errors.New("free plan does not require checkout")

	// ErrCheckoutDisabled means an administrator turned checkout off globally.
	ErrCheckoutDisabled = errors.New("checkout is currently disabled")

	// ErrNoMethodsConfigured means zero eligible methods exist for the plan.
	ErrNoMethodsConfigured = errors.New("no payment methods available for this plan")

	// ErrMethodNoLongerEligible means the selected method lost eligibility
	// between render and click (e.g. an admin deactivated it).
	ErrMethodNoLongerEligible = errors.New("selected payment method is no longer available")

	// ErrProviderRequestFailed wraps network or provider-side errors.
	ErrProviderRequestFailed = errors.New("payment provider request failed")

	// ErrNoQRConfigured means no usable QR image exists for the plan/provider pair.
	ErrNoQRConfigured = errors.New("no QR code configured for this plan and provider")

	// ErrValidationFailed means a provider-specific field is missing or malformed.
	ErrValidationFailed = errors.New("payment data validation failed")

	// ErrInvalidTransition means an operation was called in the wrong step.
	ErrInvalidTransition = errors.New("operation not allowed in current checkout step")

	// ErrSessionNotFound means the checkout session expired or was closed.
	ErrSessionNotFound = errors.New("checkout session not found")
)
