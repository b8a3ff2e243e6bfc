package ratefetch

import "fmt"

// ErrorKind classifies a failed rate fetch so the sync orchestrator can
// choose between retrying, backing off, or giving up.
type ErrorKind string

const (
	// KindMissingCredential: no API key configured; no request was attempted.
	KindMissingCredential ErrorKind = "missing_credential"
	// KindUnsupportedBase: base currency is not in the catalog; no request
	// was attempted.
	KindUnsupportedBase ErrorKind = "unsupported_base"
	// KindTransport: network or timeout failure.
	KindTransport ErrorKind = "transport"
	// KindRateLimited: HTTP 429; retryable after a longer cooldown.
	KindRateLimited ErrorKind = "rate_limited"
	// KindAuth: HTTP 401/403; retrying will not help without operator action.
	KindAuth ErrorKind = "auth"
	// KindServer: HTTP 5xx.
	KindServer ErrorKind = "server"
	// KindMalformed: body is not valid JSON, or the data field is missing,
	// empty, or holds no numeric rates.
	KindMalformed ErrorKind = "malformed_response"
)

// APIError is the typed error returned by Client for any failed fetch.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("rate api %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("rate api %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later attempt can reasonably succeed without
// operator intervention. Malformed responses count as retryable: transient
// corruption upstream clears itself.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindTransport, KindServer, KindRateLimited, KindMalformed:
		return true
	}
	return false
}

// IsRateLimited reports whether err is an APIError carrying the provider's
// rate-limit signal.
func IsRateLimited(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Kind == KindRateLimited
}
