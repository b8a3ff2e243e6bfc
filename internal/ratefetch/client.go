// Package ratefetch wraps the external "latest rates" provider endpoint and
// classifies its failures for the sync pipeline.
package ratefetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fxsync/currency_exchange_app/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const defaultTimeout = 30 * time.Second

// Client fetches latest exchange rates from a FreeCurrencyAPI-compatible
// provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a rate API client. timeout bounds the whole request;
// zero falls back to 30s.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// FetchLatestRates issues a single GET to the provider's latest-rates
// endpoint and returns the target-code to rate mapping. All failures are
// returned as *APIError.
func (c *Client) FetchLatestRates(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error) {
	if c.apiKey == "" {
		return nil, &APIError{Kind: KindMissingCredential, Message: "no API key configured"}
	}
	if !catalog.IsSupported(baseCurrency) {
		return nil, &APIError{Kind: KindUnsupportedBase, Message: fmt.Sprintf("base currency %q is not supported", baseCurrency)}
	}

	reqURL := fmt.Sprintf("%s/latest?apikey=%s&base_currency=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(baseCurrency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Message: "failed to read response body", Err: err}
	}

	if apiErr := classifyStatus(resp.StatusCode); apiErr != nil {
		return nil, apiErr
	}

	return c.parseRates(body, baseCurrency)
}

func classifyStatus(status int) *APIError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, StatusCode: status, Message: "rate limit exceeded"}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &APIError{Kind: KindAuth, StatusCode: status, Message: "invalid API key"}
	case status >= 500:
		return &APIError{Kind: KindServer, StatusCode: status, Message: "provider server error"}
	default:
		return &APIError{Kind: KindMalformed, StatusCode: status, Message: fmt.Sprintf("unexpected HTTP status %d", status)}
	}
}

// parseRates extracts the data object. Non-numeric entries are dropped with
// a warning; an empty remainder is a malformed response.
func (c *Client) parseRates(body []byte, baseCurrency string) (map[string]decimal.Decimal, error) {
	if !gjson.ValidBytes(body) {
		return nil, &APIError{Kind: KindMalformed, Message: "response is not valid JSON"}
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return nil, &APIError{Kind: KindMalformed, Message: `response missing "data" field`}
	}
	if !data.IsObject() {
		return nil, &APIError{Kind: KindMalformed, Message: `response "data" field is not an object`}
	}

	rates := make(map[string]decimal.Decimal)
	data.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			c.logger.Warn("Dropping non-numeric rate entry",
				slog.String("base_currency", baseCurrency),
				slog.String("target_currency", key.String()),
				slog.String("value", value.Raw))
			return true
		}
		// Parse from the raw token to keep the provider's full precision.
		rate, err := decimal.NewFromString(value.Raw)
		if err != nil {
			c.logger.Warn("Dropping unparsable rate entry",
				slog.String("base_currency", baseCurrency),
				slog.String("target_currency", key.String()),
				slog.String("value", value.Raw))
			return true
		}
		rates[key.String()] = rate
		return true
	})

	if len(rates) == 0 {
		return nil, &APIError{Kind: KindMalformed, Message: "no valid rates in response"}
	}
	return rates, nil
}
