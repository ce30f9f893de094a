// File: payeer/client.go
package payeer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the production endpoint of the Payeer wallet API.
const DefaultBaseURL = "https://payeer.com/ajax/api/api.php"

// HTTPClient is the transport seam used by Client. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config carries the credential triple issued when API access is enabled on a
// wallet, plus optional overrides.
type Config struct {
	// Account is the wallet number, e.g. P1000000.
	Account string
	// APIID identifies the API user added in the account settings.
	APIID string
	// APISecret is the API user's secret key. Sent as apiPass on the wire.
	APISecret string

	// BaseURL overrides the production endpoint. Useful against a sandbox.
	BaseURL string
	// HTTPClient overrides the transport. Defaults to a plain http.Client
	// with no client-side timeout; impose deadlines through the context.
	HTTPClient HTTPClient
}

// Client is a binding for the Payeer wallet API. The zero value is not
// usable; construct through New.
type Client struct {
	account   string
	apiID     string
	apiSecret string
	baseURL   string
	http      HTTPClient
}

// New validates cfg and returns a ready client.
func New(cfg Config) (*Client, error) {
	if cfg.Account == "" {
		return nil, errors.New("payeer: config.Account is required")
	}
	if cfg.APIID == "" {
		return nil, errors.New("payeer: config.APIID is required")
	}
	if cfg.APISecret == "" {
		return nil, errors.New("payeer: config.APISecret is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		account:   cfg.Account,
		apiID:     cfg.APIID,
		apiSecret: cfg.APISecret,
		baseURL:   baseURL,
		http:      httpClient,
	}, nil
}

// Envelope is the decoded JSON object an API call returns. By the time a
// caller sees one, the errors field has already been checked by Request.
type Envelope map[string]json.RawMessage

// field returns the raw value under key, or an error naming the missing key.
func (e Envelope) field(key string) (json.RawMessage, error) {
	raw, ok := e[key]
	if !ok {
		return nil, fmt.Errorf("payeer: response has no %q field", key)
	}
	return raw, nil
}

// Request issues a single POST against the API. The submitted form is the
// credential triple merged with params; params win on every collision, the
// action key included. The HTTP status code carries no signal on this API, so
// the body is decoded regardless of it. A truthy errors field becomes
// *APIError; transport and decode failures pass through wrapped.
func (c *Client) Request(ctx context.Context, params url.Values) (Envelope, error) {
	form := url.Values{}
	form.Set("account", c.account)
	form.Set("apiId", c.apiID)
	form.Set("apiPass", c.apiSecret)
	for key, vals := range params {
		form[key] = vals
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payeer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payeer: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("payeer: read response: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("payeer: decode response: %w", err)
	}
	if raw, ok := env["errors"]; ok && truthy(raw) {
		return nil, &APIError{Errors: append(json.RawMessage(nil), raw...)}
	}
	return env, nil
}

// truthy reports whether a decoded errors value signals failure. The API is
// loose here: null, false, zero, the empty string and empty containers all
// mean no error, anything else means failure.
func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
