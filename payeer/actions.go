// File: payeer/actions.go
package payeer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

// GetBalance returns the wallet balances per currency, the raw value of the
// balance response field.
func (c *Client) GetBalance(ctx context.Context) (json.RawMessage, error) {
	env, err := c.Request(ctx, url.Values{"action": {"balance"}})
	if err != nil {
		return nil, err
	}
	return env.field("balance")
}

// CheckUser reports whether an account exists. An API-reported failure means
// no such account and comes back as (false, nil); transport failures are
// returned as errors.
func (c *Client) CheckUser(ctx context.Context, user string) (bool, error) {
	_, err := c.Request(ctx, url.Values{"action": {"checkUser"}, "user": {user}})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetExchangeRate returns the automatic conversion rates, keyed by currency
// pair. An empty direction means deposit rates.
func (c *Client) GetExchangeRate(ctx context.Context, direction RateDirection) (map[string]decimal.Decimal, error) {
	if direction == "" {
		direction = RateDeposit
	}
	env, err := c.Request(ctx, url.Values{"action": {"getExchangeRate"}, "output": {string(direction)}})
	if err != nil {
		return nil, err
	}
	raw, err := env.field("rate")
	if err != nil {
		return nil, err
	}
	var rates map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, fmt.Errorf("payeer: decode rate field: %w", err)
	}
	return rates, nil
}

// GetPaySystems returns the payment systems available for payouts, the raw
// value of the list response field.
func (c *Client) GetPaySystems(ctx context.Context) (json.RawMessage, error) {
	env, err := c.Request(ctx, url.Values{"action": {"getPaySystems"}})
	if err != nil {
		return nil, err
	}
	return env.field("list")
}

// GetHistoryInfo returns details of a single transaction by its history id.
func (c *Client) GetHistoryInfo(ctx context.Context, historyID string) (json.RawMessage, error) {
	env, err := c.Request(ctx, url.Values{"action": {"historyInfo"}, "historyId": {historyID}})
	if err != nil {
		return nil, err
	}
	return env.field("info")
}

// ShopOrderInfo returns the envelope describing one merchant transaction.
func (c *Client) ShopOrderInfo(ctx context.Context, opts ShopOrderOptions) (Envelope, error) {
	return c.Request(ctx, url.Values{
		"action":  {"shopOrderInfo"},
		"shopId":  {opts.ShopID},
		"orderId": {opts.OrderID},
	})
}

// Transfer moves funds to another wallet or email address. The recipient is
// validated locally first; a malformed identifier fails without touching the
// network.
func (c *Client) Transfer(ctx context.Context, opts TransferOptions) (Envelope, error) {
	if err := ValidateAccount(opts.To); err != nil {
		return nil, err
	}
	return c.Request(ctx, opts.values())
}

// CheckOutput verifies that a payout with the given parameters would be
// accepted, without creating one. An API-reported failure comes back as
// (false, nil); transport failures are returned as errors.
func (c *Client) CheckOutput(ctx context.Context, opts OutputOptions) (bool, error) {
	_, err := c.Request(ctx, opts.values("initOutput"))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Output creates a payout to an external payment system and returns the full
// envelope, history id included.
func (c *Client) Output(ctx context.Context, opts OutputOptions) (Envelope, error) {
	return c.Request(ctx, opts.values("output"))
}

// History lists wallet transactions, the raw value of the history response
// field. See HistoryOptions for the supported filters.
func (c *Client) History(ctx context.Context, opts HistoryOptions) (json.RawMessage, error) {
	env, err := c.Request(ctx, opts.values())
	if err != nil {
		return nil, err
	}
	return env.field("history")
}
