// File: payeer/types.go
package payeer

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// Currency is a wallet currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	RUB Currency = "RUB"
)

// RateDirection selects which conversion table GetExchangeRate returns.
type RateDirection string

const (
	// RateDeposit asks for the deposit (incoming) rate table.
	RateDeposit RateDirection = "N"
	// RateWithdrawal asks for the withdrawal (outgoing) rate table.
	RateWithdrawal RateDirection = "Y"
)

// HistorySort orders history listings by date.
type HistorySort string

const (
	HistorySortAsc  HistorySort = "asc"
	HistorySortDesc HistorySort = "desc"
)

// HistoryType filters history listings by transaction direction.
type HistoryType string

const (
	HistoryIncoming HistoryType = "incoming"
	HistoryOutgoing HistoryType = "outgoing"
)

// TransferOptions parameterizes Transfer. Sum is the amount withdrawn from
// the sending wallet; the credited amount is derived by the API net of fees.
type TransferOptions struct {
	Sum decimal.Decimal
	// To is the recipient wallet number (P1000000) or email address.
	To string
	// CurIn and CurOut default to USD when empty.
	CurIn  Currency
	CurOut Currency
	// Comment is attached to the transfer when non-empty.
	Comment string
	// Protect enables transaction protection. The period and code fields are
	// only submitted while protection is on.
	Protect       bool
	ProtectPeriod int // days, 1 to 30
	ProtectCode   string
}

func (o TransferOptions) values() url.Values {
	v := url.Values{}
	v.Set("action", "transfer")
	v.Set("sum", o.Sum.String())
	v.Set("to", o.To)
	v.Set("curIn", string(currencyOrUSD(o.CurIn)))
	v.Set("curOut", string(currencyOrUSD(o.CurOut)))
	if o.Comment != "" {
		v.Set("comment", o.Comment)
	}
	if o.Protect {
		v.Set("protect", "Y")
		if o.ProtectPeriod != 0 {
			v.Set("protectPeriod", strconv.Itoa(o.ProtectPeriod))
		}
		if o.ProtectCode != "" {
			v.Set("protectCode", o.ProtectCode)
		}
	}
	return v
}

// OutputOptions parameterizes CheckOutput and Output.
type OutputOptions struct {
	// PaySystem is the id of the target payment system, as listed by
	// GetPaySystems.
	PaySystem string
	// Account is the recipient's account number in that system.
	Account string
	// SumIn is the amount withdrawn from the wallet; the amount received is
	// derived by the API net of fees.
	SumIn decimal.Decimal
	// CurIn and CurOut default to USD when empty.
	CurIn  Currency
	CurOut Currency
}

func (o OutputOptions) values(action string) url.Values {
	v := url.Values{}
	v.Set("action", action)
	v.Set("ps", o.PaySystem)
	v.Set("param_ACCOUNT_NUMBER", o.Account)
	v.Set("sumIn", o.SumIn.String())
	v.Set("curIn", string(currencyOrUSD(o.CurIn)))
	v.Set("curOut", string(currencyOrUSD(o.CurOut)))
	return v
}

// ShopOrderOptions identifies one merchant transaction.
type ShopOrderOptions struct {
	// ShopID is the merchant id.
	ShopID string
	// OrderID is the transaction id in the merchant's accounting.
	OrderID string
}

// HistoryOptions filters History. Zero fields are omitted from the request.
// Extra keys are forwarded verbatim, with the typed fields winning on
// collision; the action key cannot be overridden.
type HistoryOptions struct {
	Sort HistorySort
	// Count caps the number of entries, at most 1000.
	Count int
	// From and To bound the period, formatted as "2006-01-02 15:04:05".
	From string
	To   string
	Type HistoryType
	// Append continues a listing after the given transaction id.
	Append string
	// Extra carries any further filter parameters.
	Extra url.Values
}

func (o HistoryOptions) values() url.Values {
	v := url.Values{}
	for key, vals := range o.Extra {
		v[key] = vals
	}
	if o.Sort != "" {
		v.Set("sort", string(o.Sort))
	}
	if o.Count != 0 {
		v.Set("count", strconv.Itoa(o.Count))
	}
	if o.From != "" {
		v.Set("from", o.From)
	}
	if o.To != "" {
		v.Set("to", o.To)
	}
	if o.Type != "" {
		v.Set("type", string(o.Type))
	}
	if o.Append != "" {
		v.Set("append", o.Append)
	}
	v.Set("action", "history")
	return v
}

func currencyOrUSD(c Currency) Currency {
	if c == "" {
		return USD
	}
	return c
}
