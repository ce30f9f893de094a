//go:build !integration

package payeer_test

import (
	"errors"
	"testing"

	"payeer-client/payeer"
)

func TestValidateAccount(t *testing.T) {
	accept := []string{
		"P1000000",            // 7 digits, shortest wallet form
		"p1000000",            // lowercase prefix
		"p123456789012345",    // 15 digits, longest wallet form
		"P123456789012345",
		"P1234567890123456",   // extra digits past 15 still match as a prefix
		"P1000000-note",       // trailing junk after a valid prefix is tolerated
		"a@b.co",              // minimal email
		"first.last@host.org", // ordinary email
	}
	for _, account := range accept {
		if err := payeer.ValidateAccount(account); err != nil {
			t.Errorf("ValidateAccount(%q) = %v, want nil", account, err)
		}
	}

	reject := []string{
		"",
		"P123456",        // only 6 digits
		"Q1000000",       // wrong prefix
		"1000000",        // no prefix at all
		"not-an-account",
		"@b.co",          // empty local part
		"a@bco",          // no dot in the domain
		"a@b.",           // nothing after the dot
	}
	for _, account := range reject {
		err := payeer.ValidateAccount(account)
		if err == nil {
			t.Errorf("ValidateAccount(%q) = nil, want an error", account)
			continue
		}
		var invalid *payeer.InvalidAccountError
		if !errors.As(err, &invalid) {
			t.Errorf("ValidateAccount(%q) returned %T, want *payeer.InvalidAccountError", account, err)
			continue
		}
		if invalid.Account != account {
			t.Errorf("InvalidAccountError.Account = %q, want %q", invalid.Account, account)
		}
	}
}
