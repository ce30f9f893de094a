//go:build integration

package payeer_test

import (
	"context"
	"os"
	"testing"
	"time"

	"payeer-client/payeer"
)

// TestLive_ReadOnlyActions runs the harmless read actions against the real
// API. It needs PAYEER_ACCOUNT, PAYEER_API_ID and PAYEER_API_SECRET set and
// is skipped otherwise.
func TestLive_ReadOnlyActions(t *testing.T) {
	account := os.Getenv("PAYEER_ACCOUNT")
	apiID := os.Getenv("PAYEER_API_ID")
	secret := os.Getenv("PAYEER_API_SECRET")
	if account == "" || apiID == "" || secret == "" {
		t.Skip("PAYEER_ACCOUNT, PAYEER_API_ID and PAYEER_API_SECRET are not set")
	}

	client, err := payeer.New(payeer.Config{Account: account, APIID: apiID, APISecret: secret})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := client.GetBalance(ctx); err != nil {
		t.Fatalf("GetBalance: %v", err)
	}

	rates, err := client.GetExchangeRate(ctx, payeer.RateDeposit)
	if err != nil {
		t.Fatalf("GetExchangeRate: %v", err)
	}
	if len(rates) == 0 {
		t.Error("expected at least one conversion rate")
	}

	exists, err := client.CheckUser(ctx, account)
	if err != nil {
		t.Fatalf("CheckUser: %v", err)
	}
	if !exists {
		t.Errorf("CheckUser(%s) = false for the credential account", account)
	}
}
