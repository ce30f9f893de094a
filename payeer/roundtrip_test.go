//go:build !integration

package payeer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"payeer-client/payeer"
	"payeer-client/payeer/payeertest"
)

// newFakeEnv wires a client to an in-process fake API over real HTTP.
func newFakeEnv(t *testing.T, opts ...payeertest.Option) (*payeer.Client, *payeertest.Server) {
	t.Helper()
	fake := payeertest.New(opts...)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := payeer.New(payeer.Config{
		Account:   payeertest.DefaultAccount,
		APIID:     payeertest.DefaultAPIID,
		APISecret: payeertest.DefaultAPISecret,
		BaseURL:   srv.URL + payeertest.APIPath,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, fake
}

func TestRoundTrip_TransferDebitsBalance(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeEnv(t, payeertest.WithBalance("USD", decimal.RequireFromString("100")))

	env, err := client.Transfer(ctx, payeer.TransferOptions{
		Sum: decimal.RequireFromString("40"),
		To:  "P2000000",
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if want := decimal.RequireFromString("60"); !fake.Balance("USD").Equal(want) {
		t.Errorf("balance = %s, want %s", fake.Balance("USD"), want)
	}

	var historyID string
	if err := json.Unmarshal(env["historyId"], &historyID); err != nil {
		t.Fatalf("decode historyId: %v", err)
	}
	info, err := client.GetHistoryInfo(ctx, historyID)
	if err != nil {
		t.Fatalf("GetHistoryInfo: %v", err)
	}
	var entry payeertest.HistoryEntry
	if err := json.Unmarshal(info, &entry); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if entry.To != "P2000000" || entry.Type != "outgoing" {
		t.Errorf("unexpected history entry: %+v", entry)
	}
}

func TestRoundTrip_TransferInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeEnv(t, payeertest.WithBalance("USD", decimal.RequireFromString("10")))

	_, err := client.Transfer(ctx, payeer.TransferOptions{
		Sum: decimal.RequireFromString("40"),
		To:  "P2000000",
	})
	var apiErr *payeer.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *payeer.APIError, got %v", err)
	}
	if want := decimal.RequireFromString("10"); !fake.Balance("USD").Equal(want) {
		t.Errorf("a rejected transfer must not move funds, balance = %s", fake.Balance("USD"))
	}
}

func TestRoundTrip_InvalidRecipientNeverReachesServer(t *testing.T) {
	client, fake := newFakeEnv(t)

	_, err := client.Transfer(context.Background(), payeer.TransferOptions{
		Sum: decimal.RequireFromString("1"),
		To:  "not-an-account",
	})
	var invalid *payeer.InvalidAccountError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *payeer.InvalidAccountError, got %v", err)
	}
	if fake.Calls() != 0 {
		t.Errorf("server saw %d calls, want 0", fake.Calls())
	}
}

func TestRoundTrip_CheckUser(t *testing.T) {
	ctx := context.Background()
	client, _ := newFakeEnv(t, payeertest.WithUser("P2000000"))

	for user, want := range map[string]bool{
		payeertest.DefaultAccount: true,
		"P2000000":                true,
		"P8888888":                false,
	} {
		got, err := client.CheckUser(ctx, user)
		if err != nil {
			t.Fatalf("CheckUser(%s): %v", user, err)
		}
		if got != want {
			t.Errorf("CheckUser(%s) = %v, want %v", user, got, want)
		}
	}
}

func TestRoundTrip_WrongCredentials(t *testing.T) {
	fake := payeertest.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := payeer.New(payeer.Config{
		Account:   payeertest.DefaultAccount,
		APIID:     payeertest.DefaultAPIID,
		APISecret: "wrong",
		BaseURL:   srv.URL + payeertest.APIPath,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.GetBalance(context.Background())
	var apiErr *payeer.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *payeer.APIError for bad credentials, got %v", err)
	}
}

func TestRoundTrip_ExchangeRates(t *testing.T) {
	ctx := context.Background()
	client, _ := newFakeEnv(t)

	deposit, err := client.GetExchangeRate(ctx, payeer.RateDeposit)
	if err != nil {
		t.Fatalf("GetExchangeRate(deposit): %v", err)
	}
	withdrawal, err := client.GetExchangeRate(ctx, payeer.RateWithdrawal)
	if err != nil {
		t.Fatalf("GetExchangeRate(withdrawal): %v", err)
	}
	if len(deposit) == 0 || len(withdrawal) == 0 {
		t.Fatal("expected both rate tables to be populated")
	}
	if deposit["USD/RUB"].Equal(withdrawal["USD/RUB"]) {
		t.Error("deposit and withdrawal tables should differ on USD/RUB")
	}
}

func TestRoundTrip_Payout(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeEnv(t, payeertest.WithBalance("USD", decimal.RequireFromString("50")))

	opts := payeer.OutputOptions{
		PaySystem: "1136053",
		Account:   "410011234567890",
		SumIn:     decimal.RequireFromString("20"),
	}

	ok, err := client.CheckOutput(ctx, opts)
	if err != nil {
		t.Fatalf("CheckOutput: %v", err)
	}
	if !ok {
		t.Fatal("CheckOutput = false, want true")
	}
	// A dry run must not move funds.
	if want := decimal.RequireFromString("50"); !fake.Balance("USD").Equal(want) {
		t.Errorf("balance after dry run = %s, want %s", fake.Balance("USD"), want)
	}

	if _, err := client.Output(ctx, opts); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if want := decimal.RequireFromString("30"); !fake.Balance("USD").Equal(want) {
		t.Errorf("balance after payout = %s, want %s", fake.Balance("USD"), want)
	}

	ok, err = client.CheckOutput(ctx, payeer.OutputOptions{
		PaySystem: "unknown-ps",
		Account:   "410011234567890",
		SumIn:     decimal.RequireFromString("1"),
	})
	if err != nil {
		t.Fatalf("CheckOutput: %v", err)
	}
	if ok {
		t.Error("CheckOutput = true for an unknown pay system, want false")
	}
}

func TestRoundTrip_HistoryFilters(t *testing.T) {
	ctx := context.Background()
	client, _ := newFakeEnv(t, payeertest.WithBalance("USD", decimal.RequireFromString("100")))

	var ids []string
	for _, to := range []string{"P2000001", "P2000002", "P2000003"} {
		env, err := client.Transfer(ctx, payeer.TransferOptions{
			Sum: decimal.RequireFromString("5"),
			To:  to,
		})
		if err != nil {
			t.Fatalf("Transfer to %s: %v", to, err)
		}
		var id string
		if err := json.Unmarshal(env["historyId"], &id); err != nil {
			t.Fatalf("decode historyId: %v", err)
		}
		ids = append(ids, id)
	}

	listHistory := func(opts payeer.HistoryOptions) []payeertest.HistoryEntry {
		t.Helper()
		raw, err := client.History(ctx, opts)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		var entries []payeertest.HistoryEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			t.Fatalf("decode history: %v", err)
		}
		return entries
	}

	t.Run("newest first by default", func(t *testing.T) {
		entries := listHistory(payeer.HistoryOptions{})
		if len(entries) != 3 {
			t.Fatalf("len = %d, want 3", len(entries))
		}
		if entries[0].ID != ids[2] || entries[2].ID != ids[0] {
			t.Errorf("unexpected order: %s, %s, %s", entries[0].ID, entries[1].ID, entries[2].ID)
		}
	})

	t.Run("count caps the listing", func(t *testing.T) {
		entries := listHistory(payeer.HistoryOptions{Count: 2})
		if len(entries) != 2 {
			t.Errorf("len = %d, want 2", len(entries))
		}
	})

	t.Run("append continues after an id", func(t *testing.T) {
		entries := listHistory(payeer.HistoryOptions{Sort: payeer.HistorySortAsc, Append: ids[0]})
		if len(entries) != 2 {
			t.Fatalf("len = %d, want 2", len(entries))
		}
		if entries[0].ID != ids[1] {
			t.Errorf("first entry = %s, want %s", entries[0].ID, ids[1])
		}
	})

	t.Run("type filter", func(t *testing.T) {
		if entries := listHistory(payeer.HistoryOptions{Type: payeer.HistoryIncoming}); len(entries) != 0 {
			t.Errorf("incoming entries = %d, want 0", len(entries))
		}
		if entries := listHistory(payeer.HistoryOptions{Type: payeer.HistoryOutgoing}); len(entries) != 3 {
			t.Errorf("outgoing entries = %d, want 3", len(entries))
		}
	})
}

func TestRoundTrip_InjectedFailure(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeEnv(t, payeertest.WithBalance("USD", decimal.RequireFromString("100")))

	fake.FailNext("balance", []string{"maintenance"})

	_, err := client.GetBalance(ctx)
	var apiErr *payeer.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected the injected *payeer.APIError, got %v", err)
	}
	if got := string(apiErr.Errors); got != `["maintenance"]` {
		t.Errorf("Errors = %s", got)
	}

	// The failure is one-shot.
	if _, err := client.GetBalance(ctx); err != nil {
		t.Fatalf("second GetBalance: %v", err)
	}
	if fake.CallsFor("balance") != 2 {
		t.Errorf("CallsFor(balance) = %d, want 2", fake.CallsFor("balance"))
	}
}
