// File: cmd/payeerctl/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payeer-client/internal/config"
	"payeer-client/internal/logging"
	"payeer-client/payeer"
)

const usage = `usage: payeerctl [flags] <command> [command flags]

Flags must come before the command.

Commands:
  balance       wallet balances per currency
  check-user    whether an account exists
  rate          automatic conversion rates
  pay-systems   payment systems available for payouts
  history-info  details of one transaction
  shop-order    merchant transaction info
  transfer      move funds to another account
  check-output  dry-run a payout
  output        create a payout
  history       list wallet transactions

Flags:
  -config path  YAML config file (default "config.yaml")
  -dev          development mode
  -timeout d    request timeout (default 30s)
`

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log, cfg.Runtime.Dev)

	client, err := payeer.New(payeer.Config{
		Account:   cfg.API.Account,
		APIID:     cfg.API.APIID,
		APISecret: cfg.API.APISecret,
		BaseURL:   cfg.API.BaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("client setup")
	}

	ctx := logging.WithTraceID(context.Background(), uuid.NewString())
	ctx = logging.WithAccount(ctx, logging.Redact(cfg.API.Account, cfg.Runtime.Dev))
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	runLog := logging.With(ctx, log)
	defer logging.TraceDuration(runLog, "payeerctl."+cmd)()

	if err := run(ctx, client, cmd, args); err != nil {
		var apiErr *payeer.APIError
		if errors.As(err, &apiErr) {
			runLog.Error().RawJSON("api_errors", apiErr.Errors).Str("command", cmd).Msg("api rejected request")
		} else {
			runLog.Error().Err(err).Str("command", cmd).Msg("command failed")
		}
		os.Exit(1)
	}
	runLog.Debug().Str("command", cmd).Msg("done")
}

func run(ctx context.Context, client *payeer.Client, cmd string, args []string) error {
	switch cmd {
	case "balance":
		return runBalance(ctx, client)
	case "check-user":
		return runCheckUser(ctx, client, args)
	case "rate":
		return runRate(ctx, client, args)
	case "pay-systems":
		return runPaySystems(ctx, client)
	case "history-info":
		return runHistoryInfo(ctx, client, args)
	case "shop-order":
		return runShopOrder(ctx, client, args)
	case "transfer":
		return runTransfer(ctx, client, args)
	case "check-output":
		return runCheckOutput(ctx, client, args)
	case "output":
		return runOutput(ctx, client, args)
	case "history":
		return runHistory(ctx, client, args)
	default:
		return fmt.Errorf("unknown command %q (run payeerctl -h)", cmd)
	}
}

func runBalance(ctx context.Context, client *payeer.Client) error {
	raw, err := client.GetBalance(ctx)
	if err != nil {
		return err
	}
	return printRaw(raw)
}

func runCheckUser(ctx context.Context, client *payeer.Client, args []string) error {
	fs := flag.NewFlagSet("check-user", flag.ExitOnError)
	user := fs.String("user", "", "account number or email to check")
	fs.Parse(args)
	if *user == "" {
		return errors.New("check-user: -user is required")
	}
	exists, err := client.CheckUser(ctx, *user)
	if err != nil {
		return err
	}
	fmt.Println(exists)
	return nil
}

func runRate(ctx context.Context, client *payeer.Client, args []string) error {
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	withdrawal := fs.Bool("withdrawal", false, "withdrawal rates instead of deposit rates")
	fs.Parse(args)
	direction := payeer.RateDeposit
	if *withdrawal {
		direction = payeer.RateWithdrawal
	}
	rates, err := client.GetExchangeRate(ctx, direction)
	if err != nil {
		return err
	}
	return printValue(rates)
}

func runPaySystems(ctx context.Context, client *payeer.Client) error {
	raw, err := client.GetPaySystems(ctx)
	if err != nil {
		return err
	}
	return printRaw(raw)
}

func runHistoryInfo(ctx context.Context, client *payeer.Client, args []string) error {
	fs := flag.NewFlagSet("history-info", flag.ExitOnError)
	id := fs.String("id", "", "transaction history id")
	fs.Parse(args)
	if *id == "" {
		return errors.New("history-info: -id is required")
	}
	raw, err := client.GetHistoryInfo(ctx, *id)
	if err != nil {
		return err
	}
	return printRaw(raw)
}

func runShopOrder(ctx context.Context, client *payeer.Client, args []string) error {
	fs := flag.NewFlagSet("shop-order", flag.ExitOnError)
	shop := fs.String("shop", "", "merchant id")
	order := fs.String("order", "", "order id in the merchant's accounting")
	fs.Parse(args)
	if *shop == "" || *order == "" {
		return errors.New("shop-order: -shop and -order are required")
	}
	env, err := client.ShopOrderInfo(ctx, payeer.ShopOrderOptions{ShopID: *shop, OrderID: *order})
	if err != nil {
		return err
	}
	return printValue(env)
}

func runTransfer(ctx context.Context, client *payeer.Client, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	to := fs.String("to", "", "recipient wallet number or email")
	sum := fs.String("sum", "", "amount to withdraw from the wallet")
	curIn := fs.String("cur-in", "USD", "currency withdrawn")
	curOut := fs.String("cur-out", "USD", "currency received")
	comment := fs.String("comment", "", "transfer comment")
	protect := fs.Bool("protect", false, "enable transaction protection")
	protectPeriod := fs.Int("protect-period", 0, "protection period in days (1-30)")
	protectCode := fs.String("protect-code", "", "protection release code")
	fs.Parse(args)
	if *to == "" || *sum == "" {
		return errors.New("transfer: -to and -sum are required")
	}
	amount, err := decimal.NewFromString(*sum)
	if err != nil {
		return fmt.Errorf("transfer: bad -sum: %w", err)
	}
	env, err := client.Transfer(ctx, payeer.TransferOptions{
		Sum:           amount,
		To:            *to,
		CurIn:         payeer.Currency(*curIn),
		CurOut:        payeer.Currency(*curOut),
		Comment:       *comment,
		Protect:       *protect,
		ProtectPeriod: *protectPeriod,
		ProtectCode:   *protectCode,
	})
	if err != nil {
		return err
	}
	return printValue(env)
}

func parseOutputFlags(name string, args []string) (payeer.OutputOptions, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	ps := fs.String("ps", "", "payment system id (see pay-systems)")
	account := fs.String("account", "", "recipient account number in that system")
	sumIn := fs.String("sum-in", "", "amount to withdraw from the wallet")
	curIn := fs.String("cur-in", "USD", "currency withdrawn")
	curOut := fs.String("cur-out", "USD", "currency received")
	fs.Parse(args)
	if *ps == "" || *account == "" || *sumIn == "" {
		return payeer.OutputOptions{}, fmt.Errorf("%s: -ps, -account and -sum-in are required", name)
	}
	amount, err := decimal.NewFromString(*sumIn)
	if err != nil {
		return payeer.OutputOptions{}, fmt.Errorf("%s: bad -sum-in: %w", name, err)
	}
	return payeer.OutputOptions{
		PaySystem: *ps,
		Account:   *account,
		SumIn:     amount,
		CurIn:     payeer.Currency(*curIn),
		CurOut:    payeer.Currency(*curOut),
	}, nil
}

func runCheckOutput(ctx context.Context, client *payeer.Client, args []string) error {
	opts, err := parseOutputFlags("check-output", args)
	if err != nil {
		return err
	}
	ok, err := client.CheckOutput(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Println(ok)
	return nil
}

func runOutput(ctx context.Context, client *payeer.Client, args []string) error {
	opts, err := parseOutputFlags("output", args)
	if err != nil {
		return err
	}
	env, err := client.Output(ctx, opts)
	if err != nil {
		return err
	}
	return printValue(env)
}

func runHistory(ctx context.Context, client *payeer.Client, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	sortOrder := fs.String("sort", "", "asc or desc by date")
	count := fs.Int("count", 0, "max entries to return (up to 1000)")
	from := fs.String("from", "", `period start, "2006-01-02 15:04:05"`)
	to := fs.String("to", "", `period end, "2006-01-02 15:04:05"`)
	typ := fs.String("type", "", "incoming or outgoing")
	appendID := fs.String("append", "", "continue listing after this transaction id")
	var extra paramList
	fs.Var(&extra, "param", "extra filter as key=value (repeatable)")
	fs.Parse(args)
	raw, err := client.History(ctx, payeer.HistoryOptions{
		Sort:   payeer.HistorySort(*sortOrder),
		Count:  *count,
		From:   *from,
		To:     *to,
		Type:   payeer.HistoryType(*typ),
		Append: *appendID,
		Extra:  url.Values(extra),
	})
	if err != nil {
		return err
	}
	return printRaw(raw)
}

type paramList url.Values

func (p *paramList) String() string {
	return url.Values(*p).Encode()
}

func (p *paramList) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	if *p == nil {
		*p = paramList{}
	}
	url.Values(*p).Add(key, val)
	return nil
}

func printRaw(raw json.RawMessage) error {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	fmt.Println(out.String())
	return nil
}

func printValue(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
