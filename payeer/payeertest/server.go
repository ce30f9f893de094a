// File: payeer/payeertest/server.go

// Package payeertest provides an in-memory fake of the Payeer wallet API for
// tests and local development. The fake verifies credentials, keeps balances
// and a transaction history, and lets callers inject failures and count the
// requests it receives. Point a client at it by swapping the base URL.
package payeertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// APIPath is the request path of the production endpoint, kept identical so
// a client only needs its base URL swapped.
const APIPath = "/ajax/api/api.php"

// Credentials a fresh server accepts.
const (
	DefaultAccount   = "P1000000"
	DefaultAPIID     = "1"
	DefaultAPISecret = "sandbox"
)

// TimeLayout is the format the history from and to filters are parsed with.
const TimeLayout = "2006-01-02 15:04:05"

const maxHistoryCount = 1000

// HistoryEntry is one simulated wallet transaction.
type HistoryEntry struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Sum       decimal.Decimal `json:"sum"`
	CurIn     string          `json:"curIn"`
	CurOut    string          `json:"curOut"`
	To        string          `json:"to,omitempty"`
	PaySystem string          `json:"ps,omitempty"`
	Comment   string          `json:"comment,omitempty"`
	Protected bool            `json:"protected,omitempty"`
	CreatedAt time.Time       `json:"date"`
}

// Observer receives one record per handled API request. status is "ok" or
// "error".
type Observer func(action, status string, elapsed time.Duration)

// Option configures a Server at construction time.
type Option func(*Server)

// WithCredentials replaces the credential triple the server accepts.
func WithCredentials(account, apiID, apiSecret string) Option {
	return func(s *Server) {
		s.account, s.apiID, s.apiSecret = account, apiID, apiSecret
	}
}

// WithBalance seeds the wallet balance for a currency.
func WithBalance(currency string, amount decimal.Decimal) Option {
	return func(s *Server) { s.balances[strings.ToUpper(currency)] = amount }
}

// WithUser registers an account checkUser reports as existing. The server's
// own account is always registered.
func WithUser(account string) Option {
	return func(s *Server) { s.users[account] = true }
}

// WithRate overrides one conversion rate. direction is "N" for deposit and
// "Y" for withdrawal, pair is like "USD/RUB".
func WithRate(direction, pair, rate string) Option {
	return func(s *Server) { s.rates[direction][pair] = rate }
}

// WithPaySystem adds a payout destination accepted by initOutput and output.
func WithPaySystem(id, name string) Option {
	return func(s *Server) { s.paySystems[id] = name }
}

// WithShopOrder seeds a merchant transaction for shopOrderInfo lookups.
func WithShopOrder(shopID, orderID string, fields map[string]any) Option {
	return func(s *Server) { s.orders[shopID+"/"+orderID] = fields }
}

// WithObserver wires a per-request callback, typically for metrics.
func WithObserver(fn Observer) Option {
	return func(s *Server) { s.observer = fn }
}

// Server is the fake API. It implements http.Handler and is safe for
// concurrent use.
type Server struct {
	router *chi.Mux

	mu         sync.Mutex
	account    string
	apiID      string
	apiSecret  string
	balances   map[string]decimal.Decimal
	users      map[string]bool
	rates      map[string]map[string]string
	paySystems map[string]string
	orders     map[string]map[string]any
	history    []HistoryEntry
	failNext   map[string][]json.RawMessage
	calls      map[string]int
	total      int

	observer Observer
	now      func() time.Time
}

// New builds a fake accepting the default credentials, with built-in rate
// tables and one payout system. Balances, users and orders are seeded through
// options.
func New(opts ...Option) *Server {
	s := &Server{
		account:   DefaultAccount,
		apiID:     DefaultAPIID,
		apiSecret: DefaultAPISecret,
		balances:  map[string]decimal.Decimal{},
		users:     map[string]bool{},
		rates: map[string]map[string]string{
			"N": {"USD/RUB": "92.50", "EUR/RUB": "99.80", "EUR/USD": "1.08"},
			"Y": {"USD/RUB": "90.10", "EUR/RUB": "97.30", "EUR/USD": "1.06"},
		},
		paySystems: map[string]string{"1136053": "Payeer"},
		orders:     map[string]map[string]any{},
		failNext:   map[string][]json.RawMessage{},
		calls:      map[string]int{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.users[s.account] = true

	r := chi.NewRouter()
	r.Post(APIPath, s.handleAPI)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Calls returns how many API requests the server has received, the accepted
// and the rejected both.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// CallsFor returns how many received requests carried the given action.
func (s *Server) CallsFor(action string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[action]
}

// Balance returns the current balance for a currency.
func (s *Server) Balance(currency string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[strings.ToUpper(currency)]
}

// FailNext arranges for the next request carrying the given action to fail
// with the supplied errors payload. Repeated calls queue up, one per request.
func (s *Server) FailNext(action string, errorsPayload any) {
	raw, err := json.Marshal(errorsPayload)
	if err != nil {
		panic(fmt.Sprintf("payeertest: marshal errors payload: %v", err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[action] = append(s.failNext[action], raw)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	action := r.PostFormValue("action")

	s.mu.Lock()
	s.total++
	s.calls[action]++
	s.mu.Unlock()

	status := "ok"
	defer func() {
		if s.observer != nil {
			s.observer(action, status, time.Since(start))
		}
	}()

	if !s.authorized(r) {
		status = "error"
		writeJSON(w, map[string]any{"auth_error": "1", "errors": []string{"invalidCredentials"}})
		return
	}
	if raw := s.takeFailure(action); raw != nil {
		status = "error"
		writeJSON(w, map[string]any{"errors": raw})
		return
	}

	var (
		fields map[string]any
		errs   []string
	)
	switch action {
	case "balance":
		fields = s.doBalance()
	case "checkUser":
		errs = s.doCheckUser(r.PostFormValue("user"))
	case "getExchangeRate":
		fields = s.doRates(r.PostFormValue("output"))
	case "getPaySystems":
		fields = s.doPaySystems()
	case "historyInfo":
		fields, errs = s.doHistoryInfo(r.PostFormValue("historyId"))
	case "shopOrderInfo":
		fields, errs = s.doShopOrderInfo(r.PostFormValue("shopId"), r.PostFormValue("orderId"))
	case "transfer":
		fields, errs = s.doTransfer(r)
	case "initOutput":
		fields, errs = s.doInitOutput(r)
	case "output":
		fields, errs = s.doOutput(r)
	case "history":
		fields = s.doHistory(r)
	default:
		errs = []string{"unknownAction"}
	}

	if errs != nil {
		status = "error"
		writeJSON(w, map[string]any{"errors": errs})
		return
	}
	body := map[string]any{"auth_error": "0", "errors": []any{}}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, body)
}

func (s *Server) authorized(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.PostFormValue("account") == s.account &&
		r.PostFormValue("apiId") == s.apiID &&
		r.PostFormValue("apiPass") == s.apiSecret
}

func (s *Server) takeFailure(action string) json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.failNext[action]
	if len(queue) == 0 {
		return nil
	}
	raw := queue[0]
	s.failNext[action] = queue[1:]
	return raw
}

func (s *Server) doBalance() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	balances := map[string]any{}
	for cur, amount := range s.balances {
		balances[cur] = map[string]string{
			"total":     amount.StringFixed(2),
			"available": amount.StringFixed(2),
			"hold":      "0.00",
		}
	}
	return map[string]any{"balance": balances}
}

func (s *Server) doCheckUser(user string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.users[user] {
		return []string{"accountNotFound"}
	}
	return nil
}

func (s *Server) doRates(direction string) map[string]any {
	if direction != "Y" {
		direction = "N"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rates := map[string]any{}
	for pair, rate := range s.rates[direction] {
		rates[pair] = rate
	}
	return map[string]any{"rate": rates}
}

func (s *Server) doPaySystems() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := map[string]any{}
	for id, name := range s.paySystems {
		list[id] = map[string]any{
			"name":   name,
			"curIn":  []string{"USD", "EUR", "RUB"},
			"curOut": []string{"USD", "EUR", "RUB"},
		}
	}
	return map[string]any{"list": list}
}

func (s *Server) doHistoryInfo(id string) (map[string]any, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		if s.history[i].ID == id {
			return map[string]any{"info": s.history[i]}, nil
		}
	}
	return nil, []string{"historyNotFound"}
}

func (s *Server) doShopOrderInfo(shopID, orderID string) (map[string]any, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[shopID+"/"+orderID]
	if !ok {
		return nil, []string{"orderNotFound"}
	}
	fields := map[string]any{}
	for k, v := range order {
		fields[k] = v
	}
	return fields, nil
}

func (s *Server) doTransfer(r *http.Request) (map[string]any, []string) {
	sum, err := decimal.NewFromString(r.PostFormValue("sum"))
	if err != nil || !sum.IsPositive() {
		return nil, []string{"invalidSum"}
	}
	to := r.PostFormValue("to")
	if to == "" {
		return nil, []string{"accountNotFound"}
	}
	curIn := currencyOr(r.PostFormValue("curIn"))
	curOut := currencyOr(r.PostFormValue("curOut"))

	s.mu.Lock()
	defer s.mu.Unlock()
	balance := s.balances[curIn]
	if balance.LessThan(sum) {
		return nil, []string{"insufficientFunds"}
	}
	s.balances[curIn] = balance.Sub(sum)
	entry := HistoryEntry{
		ID:        ulid.Make().String(),
		Type:      "outgoing",
		Sum:       sum,
		CurIn:     curIn,
		CurOut:    curOut,
		To:        to,
		Comment:   r.PostFormValue("comment"),
		Protected: r.PostFormValue("protect") == "Y",
		CreatedAt: s.now(),
	}
	s.history = append(s.history, entry)
	return map[string]any{"success": true, "historyId": entry.ID}, nil
}

type outputRequest struct {
	ps      string
	account string
	sumIn   decimal.Decimal
	curIn   string
	curOut  string
}

func parseOutputRequest(r *http.Request) (outputRequest, []string) {
	var req outputRequest
	req.ps = r.PostFormValue("ps")
	req.account = r.PostFormValue("param_ACCOUNT_NUMBER")
	sumIn, err := decimal.NewFromString(r.PostFormValue("sumIn"))
	if err != nil || !sumIn.IsPositive() {
		return req, []string{"invalidSum"}
	}
	req.sumIn = sumIn
	req.curIn = currencyOr(r.PostFormValue("curIn"))
	req.curOut = currencyOr(r.PostFormValue("curOut"))
	if req.account == "" {
		return req, []string{"missingAccountNumber"}
	}
	return req, nil
}

func (s *Server) checkOutputLocked(req outputRequest) []string {
	if _, ok := s.paySystems[req.ps]; !ok {
		return []string{"invalidPaySystem"}
	}
	if s.balances[req.curIn].LessThan(req.sumIn) {
		return []string{"insufficientFunds"}
	}
	return nil
}

func (s *Server) doInitOutput(r *http.Request) (map[string]any, []string) {
	req, errs := parseOutputRequest(r)
	if errs != nil {
		return nil, errs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if errs := s.checkOutputLocked(req); errs != nil {
		return nil, errs
	}
	// The fake charges no payout fee, so sumOut equals sumIn.
	return map[string]any{"outputParams": map[string]string{
		"sumIn":  req.sumIn.StringFixed(2),
		"sumOut": req.sumIn.StringFixed(2),
	}}, nil
}

func (s *Server) doOutput(r *http.Request) (map[string]any, []string) {
	req, errs := parseOutputRequest(r)
	if errs != nil {
		return nil, errs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if errs := s.checkOutputLocked(req); errs != nil {
		return nil, errs
	}
	s.balances[req.curIn] = s.balances[req.curIn].Sub(req.sumIn)
	entry := HistoryEntry{
		ID:        ulid.Make().String(),
		Type:      "outgoing",
		Sum:       req.sumIn,
		CurIn:     req.curIn,
		CurOut:    req.curOut,
		To:        req.account,
		PaySystem: req.ps,
		CreatedAt: s.now(),
	}
	s.history = append(s.history, entry)
	return map[string]any{"historyId": entry.ID, "sumOut": req.sumIn.StringFixed(2)}, nil
}

func (s *Server) doHistory(r *http.Request) map[string]any {
	s.mu.Lock()
	entries := make([]HistoryEntry, len(s.history))
	copy(entries, s.history)
	s.mu.Unlock()

	if t := r.PostFormValue("type"); t != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Type == t {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if from, err := time.Parse(TimeLayout, r.PostFormValue("from")); err == nil {
		filtered := entries[:0]
		for _, e := range entries {
			if !e.CreatedAt.Before(from) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if to, err := time.Parse(TimeLayout, r.PostFormValue("to")); err == nil {
		filtered := entries[:0]
		for _, e := range entries {
			if !e.CreatedAt.After(to) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	// ULIDs embed their creation time, so id order is time order. Newest
	// first unless asc is requested.
	asc := r.PostFormValue("sort") == "asc"
	sort.Slice(entries, func(i, j int) bool {
		if asc {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].ID > entries[j].ID
	})

	if appendID := r.PostFormValue("append"); appendID != "" {
		after := []HistoryEntry{}
		for i, e := range entries {
			if e.ID == appendID {
				after = entries[i+1:]
				break
			}
		}
		entries = after
	}

	count := maxHistoryCount
	if c := formInt(r, "count"); c > 0 && c < count {
		count = c
	}
	if len(entries) > count {
		entries = entries[:count]
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return map[string]any{"history": entries}
}

func currencyOr(cur string) string {
	if cur == "" {
		return "USD"
	}
	return strings.ToUpper(cur)
}

func formInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.PostFormValue(key))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
