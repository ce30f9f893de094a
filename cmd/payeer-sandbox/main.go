// File: cmd/payeer-sandbox/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"payeer-client/internal/config"
	"payeer-client/internal/logging"
	"payeer-client/internal/metrics"
	"payeer-client/payeer/payeertest"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log, cfg.Runtime.Dev)

	metrics.MustRegister()

	// ---- Fake API ----
	opts := []payeertest.Option{
		payeertest.WithObserver(metrics.ObserveRequest),
	}
	if cfg.Sandbox.Account != "" {
		opts = append(opts, payeertest.WithCredentials(cfg.Sandbox.Account, cfg.Sandbox.APIID, cfg.Sandbox.APISecret))
	}
	for cur, amount := range cfg.Sandbox.Balances {
		d, err := decimal.NewFromString(amount)
		if err != nil {
			log.Fatal().Err(err).Str("currency", cur).Msg("bad sandbox balance in config")
		}
		opts = append(opts, payeertest.WithBalance(cur, d))
	}
	for _, u := range cfg.Sandbox.Users {
		opts = append(opts, payeertest.WithUser(u))
	}
	fake := payeertest.New(opts...)

	// ---- HTTP server ----
	mux := http.NewServeMux()
	mux.Handle(payeertest.APIPath, fake)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Sandbox.Port),
		Handler: requestLogger(log, mux),
	}
	go func() {
		log.Info().Str("addr", server.Addr).Str("api_path", payeertest.APIPath).Msg("sandbox listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// requestLogger logs every request at debug level with its duration.
func requestLogger(log *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
