package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/api"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/cache"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/challenge"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/checkout"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/config"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/metrics"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/orders"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/payments"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("checkout starting...")

	cartPath := flag.String("cart", "cart.json", "path to the cart snapshot JSON")
	name := flag.String("name", "", "shipping: full name")
	address := flag.String("address", "", "shipping: street address")
	city := flag.String("city", "", "shipping: city")
	postal := flag.String("postal", "", "shipping: postal code")
	country := flag.String("country", "ES", "shipping: ISO 3166-1 alpha-2 country")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Every collaborator is constructed here; a missing one is a startup
	// error, never a crash inside a checkout attempt.
	client, err := api.NewClient(cfg.API.BaseURL, api.StaticToken(cfg.API.AuthToken), cfg.API.RequestTimeout)
	if err != nil {
		log.Fatalf("Failed to build API client: %v", err)
	}

	var configCache cache.ConfigCache
	if cfg.Cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		defer rdb.Close()
		configCache = cache.NewRedisCache(rdb, cfg.Cache.TTL)
		log.Printf("Using redis provider-config cache at %s", cfg.Cache.RedisAddr)
	} else {
		configCache = cache.NewMemoryCache(cfg.Cache.TTL)
	}

	broker, err := payments.NewBroker(client, configCache)
	if err != nil {
		log.Fatalf("Failed to build payment broker: %v", err)
	}

	listener, err := challenge.NewReturnListener(cfg.Provider.ReturnListenAddr)
	if err != nil {
		log.Fatalf("Failed to build challenge listener: %v", err)
	}
	if err := listener.Start(); err != nil {
		log.Fatalf("Failed to start challenge listener: %v", err)
	}
	defer listener.Close()

	provider, err := payments.NewStripeProvider(cfg.Provider.BaseURL, broker, listener.ReturnURL(), cfg.API.RequestTimeout)
	if err != nil {
		log.Fatalf("Failed to build payment provider: %v", err)
	}

	tokenizer, err := payments.NewTokenizer(provider)
	if err != nil {
		log.Fatalf("Failed to build tokenizer: %v", err)
	}

	coordinator, err := payments.NewCoordinator(provider, broker, listener, cfg.Provider.ChallengeTimeout)
	if err != nil {
		log.Fatalf("Failed to build confirmation coordinator: %v", err)
	}
	coordinator.OnState = func(s domain.ConfirmationState) {
		log.Printf("confirmation: %s", s)
	}

	creator, err := orders.NewCreator(client, cfg.API.UserID)
	if err != nil {
		log.Fatalf("Failed to build order creator: %v", err)
	}

	var cm *metrics.CheckoutMetrics
	if cfg.Metrics.Enabled {
		cm = metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if errServe := http.ListenAndServe(getEnv("METRICS_ADDR", ":9464"), mux); errServe != nil {
				log.Printf("metrics server stopped: %v", errServe)
			}
		}()
	}

	machine, err := checkout.NewMachine(creator, broker, tokenizer, coordinator, cm)
	if err != nil {
		log.Fatalf("Failed to build checkout machine: %v", err)
	}

	go func() {
		for state := range machine.Updates() {
			switch state.Phase {
			case domain.PhaseFailed:
				log.Printf("checkout: %s kind=%s message=%q", state.Phase, state.ErrorKind, state.Message)
			case domain.PhaseCompleted:
				log.Printf("checkout: %s order=%d status=%s", state.Phase, state.Order.ID, state.Order.Status)
			default:
				log.Printf("checkout: %s", state.Phase)
			}
		}
	}()

	snapshot, err := loadSnapshot(*cartPath)
	if err != nil {
		log.Fatalf("Failed to load cart snapshot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		machine.Cancel()
	}()

	if err := machine.Begin(snapshot); err != nil {
		log.Fatalf("Could not begin checkout: %v", err)
	}

	shipping := &domain.ShippingDetails{
		FullName:   *name,
		Address:    *address,
		City:       *city,
		PostalCode: *postal,
		Country:    *country,
	}
	if err := machine.SubmitShipping(shipping); err != nil {
		log.Fatalf("Shipping details rejected: %v", err)
	}

	// Card fields come from the environment, never from flags, so raw card
	// data does not end up in shell history. Defaults are the provider's
	// public test card.
	card := &domain.CardDetails{
		Number:     getEnv("CARD_NUMBER", "4242424242424242"),
		Expiry:     getEnv("CARD_EXPIRY", "12/30"),
		CVV:        getEnv("CARD_CVV", "123"),
		HolderName: getEnv("CARD_HOLDER", shipping.FullName),
	}
	if err := machine.SubmitCard(card); err != nil {
		log.Fatalf("Card rejected: %v", err)
	}

	order, err := machine.ConfirmOrder(ctx)
	if err != nil {
		log.Fatalf("Checkout failed: %v", err)
	}
	if order == nil {
		log.Println("Checkout cancelled")
		return
	}
	log.Printf("Checkout complete: order %d is %s", order.ID, order.Status)
}

func loadSnapshot(path string) (*domain.CartSnapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot domain.CartSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
