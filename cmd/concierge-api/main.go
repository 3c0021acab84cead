// README: Entry point; loads config, wires services and starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"concierge/internal/ai"
	"concierge/internal/config"
	httptransport "concierge/internal/http"
	"concierge/internal/http/handlers"
	"concierge/internal/infra"
	"concierge/internal/maps"
	"concierge/internal/modules/location"
	"concierge/internal/modules/ride"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer gemini.Close()

	var fallback location.PlacesFallback
	if cfg.Maps.APIKey != "" {
		placesSvc, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		fallback = placesSvc
	}

	locationStore := location.NewStore(dbPool, redisClient)
	locationSvc := location.NewService(locationStore, fallback, cfg.Hotel.Address)

	rideStore := ride.NewStore(dbPool, redisClient)
	rideSvc := ride.NewService(rideStore)

	voiceHandler := handlers.NewVoiceHandler(handlers.VoiceHandlerDeps{
		Rides:        rideSvc,
		Catalog:      locationSvc,
		Extractor:    ai.Extractor{Provider: gemini},
		Matcher:      location.Matcher{Service: locationSvc},
		MaxRetry:     cfg.Dialogue.MaxRetry,
		ConfirmGrace: time.Duration(cfg.Dialogue.ConfirmGraceSeconds) * time.Second,
		SessionTTL:   time.Duration(cfg.Dialogue.SessionTTLSeconds) * time.Second,
	})
	go voiceHandler.Janitor(ctx, time.Minute)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Voice:    voiceHandler,
		Location: locationSvc,
		Ride:     rideSvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
