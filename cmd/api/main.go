package main

import (
	"context"
	"log"

	"parcel-depot/internal/core/config"
	"parcel-depot/internal/core/logger"
	"parcel-depot/internal/core/server"
	"parcel-depot/internal/core/store"
	intakehandler "parcel-depot/internal/features/intake/handler"
	intakeservice "parcel-depot/internal/features/intake/service"
	parceladapter "parcel-depot/internal/features/parcels/adapters"
	parcelhandler "parcel-depot/internal/features/parcels/handler"
	"parcel-depot/internal/features/parcels/ports"
	parcelservice "parcel-depot/internal/features/parcels/service"
	sortinghandler "parcel-depot/internal/features/sorting/handler"
	sortingservice "parcel-depot/internal/features/sorting/service"
	weighinghandler "parcel-depot/internal/features/weighing/handler"
	weighingservice "parcel-depot/internal/features/weighing/service"

	"go.uber.org/zap"
)

// @title Parcel Depot API
// @version 1.0
// @description Parcel intake, weight reconciliation, sorting and billing-adjustment API.
// @contact.name API Support
// @contact.email support@parceldepot.io
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Initialize the document store and verify connectivity.
	docStore, err := store.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		l.Fatal("Failed to create document store", zap.Error(err))
	}
	defer docStore.Close()

	if err := docStore.Ping(context.Background()); err != nil {
		l.Fatal("Document store unreachable", zap.Error(err))
	}
	l.Info("Document store connection verified")

	// Repositories over the document store.
	parcelRepo := parceladapter.NewRedisParcelRepository(docStore)
	intentRepo := parceladapter.NewRedisPaymentIntentRepository(docStore)

	// External payment collaborator.
	var checkout ports.CheckoutProvider = parceladapter.NoopCheckoutAdapter{}
	if cfg.Checkout.URL != "" {
		checkout = parceladapter.NewHTTPCheckoutAdapter(cfg.Checkout)
		l.Info("Checkout collaborator configured", zap.String("url", cfg.Checkout.URL))
	}

	// Services & handlers.
	parcelSvc := parcelservice.NewParcelService(parcelRepo)
	parcelHdl := parcelhandler.NewParcelHandler(parcelSvc)

	weighingSvc := weighingservice.NewWeighingService(parcelRepo, intentRepo, checkout, cfg.Depot)
	weighingHdl := weighinghandler.NewWeighingHandler(weighingSvc)

	sortingSvc := sortingservice.NewSortingService(parcelRepo)
	sortingHdl := sortinghandler.NewSortingHandler(sortingSvc)

	resolver := intakeservice.NewResolver(parcelRepo)
	intakeHdl := intakehandler.NewIntakeHandler(resolver)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Post("/sorting/auto-sort", sortingHdl.AutoSort)
	srv.App.Post("/sorting/batch-sort", sortingHdl.BatchSort)
	srv.App.Get("/sorting/stats", sortingHdl.Stats)

	srv.App.Post("/logistic/qr-codes/validate", intakeHdl.ValidateQR)
	srv.App.Post("/logistic/parcels", parcelHdl.Register)
	srv.App.Get("/logistic/parcels/:id", parcelHdl.Get)
	srv.App.Get("/logistic/parcels/:id/history", parcelHdl.History)
	srv.App.Post("/logistic/parcels/:id/arrival-scan", intakeHdl.ArrivalScan)
	srv.App.Post("/logistic/parcels/:id/weigh", weighingHdl.Weigh)
	srv.App.Post("/logistic/parcels/:id/special-case", parcelHdl.DeclareSpecialCase)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
