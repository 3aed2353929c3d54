package main

import (
	"context"
	"log"

	"bizops-assistant-be/internal/bootstrap"
	"bizops-assistant-be/internal/config"
	"bizops-assistant-be/internal/server"
	"bizops-assistant-be/internal/tracer"
	"bizops-assistant-be/pkg/database"
)

func main() {
	// 0. Initialize tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load configuration
	cfg := config.Load()

	// 2. Initialize database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start background services
	if err := container.DocumentWorker.Run(context.Background()); err != nil {
		log.Panicf("Unable to start document worker: %v", err)
	}
	if container.BillingConsumerService != nil {
		go func() {
			log.Println("Background: Starting Billing Consumer...")
			if err := container.BillingConsumerService.Consume(); err != nil {
				log.Printf("Background Billing Consumer Error: %v", err)
			}
		}()
	}

	// 5. Run server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
