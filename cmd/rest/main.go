package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"disaster-locator-bot/internal/bootstrap"
	"disaster-locator-bot/internal/config"
	"disaster-locator-bot/internal/server"
	"disaster-locator-bot/internal/tracer"
	"disaster-locator-bot/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Tracer (no-op unless OTEL_ENABLED=true)
	hostname, _ := os.Hostname()
	shutdownTracer := tracer.InitTracer("disaster-locator-bot", hostname)
	defer shutdownTracer(context.Background())

	// 2. Initialize Database (optional)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	go container.WebSocketHub.Run(ctx)

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("Failed to start dispatcher: %v", err)
	}
	if container.IntakeService != nil {
		if err := container.IntakeService.Start(ctx); err != nil {
			log.Printf("NATS intake disabled: %v", err)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		_ = srv.Shutdown(10 * time.Second)
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
	stop()
	container.ConsumerService.Wait()
}
