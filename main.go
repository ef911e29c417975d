package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

func main() {
	log.SetPrefix("w-diet-api: ")

	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: loading config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("FATAL: database.url (DATABASE_URL) is not set")
	}

	pool, err := getDBPool(context.Background(), cfg.Database.URL)
	if err != nil {
		log.Fatalf("FATAL: connecting to database: %v", err)
	}
	defer pool.Close()

	h := newHandler(pool, cfg)

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	if cfg.Reminders.Enabled {
		sweep := &reminderSweep{db: pool, dashboard: h.dashboard, clock: matador.SystemClock{}, hour: cfg.Reminders.Hour}
		scheduler, err := sweep.Start(cfg.Reminders.Schedule)
		if err != nil {
			log.Fatalf("FATAL: invalid reminders.schedule %q: %v", cfg.Reminders.Schedule, err)
		}
		defer scheduler.Stop()
		log.Printf("Weight reminders scheduled (%s, from %02d:00 local)", cfg.Reminders.Schedule, cfg.Reminders.Hour)
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting.")
}
