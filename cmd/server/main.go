package main // Entry point package

import (
	"log"  // Logging library
	"time" // Pool lifetime conversion

	"github.com/joho/godotenv"                // Loads .env files in development
	"github.com/labstack/echo/v4"             // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo built-in middleware

	"github.com/talbothotels/backoffice/internal/config"     // Internal config loader
	"github.com/talbothotels/backoffice/internal/database"   // MySQL connection pool
	"github.com/talbothotels/backoffice/internal/handler"    // HTTP handlers
	"github.com/talbothotels/backoffice/internal/queue"      // RabbitMQ session audit events
	"github.com/talbothotels/backoffice/internal/repository" // Data access layer
	"github.com/talbothotels/backoffice/internal/router"     // Internal router setup
	"github.com/talbothotels/backoffice/internal/service"    // Session and account logic
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeMin) * time.Minute,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it hotel reads are simply uncached.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	hotels := repository.NewHotelRepo(db)

	events := queue.NewPublisher()
	auth := service.NewAuthService(cfg, users, tokens, events)

	authHandler := handler.NewAuthHandler(cfg, auth, users)
	hotelHandler := handler.NewHotelHandler(hotels)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, authHandler, cfg.JWTSecret, users)
	router.RegisterHotels(e, hotelHandler, cfg.JWTSecret, users, cacheCfg, rdb)

	// Consume session audit events in the background; the consumer
	// reconnects on its own if the broker goes away.
	go func() {
		if err := queue.StartSessionAuditConsumer(); err != nil {
			log.Printf("session audit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
