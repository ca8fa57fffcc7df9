package main // Entry point package

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/desk-reservation/internal/config"
	"github.com/iliyamo/desk-reservation/internal/database"
	"github.com/iliyamo/desk-reservation/internal/handler"
	"github.com/iliyamo/desk-reservation/internal/middleware"
	"github.com/iliyamo/desk-reservation/internal/queue"
	"github.com/iliyamo/desk-reservation/internal/realtime"
	"github.com/iliyamo/desk-reservation/internal/repository"
	"github.com/iliyamo/desk-reservation/internal/reservation"
	"github.com/iliyamo/desk-reservation/internal/router"
)

// defaultDesks is the seed floor plan: two rows of six desks rendered on
// a percent-based map.  Seeding is idempotent, so existing desks keep
// any edits an admin has made.
func defaultDesks() []repository.DeskDefinition {
	defs := make([]repository.DeskDefinition, 0, 12)
	for i := 0; i < 12; i++ {
		x := int32(10 + (i%6)*15)
		y := int32(7)
		if i >= 6 {
			y = 28
		}
		defs = append(defs, repository.DeskDefinition{
			ID:   fmt.Sprintf("desk-%d", i+1),
			Name: fmt.Sprintf("Desk %d", i+1),
			PosX: x,
			PosY: y,
		})
	}
	return defs
}

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := database.Migrate(db, "migrations", cfg.DBName); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable; features degrade
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and layout cache disabled")
	}

	deskRepo := repository.NewDeskRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if created, err := deskRepo.EnsureDefaults(ctx, defaultDesks()); err != nil {
		log.Fatalf("seed desks: %v", err)
	} else if created > 0 {
		log.Printf("seeded %d desk(s)", created)
	}

	hub := realtime.NewHub()
	coord := reservation.NewCoordinator(db, deskRepo, bookingRepo, hub, cfg.HoldTTL)

	// Background workers: the hold sweeper and the booking log consumer.
	go reservation.RunSweeper(ctx, coord, cfg.SweepInterval)
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	deskHandler := handler.NewDeskHandler(coord, deskRepo)
	holdHandler := handler.NewHoldHandler(coord)
	bookingHandler := handler.NewBookingHandler(coord)
	streamHandler := handler.NewStreamHandler(hub)
	adminHandler := handler.NewAdminHandler(coord, deskRepo)
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)

	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e, deskHandler, cacheMW)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterDesks(e, deskHandler, holdHandler, bookingHandler, streamHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
