package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mauv0809/sales-dashboard/internal/cache"
	"github.com/mauv0809/sales-dashboard/internal/config"
	"github.com/mauv0809/sales-dashboard/internal/db"
	"github.com/mauv0809/sales-dashboard/internal/handlers"
	"github.com/mauv0809/sales-dashboard/internal/ingest"
	"github.com/mauv0809/sales-dashboard/internal/metrics"
	"github.com/mauv0809/sales-dashboard/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// Local Postgres copy of the orders table (optional when Supabase is set)
	var repo *db.Repository
	if cfg.DatabaseURL != "" {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Printf("Warning: Could not run migrations: %v", err)
		} else {
			log.Println("Migrations completed")
		}

		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
		} else {
			defer pool.Close()
			repo = db.NewRepository(pool, cfg.OrdersTable, cfg.Location)
			log.Println("Connected to database")
		}
	}

	// Supabase wins as the order source when configured
	var supabase *ingest.Client
	if cfg.SupabaseURL != "" {
		supabase = ingest.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.OrdersTable, cfg.Location,
			ingest.WithRateLimit(cfg.RateLimit))
		log.Printf("Reading orders from Supabase table %s", cfg.OrdersTable)
	}

	var source report.OrderSource
	switch {
	case supabase != nil:
		source = supabase
	case repo != nil:
		source = repo
		log.Printf("Reading orders from Postgres table %s", cfg.OrdersTable)
	default:
		log.Fatal("No order source: set SUPABASE_URL/SUPABASE_KEY or DATABASE_URL")
	}

	// Cache: Redis when reachable, in-process otherwise
	var orderCache cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "sales-dashboard:")
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Printf("Warning: Redis unavailable, using in-memory cache: %v", err)
			rc.Close()
		} else {
			defer rc.Close()
			orderCache = rc
			log.Printf("Using Redis cache at %s", cfg.RedisAddr)
		}
	}

	reg := metrics.NewRegistry()
	reports := report.NewService(source, orderCache, cfg.CacheTTL, cfg.Location, reg)

	// Setup Echo
	e := echo.New()
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.Printf("%d %s [%s]", v.Status, v.URI, v.RequestID)
			} else {
				log.Printf("%d %s [%s] - %v", v.Status, v.URI, v.RequestID, v.Error)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	h := handlers.New(reports, cfg.DefaultTopN)
	var store handlers.OrderStore
	if repo != nil {
		store = repo
	}
	var upstream report.OrderSource
	if supabase != nil {
		upstream = supabase
	}
	admin := handlers.NewAdminHandler(reports, upstream, store)

	// Static files
	e.Static("/assets", "assets")

	// Routes
	e.GET("/health", h.Health)
	e.GET("/", h.Index)
	e.GET("/api/overview", h.Overview)
	e.GET("/api/products/top", h.TopProducts)
	e.GET("/metrics", echo.WrapHandler(reg.Handler()))

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.POST("/cache/refresh", admin.RefreshCache)
	if admin.CanMirror() {
		adminGroup.POST("/ingest/orders", admin.MirrorOrders)
		adminGroup.GET("/ingest/status", admin.MirrorStatus)
		log.Println("Order mirror endpoints registered")
	}

	log.Printf("Starting server on :%s", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
