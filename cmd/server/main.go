package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v76"

	"github.com/lackwerk/rental-service/internal/config"
	"github.com/lackwerk/rental-service/internal/database"
	"github.com/lackwerk/rental-service/internal/handler"
	"github.com/lackwerk/rental-service/internal/middleware"
	"github.com/lackwerk/rental-service/internal/queue"
	"github.com/lackwerk/rental-service/internal/repository"
	"github.com/lackwerk/rental-service/internal/router"
	"github.com/lackwerk/rental-service/internal/wizard"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if cfg.StripeSecretKey != "" {
		stripe.Key = cfg.StripeSecretKey
	}

	// Repositories
	vehicles := repository.NewVehicleRepo(db)
	bookings := repository.NewBookingRepo(db)
	customers := repository.NewCustomerRepo(db)
	addOns := repository.NewAddOnRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	reports := repository.NewDamageReportRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Booking wizard
	drafts := wizard.NewStore(time.Duration(cfg.DraftTTLMin) * time.Minute)
	machine := wizard.NewMachine(bookings, vehicles, customers, addOns)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(vehicles, bookings, addOns)
	wizardH := handler.NewWizardHandler(drafts, machine)
	paymentH := handler.NewPaymentHandler(bookings, cfg.StripeSecretKey)
	reportH := handler.NewDamageReportHandler(reports)
	admin := router.AdminHandlers{
		Bookings:  handler.NewAdminBookingHandler(bookings, vehicles, customers, addOns),
		Vehicles:  handler.NewAdminVehicleHandler(vehicles),
		Customers: handler.NewAdminCustomerHandler(customers),
		Invoices:  handler.NewAdminInvoiceHandler(invoices, bookings),
		Reports:   reportH,
	}

	// Redis backs the response cache and the rate limiter; both fall
	// back to no-ops when it is unreachable.
	rdb := config.NewRedisClient()
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(rateMW)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, reportH, cacheMW)
	router.RegisterWizard(e, wizardH, paymentH)
	router.RegisterAdmin(e, admin, cfg.JWTSecret)

	// Booking confirmations are consumed in the background and
	// appended to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
