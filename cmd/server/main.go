package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/config"
	"github.com/neofitness/gym-management/internal/cron"
	"github.com/neofitness/gym-management/internal/database"
	"github.com/neofitness/gym-management/internal/handler"
	"github.com/neofitness/gym-management/internal/logger"
	"github.com/neofitness/gym-management/internal/middleware"
	"github.com/neofitness/gym-management/internal/momo"
	"github.com/neofitness/gym-management/internal/queue"
	"github.com/neofitness/gym-management/internal/repository"
	"github.com/neofitness/gym-management/internal/router"
	"github.com/neofitness/gym-management/internal/service"
)

const activityLogPath = "logs/activity.log"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(db, cfg.DBName); err != nil {
			return err
		}
		zl.Info("migrations applied")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}
	events := service.NewAMQPPublisher(cfg.AMQP.URL, zl)

	// repositories
	tiers := repository.NewPricingRepo(db)
	packages := repository.NewPackageRepo(db)
	payments := repository.NewPaymentRepo(db)
	bookings := repository.NewBookingRepo(db)
	accounts := repository.NewAccountRepo(db)
	customers := repository.NewCustomerRepo(db)
	trainers := repository.NewTrainerRepo(db)
	catalog := repository.NewCatalogRepo(db)

	// services
	pricing := service.NewPricingService(tiers)
	ledger := service.NewLedger(db, tiers, packages, payments, customers, events, zl)
	scheduler := service.NewScheduler(db, bookings, packages, trainers, ledger, events, zl)
	accountSvc := service.NewAccountService(db, accounts, customers, trainers, cfg.JWTSecret, cfg.AccessTTL, cfg.BcryptCost)
	gateway := momo.NewClient(momo.Config{
		PartnerCode: cfg.Momo.PartnerCode,
		PartnerName: cfg.Momo.PartnerName,
		StoreID:     cfg.Momo.StoreID,
		AccessKey:   cfg.Momo.AccessKey,
		SecretKey:   cfg.Momo.SecretKey,
		Endpoint:    cfg.Momo.Endpoint,
		RedirectURL: cfg.Momo.RedirectURL,
		IPNURL:      cfg.Momo.IPNURL,
		Timeout:     cfg.Momo.Timeout,
	})
	paymentSvc := service.NewPaymentService(db, pricing, tiers, payments, customers, ledger, gateway, cfg.Momo.PartnerCode, zl)

	sweeper, err := cron.Start(cfg.SweepSchedule, cron.NewPackageLifecycle(packages, zl), zl)
	if err != nil {
		return err
	}
	defer func() { <-sweeper.Stop().Done() }()

	activity, err := logger.NewFile(activityLogPath)
	if err != nil {
		return err
	}
	defer func() { _ = activity.Sync() }()
	go func() {
		if err := queue.NewConsumer(cfg.AMQP.URL, zl, activity).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zl.Error("event consumer stopped", zap.Error(err))
		}
	}()

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(zl))

	cache := middleware.NewResponseCache(cfg.Cache, rdb, zl)
	limit := middleware.RateLimit(cfg.RateLimit, rdb, zl)

	pricingH := handler.NewPricingHandler(pricing, ledger, accountSvc, cache, zl)
	paymentH := handler.NewPaymentHandler(paymentSvc, accountSvc, zl)
	packageH := handler.NewPackageHandler(ledger, accountSvc, zl)
	bookingH := handler.NewBookingHandler(scheduler, accountSvc, zl)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(accountSvc, zl), cfg.JWTSecret)
	router.RegisterPublic(e, pricingH, handler.NewCatalogHandler(catalog, zl), paymentH, cache)
	router.RegisterCustomer(e, router.CustomerHandlers{Pricing: pricingH, Payment: paymentH, Package: packageH, Booking: bookingH}, cfg.JWTSecret, limit)
	router.RegisterAdmin(e, router.AdminHandlers{Pricing: pricingH, Payment: paymentH, Package: packageH, Booking: bookingH}, cfg.JWTSecret)
	router.RegisterTrainer(e, bookingH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
