package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/turf45/courtbook/internal/adapter/consumer"
	"github.com/turf45/courtbook/internal/adapter/handler"
	"github.com/turf45/courtbook/internal/adapter/payment"
	"github.com/turf45/courtbook/internal/adapter/repository/postgres"
	"github.com/turf45/courtbook/internal/core/ports"
	"github.com/turf45/courtbook/internal/core/services"
	"github.com/turf45/courtbook/internal/platform/config"
	"github.com/turf45/courtbook/internal/platform/database"
	"github.com/turf45/courtbook/internal/platform/lock"
	"github.com/turf45/courtbook/internal/platform/logger"
	"github.com/turf45/courtbook/internal/platform/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
	zl.Info("server exiting")
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(database.Config{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		DBName:       cfg.DBName,
		SSLMode:      cfg.DBSSLMode,
		MaxOpenConns: cfg.DBMaxOpenConns,
	}, zl)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, zl); err != nil {
		return err
	}

	var (
		rdb    *redis.Client
		locker ports.Locker
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		locker = lock.NewRedisLocker(rdb)
		zl.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	} else {
		zl.Warn("REDIS_ADDR not set, background jobs are guarded per instance only")
	}

	var publisher interface {
		ports.EventPublisher
		Close() error
	} = mq.Discard{}
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			return err
		}
		publisher = pub
	} else {
		zl.Warn("RABBIT_URL not set, booking events are not published")
	}
	defer publisher.Close()

	hours, err := cfg.OperatingHours()
	if err != nil {
		return err
	}

	stationRepo := postgres.NewStationRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	bookingService := services.NewBookingService(stationRepo, customerRepo, bookingRepo, publisher, zl.Named("booking"),
		services.BookingOptions{StrictPrecheck: cfg.StrictPrecheck})
	slotService := services.NewSlotService(stationRepo, bookingRepo, hours)
	reconciler := services.NewReconciler(bookingRepo, gateway, publisher, zl.Named("reconciler"),
		services.ReconcilerConfig{PaymentExpiry: cfg.PaymentExpiry})
	scheduler := services.NewScheduler(reconciler, locker, zl.Named("scheduler"), services.SchedulerConfig{
		DedupSpec:     cfg.DedupSchedule,
		ReconcileSpec: cfg.ReconcileSchedule,
		Budget:        cfg.JobBudget,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var healthRedis redis.Cmdable
	if rdb != nil {
		healthRedis = rdb
	}

	router := handler.NewRouter(handler.Handlers{
		Booking:     handler.NewBookingHandler(bookingService, zl),
		Slot:        handler.NewSlotHandler(slotService, cfg.DefaultSlotMinutes, zl),
		Maintenance: handler.NewMaintenanceHandler(scheduler, reconciler, zl),
		Health:      handler.NewHealthHandler(db, healthRedis, zl),
	}, handler.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, zl.Named("http"))

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	var paymentConsumer *consumer.PaymentConsumer
	if cfg.RabbitURL != "" {
		cons, err := mq.NewConsumer(cfg.RabbitURL, cfg.PaymentExchange, cfg.PaymentQueue,
			[]string{consumer.KeyPaymentCaptured, consumer.KeyPaymentFailed})
		if err != nil {
			return err
		}
		defer cons.Close()
		paymentConsumer = consumer.NewPaymentConsumer(reconciler, cons, zl)
	}

	if err := scheduler.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if paymentConsumer != nil {
		g.Go(func() error {
			zl.Info("payment consumer started", zap.String("queue", cfg.PaymentQueue))
			return paymentConsumer.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.JobBudget+5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)

		// running jobs are allowed to finish within their budget
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			zl.Warn("background jobs still running at shutdown")
		}
		return err
	})

	return g.Wait()
}
