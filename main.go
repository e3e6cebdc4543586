// File: guruconnect/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guruconnect/config"
	"guruconnect/cron"
	"guruconnect/database"
	chatRepo "guruconnect/database/repository/chat"
	sessionRepo "guruconnect/database/repository/session"
	tutorRepo "guruconnect/database/repository/tutor"
	"guruconnect/handlers"
	"guruconnect/middleware"
	"guruconnect/realtime"
	"guruconnect/routes"
	"guruconnect/services/availability"
	"guruconnect/services/booking"
	"guruconnect/services/chat"
	"guruconnect/services/payment"
	"guruconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := database.InitDB(ctx, logger); err != nil {
		logger.Fatal("main: database unavailable", zap.Error(err))
	}
	cache := utils.GetCacheClient()
	stripe.Key = config.AppConfig.StripeKey

	utils.StartHealthMonitor(ctx, []*redis.Client{cache}, database.MongoClient)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// repositories.
	tutors := tutorRepo.NewCachedTutorRepo(tutorRepo.NewMongoTutorRepo(logger), cache, logger)
	sessions := sessionRepo.NewMongoSessionRepo(logger)
	chats := chatRepo.NewMongoChatRepo(logger)

	// services.
	resolver := availability.NewResolver(nil)
	paymentService := payment.NewPaymentService(
		payment.NewStripeGateway(),
		config.AppConfig.PaymentCurrency,
		config.AppConfig.SkipPaymentVerify,
		logger,
	)
	if config.AppConfig.SkipPaymentVerify {
		logger.Warn("payment verification is disabled")
	}

	queue := asynq.NewClient(cron.QueueRedisOpt())
	defer queue.Close()

	bookingService := &booking.DefaultBookingService{
		Tutors:    tutors,
		Sessions:  sessions,
		Payments:  paymentService,
		Locker:    booking.NewRedisLocker(cache),
		Reminders: booking.NewAsynqReminderScheduler(queue),
		Resolver:  resolver,
		Logger:    logger,

		DefaultPrice: config.AppConfig.SessionPrice,
	}
	chatService := chat.NewChatService(chats, logger)

	// realtime.
	var bus realtime.Bus = realtime.NewLocalBus()
	if config.AppConfig.ChatBus == "redis" {
		bus = realtime.NewRedisBus(cache, logger)
	}
	hub := realtime.NewHub(chatService, bus, utils.ExtractIDFromToken, logger)
	go func() {
		if err := hub.Run(ctx); err != nil {
			logger.Error("chat bus stopped", zap.Error(err))
		}
	}()

	cron.InitReminderWorker(ctx, &cron.ReminderHandler{
		Chats:     chatService,
		Publisher: hub,
		Logger:    logger,
	}, logger)

	tutorHandler := handlers.NewTutorHandler(tutors, resolver)
	paymentHandler := handlers.NewPaymentHandler(paymentService, bookingService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	chatHandler := handlers.NewChatHandler(chatService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Tutor endpoints.
		GetAvailability: tutorHandler.GetAvailability,
		GetSlots:        tutorHandler.GetSlots,
		SetAvailability: tutorHandler.SetAvailability,

		// Payment endpoints.
		CreatePaymentOrder: paymentHandler.CreateOrder,

		// Booking endpoints.
		CreateSession: bookingHandler.CreateSession,
		ListSessions:  bookingHandler.ListSessions,

		// Chat endpoints.
		GetOrCreateChat: chatHandler.GetOrCreate,
		ChatHistory:     chatHandler.History,
		ServeWS:         hub.ServeWS,

		Health: handlers.Health,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if err := database.MongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
