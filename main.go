package main

import (
	"context"

	"github.com/gin-gonic/gin"

	api "kokoshiba-backend/cmd/api"
	notificationDelivery "kokoshiba-backend/internal/notification/delivery"
	notificationRepo "kokoshiba-backend/internal/notification/repository"
	notificationUsecase "kokoshiba-backend/internal/notification/usecase"
	verificationDelivery "kokoshiba-backend/internal/verification/delivery"
	verificationRepo "kokoshiba-backend/internal/verification/repository"
	verificationUsecase "kokoshiba-backend/internal/verification/usecase"
	"kokoshiba-backend/pkg/config"
	"kokoshiba-backend/pkg/fcm"
	"kokoshiba-backend/pkg/firebase"
	"kokoshiba-backend/pkg/logger"
	"kokoshiba-backend/pkg/mailer"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	app, err := firebase.NewApp(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Firebase app")
	}

	store, err := app.Firestore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Firestore client")
	}
	defer store.Close()

	fcmClient, err := fcm.NewClient(ctx, app)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize FCM client")
	}

	// Mail is optional at startup: without it, verification-code requests
	// fail with a precondition error but everything else keeps working.
	var verificationMailer verificationUsecase.Mailer
	if m, err := mailer.NewFromEnv(); err != nil {
		log.Warn().Err(err).Msg("mail transport not configured, verification mail disabled")
	} else {
		verificationMailer = m
	}

	// Repositories
	userTokens := notificationRepo.NewUserTokenRepository(store)
	notifications := notificationRepo.NewNotificationRepository(store)
	verifications := verificationRepo.NewRepository(store)

	// Usecases
	pruner := notificationUsecase.NewPruner(userTokens, log)
	dispatcher := notificationUsecase.NewDispatcher(fcmClient, pruner, log)
	notifier := notificationUsecase.NewNotifier(userTokens, notifications, dispatcher, fcmClient, log)
	verification := verificationUsecase.NewVerificationUsecase(verifications, verificationMailer, log)

	// Store-event consumer
	consumer, err := notificationDelivery.NewConsumer(ctx, cfg.GoogleProjectID, cfg.PubSubTopic, notifier, cfg.FirebaseCredentials, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store-event consumer")
	}
	go consumer.Start(ctx)

	// HTTP surface
	router := gin.Default()
	api.SetupRoutes(
		router,
		verificationDelivery.NewHandler(verification, log),
		notificationDelivery.NewTokenHandler(notifier, log),
		cfg.JWTSecret,
	)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
