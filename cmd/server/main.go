package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"chapterhall/internal/adapters/discord"
	"chapterhall/internal/adapters/httpapi"
	"chapterhall/internal/adapters/ws"
	"chapterhall/internal/application"
	"chapterhall/internal/config"
	"chapterhall/internal/infrastructure/curriculum"
	"chapterhall/internal/infrastructure/database"
	"chapterhall/internal/infrastructure/i18n"
	"chapterhall/internal/infrastructure/membership"
	"chapterhall/internal/ports/output"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("database connected")

	meetingRepo := database.NewMeetingRepository(pool)
	attendanceRepo := database.NewAttendanceRepository(pool)
	timeLogRepo := database.NewTimeLogRepository(pool)
	responseRepo := database.NewResponseRepository(pool)

	membershipClient := membership.NewClient(cfg.MembershipURL)
	curriculumClient := curriculum.NewClient(cfg.CurriculumURL)

	var notifier output.Notifier
	if cfg.DiscordToken != "" {
		notifier, err = discord.NewNotifier(cfg.DiscordToken, cfg.DiscordChannelID, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create discord notifier")
		}
		logger.Info().Str("channel_id", cfg.DiscordChannelID).Msg("discord notifier enabled")
	}

	meetingSvc := application.NewMeetingService(meetingRepo, attendanceRepo, timeLogRepo, responseRepo, membershipClient, notifier, logger)
	turnSvc := application.NewTurnService(meetingRepo, attendanceRepo, timeLogRepo, membershipClient, logger)
	responseSvc := application.NewResponseService(meetingRepo, attendanceRepo, responseRepo, logger)

	hub := ws.NewHub(logger)
	go hub.Run()

	handlers := &httpapi.Handlers{
		Meetings:   meetingSvc,
		Turns:      turnSvc,
		Responses:  responseSvc,
		Curriculum: curriculumClient,
		Hub:        hub,
		Tokens:     cfg.AuthTokens,
		Translator: i18n.NewTranslator(cfg.DefaultLocale),
		Log:        logger,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(handlers, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
