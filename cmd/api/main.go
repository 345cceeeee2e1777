package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appcc "github.com/invorya/cyclecount-api/internal/application/cyclecount"
	"github.com/invorya/cyclecount-api/internal/infrastructure/ordercontrol"
	"github.com/invorya/cyclecount-api/internal/infrastructure/postgres"
	"github.com/invorya/cyclecount-api/internal/infrastructure/redisstore"
	httpRouter "github.com/invorya/cyclecount-api/internal/interfaces/http"
	"github.com/invorya/cyclecount-api/pkg/config"
	"github.com/invorya/cyclecount-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisClient, err := redisstore.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer func() { _ = redisClient.Close() }()

	sessionRepo := postgres.NewSessionRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	snapshotProvider := postgres.NewSnapshotProvider(pool)

	otpService := redisstore.NewOtpService(redisClient, time.Duration(cfg.Otp.TTLMinutes)*time.Minute)
	draftStore := redisstore.NewDraftStore(redisClient)
	orderControl := ordercontrol.NewClient(cfg.Orders.ControlURL, log)

	sessionUC := appcc.NewSessionUseCase(
		txRunner, sessionRepo, auditRepo,
		snapshotProvider, otpService, orderControl, draftStore, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CycleCount API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Sessions: sessionUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
