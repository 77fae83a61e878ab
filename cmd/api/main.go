package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-pos/internal/bootstrap"
	infrapdf "github.com/jhoicas/Inventario-pos/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/Inventario-pos/internal/interfaces/http"
	"github.com/jhoicas/Inventario-pos/internal/jobs"
	"github.com/jhoicas/Inventario-pos/pkg/config"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	svc, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}
	defer svc.Close()

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:         cfg.App.Name,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, log.Named("http"))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario POS API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	deps := httpRouter.RouterDeps{
		ProductUC:  svc.Products,
		CategoryUC: svc.Categories,
		BatchUC:    svc.Batches,
		Ledger:     svc.Ledger,
		Credit:     svc.Credit,
		Checkout:   svc.Checkout,
		Reports:    svc.Reports,
		ReceiptPDF: infrapdf.NewReceiptPDFGenerator(cfg.App.Name),
		JWTSecret:  cfg.JWT.Secret,
	}
	// Sin Redis la conciliación solo corre en línea (?async=true responde 503).
	if cfg.Redis.Enabled() {
		queue := jobs.NewClient(bootstrap.AsynqOpts(cfg.Redis))
		defer queue.Close()
		deps.Jobs = queue
	}
	httpRouter.Router(app, deps)

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
