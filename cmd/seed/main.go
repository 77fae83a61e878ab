// seed carga un catálogo CSV (sku, name, category, cost_price, selling_price, quantity)
// y registra el stock inicial como recepciones.
//
// Uso: go run ./cmd/seed [-latin1] [-sep ';'] [-invoice FAC-0001] [-token] catalogo.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/jhoicas/Inventario-pos/internal/application/importer"
	"github.com/jhoicas/Inventario-pos/internal/application/ledger"
	"github.com/jhoicas/Inventario-pos/internal/bootstrap"
	"github.com/jhoicas/Inventario-pos/internal/interfaces/http"
	"github.com/jhoicas/Inventario-pos/pkg/config"
	"github.com/jhoicas/Inventario-pos/pkg/jwt"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1")
	sep := flag.String("sep", ",", "separador de columnas")
	invoice := flag.String("invoice", "", "factura de proveedor asociada a las recepciones")
	user := flag.String("user", "seed", "usuario que registra las recepciones")
	token := flag.Bool("token", false, "imprimir un token de administrador para desarrollo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if *token {
		if cfg.App.Env == "production" {
			log.Fatal().Msg("-token no está permitido en production")
		}
		t, err := jwt.Generate(cfg.JWT.Secret, *user, http.RoleAdmin, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("generar token")
		}
		fmt.Println(t)
	}
	if flag.NArg() == 0 {
		if !*token {
			flag.Usage()
			os.Exit(2)
		}
		return
	}

	separator, size := utf8.DecodeRuneInString(*sep)
	if size == 0 || size != len(*sep) {
		log.Fatal().Str("sep", *sep).Msg("el separador debe ser un solo carácter")
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	ctx := context.Background()
	svc, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}
	defer svc.Close()

	im := importer.NewCatalogImporter(svc.Products, svc.Categories, svc.Stores, svc.Ledger)
	sum, err := im.Import(ctx, ledger.Actor{UserID: *user}, f, importer.Options{
		Latin1:    *latin1,
		Separator: separator,
		InvoiceID: *invoice,
	})
	if sum != nil {
		for _, s := range sum.Skipped {
			log.Warn().Msg(s)
		}
		log.Info().
			Int("filas", sum.Rows).
			Int("categorias", sum.Categories).
			Int("productos", sum.Products).
			Int("recepciones", sum.Received).
			Int("omitidas", len(sum.Skipped)).
			Msg("importación terminada")
	}
	if err != nil {
		log.Error().Err(err).Msg("importación interrumpida")
		os.Exit(1)
	}
}
