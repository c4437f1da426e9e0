package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/auth"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/config"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/logger"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/seed"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/service"
)

func main() {
	drop := flag.Bool("drop", false, "drop every table before seeding")
	flag.Parse()

	var (
		seeder *seed.Seeder
		l      *zap.SugaredLogger
	)
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		auth.Module,
		service.Module,
		seed.Module,
		fx.Populate(&seeder, &l),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	if *drop {
		if err := seeder.Reset(); err != nil {
			l.Fatalw("failed to reset database", "error", err)
		}
	}
	if _, err := seeder.Seed(ctx); err != nil {
		l.Fatalw("failed to seed database", "error", err)
	}
}
