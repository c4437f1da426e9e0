package main

import (
	"go.uber.org/fx"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/auth"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/config"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/logger"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/rpc"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/service"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/transport"
)

func main() {
	fx.New(
		config.Module,
		logger.Module,
		db.Module,
		auth.Module,
		service.Module,
		transport.Module,
		rpc.Module,
	).Run()
}
