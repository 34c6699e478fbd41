package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/carewise/escortcare/internal/clock"
	"github.com/carewise/escortcare/internal/config"
	"github.com/carewise/escortcare/internal/logger"
	"github.com/carewise/escortcare/internal/migration"
	"github.com/carewise/escortcare/internal/observability/metrics"
	"github.com/carewise/escortcare/internal/seed"
	"github.com/carewise/escortcare/internal/server"
	"github.com/carewise/escortcare/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		metrics.Module,

		// Schema and fixtures run before the server starts taking traffic.
		migration.Module,
		seed.Module,

		// Domain modules and routes
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
