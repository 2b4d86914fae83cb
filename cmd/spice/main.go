package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/nahomjim91/spice-marketplace/internal/cache"
	"github.com/nahomjim91/spice-marketplace/internal/cart"
	"github.com/nahomjim91/spice-marketplace/internal/catalog"
	"github.com/nahomjim91/spice-marketplace/internal/checkout"
	"github.com/nahomjim91/spice-marketplace/internal/clock"
	"github.com/nahomjim91/spice-marketplace/internal/config"
	"github.com/nahomjim91/spice-marketplace/internal/logger"
	"github.com/nahomjim91/spice-marketplace/internal/observability"
	"github.com/nahomjim91/spice-marketplace/internal/payment"
	"github.com/nahomjim91/spice-marketplace/internal/ratelimit"
	"github.com/nahomjim91/spice-marketplace/internal/scheduler"
	"github.com/nahomjim91/spice-marketplace/internal/server"
	"github.com/nahomjim91/spice-marketplace/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,

		// Functional Domains
		catalog.Module,
		cart.Module,
		payment.Module,
		ratelimit.Module,
		checkout.Module,
		scheduler.Module,

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
