package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/counterreport/internal/catalog"
	"github.com/smallbiznis/counterreport/internal/clock"
	"github.com/smallbiznis/counterreport/internal/config"
	"github.com/smallbiznis/counterreport/internal/counter"
	"github.com/smallbiznis/counterreport/internal/delivery"
	"github.com/smallbiznis/counterreport/internal/migration"
	"github.com/smallbiznis/counterreport/internal/observability"
	"github.com/smallbiznis/counterreport/internal/royalty"
	"github.com/smallbiznis/counterreport/internal/scheduler"
	"github.com/smallbiznis/counterreport/internal/server"
	"github.com/smallbiznis/counterreport/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		// Reporting
		catalog.Module,
		counter.Module,
		delivery.Module,
		royalty.Module,

		server.Module,
		scheduler.Module,
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
