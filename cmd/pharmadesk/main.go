package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pharmadesk/pharmadesk/internal/clock"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/logger"
	"github.com/pharmadesk/pharmadesk/internal/migration"
	"github.com/pharmadesk/pharmadesk/internal/server"
	"github.com/pharmadesk/pharmadesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
