package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	"github.com/orbitaagency1ia/miautoescuela/internal/config"
	"github.com/orbitaagency1ia/miautoescuela/internal/migration"
	"github.com/orbitaagency1ia/miautoescuela/internal/server"
	"github.com/orbitaagency1ia/miautoescuela/pkg/db"
	"github.com/orbitaagency1ia/miautoescuela/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
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
