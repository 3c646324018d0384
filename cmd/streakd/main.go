package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streakline/internal/activity"
	"github.com/smallbiznis/streakline/internal/clock"
	"github.com/smallbiznis/streakline/internal/config"
	"github.com/smallbiznis/streakline/internal/migration"
	"github.com/smallbiznis/streakline/internal/observability"
	"github.com/smallbiznis/streakline/internal/ratelimit"
	"github.com/smallbiznis/streakline/internal/server"
	"github.com/smallbiznis/streakline/internal/streak"
	"github.com/smallbiznis/streakline/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
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
		ratelimit.Module,

		// Functional Domains
		activity.Module,
		streak.Module,

		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
