package streak

import (
	"github.com/smallbiznis/streakline/internal/streak/repository"
	"github.com/smallbiznis/streakline/internal/streak/service"
	"go.uber.org/fx"
)

var Module = fx.Module("streak.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
