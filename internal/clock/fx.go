package clock

import (
	"github.com/smallbiznis/streakline/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
	fx.Provide(func(c Clock, policy *config.PolicyHolder) *Resolver {
		return NewResolver(c, func() string { return policy.Get().DefaultTimezone })
	}),
)
