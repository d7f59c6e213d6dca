package delivery

import (
	royaltydomain "github.com/smallbiznis/counterreport/internal/royalty/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("delivery",
	fx.Provide(NewDeliverer),
	fx.Provide(func(d *Deliverer) royaltydomain.Deliverer { return d }),
)
