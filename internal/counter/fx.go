package counter

import (
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/internal/counter/repository"
	"github.com/smallbiznis/counterreport/internal/counter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("counter.service",
	repository.Module,
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) counterdomain.Assembler { return s }),
)
