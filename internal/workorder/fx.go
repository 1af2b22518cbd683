package workorder

import (
	"github.com/smallbiznis/glazier/internal/workorder/repository"
	"github.com/smallbiznis/glazier/internal/workorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
