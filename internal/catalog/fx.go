package catalog

import (
	"github.com/smallbiznis/glazier/internal/catalog/repository"
	"github.com/smallbiznis/glazier/internal/catalog/service"
	"github.com/smallbiznis/glazier/internal/catalog/snapshot"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	snapshot.Module,
)
