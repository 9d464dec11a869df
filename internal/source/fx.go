package source

import (
	"github.com/openhire/jobfeed/internal/source/repository"
	"github.com/openhire/jobfeed/internal/source/service"
	"go.uber.org/fx"
)

var Module = fx.Module("source.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
