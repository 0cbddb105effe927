package approval

import (
	"github.com/pharmadesk/pharmadesk/internal/approval/domain"
	"github.com/pharmadesk/pharmadesk/internal/approval/repository"
	"github.com/pharmadesk/pharmadesk/internal/approval/service"
	"github.com/pharmadesk/pharmadesk/internal/dispenseid"
	"go.uber.org/fx"
)

var Module = fx.Module("approval.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(gen *dispenseid.Generator) domain.IdentifierGenerator {
		return gen
	}),
	fx.Provide(service.New),
)
