package inventory

import (
	"github.com/pharmadesk/pharmadesk/internal/inventory/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("inventory",
	fx.Provide(repository.Provide),
)
