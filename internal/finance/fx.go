package finance

import (
	"github.com/pharmadesk/pharmadesk/internal/finance/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("finance",
	fx.Provide(repository.Provide),
)
