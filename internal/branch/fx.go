package branch

import (
	"github.com/pharmadesk/pharmadesk/internal/branch/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("branch",
	fx.Provide(repository.Provide),
)
