package salesperf

import (
	"github.com/pharmadesk/pharmadesk/internal/salesperf/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("salesperf",
	fx.Provide(repository.Provide),
)
