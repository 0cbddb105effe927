package dashboard

import (
	"github.com/pharmadesk/pharmadesk/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(service.New),
)
