package dispensing

import (
	"github.com/pharmadesk/pharmadesk/internal/dispensing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dispensing.service",
	fx.Provide(service.New),
)
