package dispenseid

import (
	"time"

	"github.com/pharmadesk/pharmadesk/internal/clock"
	"go.uber.org/fx"
)

var Module = fx.Module("dispenseid",
	fx.Provide(func(clk clock.Clock) *Generator {
		return New(clk, time.Now().UnixNano())
	}),
)
