package quota

import (
	"github.com/openhire/jobfeed/internal/quota/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quota.ledger",
	fx.Provide(service.NewLedger),
)
