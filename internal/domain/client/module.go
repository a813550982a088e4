package client

import "go.uber.org/fx"

// Module provides a process-wide [Registry].
var Module = fx.Module("client",
	fx.Provide(NewRegistry),
)
