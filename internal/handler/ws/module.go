package ws

import "go.uber.org/fx"

// Module provides the process-wide ConnectionHandler.
var Module = fx.Module("ws", fx.Provide(NewHandler))
