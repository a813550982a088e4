package logging

import "go.uber.org/fx"

// Module provides the process-wide logger.
var Module = fx.Module("logging", fx.Provide(New))
