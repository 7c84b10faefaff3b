package router

import "go.uber.org/fx"

// Module provides the assembled gin engine and HTTP server wiring.
var Module = fx.Provide(Setup)
