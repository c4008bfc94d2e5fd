package config

import "go.uber.org/fx"

// Opener returns the Store for a config directory. The directory is only
// known once options are resolved, so the graph provides the constructor.
type Opener func(dir string) *Store

var Module = fx.Module("config", fx.Provide(
	func() Opener { return Open },
))
