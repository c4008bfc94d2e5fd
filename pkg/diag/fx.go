package diag

import (
	"os"

	"go.uber.org/fx"
)

var Module = fx.Module("diag", fx.Provide(
	func() *Reporter { return New(os.Stderr) },
))
