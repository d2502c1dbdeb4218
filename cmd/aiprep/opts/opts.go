package opts

import (
	"github.com/aiprep-dev/aiprep/pkg/config"
	"github.com/aiprep-dev/aiprep/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config  *config.Config
	Console *log.Logger
}
