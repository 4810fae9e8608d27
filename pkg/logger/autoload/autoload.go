package autoload

import (
	configx "github.com/renzovallejo/lima-property-agent/pkg/config"
	logx "github.com/renzovallejo/lima-property-agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
