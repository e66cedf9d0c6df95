package assignment

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// NewServiceMock returns a Service whose clock is frozen at nowFunc.
func NewServiceMock(repo Repository, broadcaster core.Broadcaster, logger core.Logger, conf *core.Config, nowFunc func() time.Time) *Service {
	svc := NewService(repo, broadcaster, logger, conf)
	svc.now = nowFunc
	return svc
}
