package plan

import (
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

// NewServiceMock returns a Service whose clock is frozen at nowFunc.
func NewServiceMock(
	db core.DB,
	repo Repository,
	items assignment.Repository,
	students RosterResolver,
	teachers TeacherDirectory,
	broadcaster core.Broadcaster,
	logger core.Logger,
	conf *core.Config,
	nowFunc func() time.Time,
) *Service {
	svc := NewService(db, repo, items, students, teachers, broadcaster, logger, conf)
	svc.now = nowFunc
	return svc
}
